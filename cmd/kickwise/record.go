package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kickwise/kickwise/internal/storage"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record flip trades",
}

var recordBuyCmd = &cobra.Command{
	Use:   "buy <player-id> <name> <price>",
	Short: "Record a flip purchase",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[2], err)
		}

		store, err := storage.New(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.RecordFlip(args[0], args[1], price, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "recorded flip %s\n", id)
		return nil
	},
}

var recordSellCmd = &cobra.Command{
	Use:   "sell <flip-id> <price>",
	Short: "Close a flip with its sale price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[1], err)
		}

		store, err := storage.New(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.CloseFlip(args[0], price, time.Now()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "flip closed")
		return nil
	},
}

var recordOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "List flips still being held",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.New(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		flips, err := store.OpenFlips()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(flips)
	},
}

func init() {
	recordCmd.AddCommand(recordBuyCmd, recordSellCmd, recordOpenCmd)
}
