package models

import (
	"errors"
	"fmt"
	"time"
)

// ValueSnapshot represents a point-in-time market value reading for a player.
type ValueSnapshot struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	MarketValue int       `json:"market_value"`
	Price       int       `json:"price"` // listing price at capture time; 0 when not listed
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
}

// Validate checks that all snapshot fields are valid.
func (s *ValueSnapshot) Validate() error {
	if s.ID == "" {
		return errors.New("snapshot ID must not be empty")
	}
	if s.PlayerID == "" {
		return errors.New("player ID must not be empty")
	}
	if s.MarketValue <= 0 {
		return fmt.Errorf("market value must be positive, got %d", s.MarketValue)
	}
	if s.Price < 0 {
		return fmt.Errorf("price must not be negative, got %d", s.Price)
	}
	if s.Timestamp.After(time.Now()) {
		return errors.New("timestamp must not be in the future")
	}
	if s.Source == "" {
		return errors.New("source must not be empty")
	}
	return nil
}
