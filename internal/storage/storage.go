// Package storage provides sqlite-backed persistence for daily market value
// snapshots and recorded flip trades.
//
// The store serves price series back to the analysis pipeline ordered most
// recent first, and computes the average daily listing-price drop over a
// lookback window — the optional predicted near-term price move the pipeline
// consumes. Pass ":memory:" as the path for tests.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kickwise/kickwise/internal/models"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	player_id    TEXT NOT NULL,
	market_value INTEGER NOT NULL,
	price        INTEGER NOT NULL,
	timestamp    INTEGER NOT NULL,
	source       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_player_time ON snapshots (player_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS flips (
	id         TEXT PRIMARY KEY,
	player_id  TEXT NOT NULL,
	player_name TEXT NOT NULL,
	buy_price  INTEGER NOT NULL,
	buy_time   INTEGER NOT NULL,
	sell_price INTEGER,
	sell_time  INTEGER,
	status     TEXT NOT NULL DEFAULT 'holding'
);
`

// New opens (and if needed creates) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddSnapshot stores one value snapshot. An empty ID is assigned a fresh UUID.
func (s *Store) AddSnapshot(snapshot models.ValueSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	_, err := s.db.Exec(
		`INSERT INTO snapshots (id, player_id, market_value, price, timestamp, source) VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot.ID, snapshot.PlayerID, snapshot.MarketValue, snapshot.Price,
		snapshot.Timestamp.Unix(), snapshot.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// PriceSeries returns up to limit stored market values for a player, most
// recent first. A player with no snapshots yields an empty series, which the
// risk estimator resolves with its conservative fallback.
func (s *Store) PriceSeries(playerID string, limit int) ([]int, error) {
	if limit <= 0 {
		limit = 90
	}

	rows, err := s.db.Query(
		`SELECT market_value FROM snapshots WHERE player_id = ? ORDER BY timestamp DESC LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var series []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		series = append(series, v)
	}
	return series, rows.Err()
}

// AverageDailyDropPct computes the mean day-over-day listing price change
// percentage over the lookback window, as a predicted near-term price move.
// Returns an absent value when fewer than two listed snapshots exist.
func (s *Store) AverageDailyDropPct(playerID string, lookback time.Duration) (models.Optional[float64], error) {
	since := time.Now().Add(-lookback).Unix()
	rows, err := s.db.Query(
		`SELECT price FROM snapshots WHERE player_id = ? AND price > 0 AND timestamp >= ? ORDER BY timestamp DESC`,
		playerID, since,
	)
	if err != nil {
		return models.None[float64](), fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return models.None[float64](), fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return models.None[float64](), err
	}

	if len(prices) < 2 {
		return models.None[float64](), nil
	}

	var sum float64
	count := 0
	for i := 0; i < len(prices)-1; i++ {
		if prices[i+1] > 0 {
			sum += float64(prices[i]-prices[i+1]) / float64(prices[i+1]) * 100
			count++
		}
	}
	if count == 0 {
		return models.None[float64](), nil
	}
	return models.Some(sum / float64(count)), nil
}

// Flip is a recorded buy-to-resell trade.
type Flip struct {
	ID         string     `json:"id"`
	PlayerID   string     `json:"player_id"`
	PlayerName string     `json:"player_name"`
	BuyPrice   int        `json:"buy_price"`
	BuyTime    time.Time  `json:"buy_time"`
	SellPrice  *int       `json:"sell_price,omitempty"`
	SellTime   *time.Time `json:"sell_time,omitempty"`
	Status     string     `json:"status"` // holding or sold
}

// RecordFlip stores a new open flip and returns its ID.
func (s *Store) RecordFlip(playerID, playerName string, buyPrice int, buyTime time.Time) (string, error) {
	if playerID == "" {
		return "", errors.New("player ID must not be empty")
	}
	if buyPrice <= 0 {
		return "", fmt.Errorf("buy price must be positive, got %d", buyPrice)
	}

	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO flips (id, player_id, player_name, buy_price, buy_time, status) VALUES (?, ?, ?, ?, ?, 'holding')`,
		id, playerID, playerName, buyPrice, buyTime.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert flip: %w", err)
	}
	return id, nil
}

// CloseFlip marks a flip as sold.
func (s *Store) CloseFlip(id string, sellPrice int, sellTime time.Time) error {
	if sellPrice <= 0 {
		return fmt.Errorf("sell price must be positive, got %d", sellPrice)
	}

	res, err := s.db.Exec(
		`UPDATE flips SET sell_price = ?, sell_time = ?, status = 'sold' WHERE id = ? AND status = 'holding'`,
		sellPrice, sellTime.Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update flip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no open flip with ID %s", id)
	}
	return nil
}

// OpenFlips returns all flips still being held, oldest first.
func (s *Store) OpenFlips() ([]Flip, error) {
	rows, err := s.db.Query(
		`SELECT id, player_id, player_name, buy_price, buy_time FROM flips WHERE status = 'holding' ORDER BY buy_time ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query flips: %w", err)
	}
	defer rows.Close()

	var flips []Flip
	for rows.Next() {
		var f Flip
		var buyUnix int64
		if err := rows.Scan(&f.ID, &f.PlayerID, &f.PlayerName, &f.BuyPrice, &buyUnix); err != nil {
			return nil, fmt.Errorf("failed to scan flip: %w", err)
		}
		f.BuyTime = time.Unix(buyUnix, 0)
		f.Status = "holding"
		flips = append(flips, f)
	}
	return flips, rows.Err()
}
