// Package models defines the domain records exchanged between the data
// providers, the valuation pipeline, and the decision engine. Records are
// plain data with Validate methods; malformed values indicate a caller bug
// and fail loudly rather than being downgraded to defaults.
package models

import (
	"errors"
	"fmt"
)

// Player represents a tradeable squad or market player.
type Player struct {
	ID            string  `json:"id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	TeamID        string  `json:"team_id"`
	Position      string  `json:"position"`
	Points        int     `json:"points"`
	AveragePoints float64 `json:"average_points"`
	MarketValue   int     `json:"market_value"`
	Price         int     `json:"price"`
}

// FullName returns "First Last" for display and notifications.
func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Validate checks that all player fields are valid.
func (p *Player) Validate() error {
	if p.ID == "" {
		return errors.New("player ID must not be empty")
	}
	if p.MarketValue < 0 {
		return fmt.Errorf("market value must not be negative, got %d", p.MarketValue)
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative, got %d", p.Price)
	}
	if p.AveragePoints < 0 {
		return fmt.Errorf("average points must not be negative, got %f", p.AveragePoints)
	}
	return nil
}

// ValidatePriceSeries checks a daily price series (most recent first).
// Prices must be positive integers; a short series is legitimate and
// handled downstream by the conservative risk fallback, so length is
// deliberately not validated here.
func ValidatePriceSeries(prices []int) error {
	for i, p := range prices {
		if p <= 0 {
			return fmt.Errorf("price at index %d must be positive, got %d", i, p)
		}
	}
	return nil
}
