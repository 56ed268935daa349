package models

import (
	"testing"
	"time"
)

func TestOptional(t *testing.T) {
	var zero Optional[float64]
	if zero.Present() {
		t.Error("zero value should be absent")
	}
	if got := zero.OrElse(7); got != 7 {
		t.Errorf("OrElse on absent = %v, want 7", got)
	}

	some := Some(0.0)
	if !some.Present() {
		t.Error("Some(0) should be present: zero and absent must stay distinguishable")
	}
	if v, ok := some.Get(); !ok || v != 0 {
		t.Errorf("Get() = (%v, %v), want (0, true)", v, ok)
	}
	if got := some.OrElse(7); got != 0 {
		t.Errorf("OrElse on present zero = %v, want 0", got)
	}

	if None[int]().Present() {
		t.Error("None() should be absent")
	}
}

func TestPlayerValidate(t *testing.T) {
	valid := Player{ID: "p1", MarketValue: 1_000_000, Price: 1_000_000, AveragePoints: 100}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Player)
	}{
		{"empty ID", func(p *Player) { p.ID = "" }},
		{"negative market value", func(p *Player) { p.MarketValue = -1 }},
		{"negative price", func(p *Player) { p.Price = -1 }},
		{"negative average points", func(p *Player) { p.AveragePoints = -0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestValidatePriceSeries(t *testing.T) {
	if err := ValidatePriceSeries([]int{100, 200}); err != nil {
		t.Errorf("Validate of positive series error = %v", err)
	}
	if err := ValidatePriceSeries(nil); err != nil {
		t.Errorf("Validate of empty series error = %v (short series are legal)", err)
	}
	if err := ValidatePriceSeries([]int{100, 0}); err == nil {
		t.Error("zero price should fail")
	}
	if err := ValidatePriceSeries([]int{-1}); err == nil {
		t.Error("negative price should fail")
	}
}

func TestTeamStandingValidate(t *testing.T) {
	valid := TeamStanding{TeamID: "T1", LeaguePosition: 9, Wins: 3, Draws: 3, Losses: 4}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	outOfRange := valid
	outOfRange.LeaguePosition = 19
	if err := outOfRange.Validate(); err == nil {
		t.Error("position 19 should fail")
	}

	negative := valid
	negative.Losses = -1
	if err := negative.Validate(); err == nil {
		t.Error("negative losses should fail")
	}
}

func TestFixtureOpponentOf(t *testing.T) {
	f := Fixture{HomeTeamID: "T1", AwayTeamID: "T2"}

	opponent, isHome := f.OpponentOf("T1")
	if opponent != "T2" || !isHome {
		t.Errorf("OpponentOf(T1) = (%q, %v), want (T2, true)", opponent, isHome)
	}

	opponent, isHome = f.OpponentOf("T2")
	if opponent != "T1" || isHome {
		t.Errorf("OpponentOf(T2) = (%q, %v), want (T1, false)", opponent, isHome)
	}
}

func TestValueSnapshotValidate(t *testing.T) {
	valid := ValueSnapshot{
		ID:          "s1",
		PlayerID:    "p1",
		MarketValue: 1_000_000,
		Timestamp:   time.Now().Add(-time.Hour),
		Source:      "squad",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	future := valid
	future.Timestamp = time.Now().Add(time.Hour)
	if err := future.Validate(); err == nil {
		t.Error("future timestamp should fail")
	}

	unpriced := valid
	unpriced.MarketValue = 0
	if err := unpriced.Validate(); err == nil {
		t.Error("zero market value should fail")
	}
}
