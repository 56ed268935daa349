package trader

import (
	"testing"

	"github.com/kickwise/kickwise/internal/models"
	"github.com/kickwise/kickwise/internal/risk"
)

func listing(id string, price int) models.Player {
	return models.Player{
		ID:          id,
		FirstName:   "Player",
		LastName:    id,
		TeamID:      "T1",
		MarketValue: price,
		Price:       price,
	}
}

func mustFinder(t *testing.T) *Finder {
	t.Helper()
	f, err := NewFinder(8, 7, 50)
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	return f
}

func TestNewFinderValidation(t *testing.T) {
	if _, err := NewFinder(-1, 7, 50); err == nil {
		t.Error("negative profit threshold should fail")
	}
	if _, err := NewFinder(10, 0, 50); err == nil {
		t.Error("zero hold days should fail")
	}
	if _, err := NewFinder(10, 7, 101); err == nil {
		t.Error("risk score over 100 should fail")
	}
}

func TestFindRisingTrend(t *testing.T) {
	f := mustFinder(t)
	listings := []models.Player{listing("a", 1_000_000)}
	trends := map[string]Trend{
		"a": {Direction: "rising", TrendPct: 10, CurrentValue: 1_000_000},
	}

	got := f.Find(listings, 2_000_000, trends, nil, 0)
	if len(got) != 1 {
		t.Fatalf("Find() returned %d opportunities, want 1", len(got))
	}
	if got[0].ExpectedAppreciationPct != 10 {
		t.Errorf("ExpectedAppreciationPct = %v, want 10", got[0].ExpectedAppreciationPct)
	}
	if got[0].RiskScore != 50 {
		t.Errorf("RiskScore = %v, want moderate default 50", got[0].RiskScore)
	}
	if got[0].Reason != "Rising trend +10.0%" {
		t.Errorf("Reason = %q", got[0].Reason)
	}
	if got[0].HoldDays != 7 {
		t.Errorf("HoldDays = %d, want 7", got[0].HoldDays)
	}
}

func TestFindRecoveryPlay(t *testing.T) {
	f := mustFinder(t)
	listings := []models.Player{listing("a", 800_000)}
	trends := map[string]Trend{
		"a": {Direction: "stable", TrendPct: 1, CurrentValue: 800_000, PeakValue: 1_000_000},
	}

	got := f.Find(listings, 2_000_000, trends, nil, 0)
	if len(got) != 1 {
		t.Fatalf("Find() returned %d opportunities, want 1", len(got))
	}
	// 20% below peak, half recovery expected.
	if got[0].ExpectedAppreciationPct != 10 {
		t.Errorf("ExpectedAppreciationPct = %v, want 10", got[0].ExpectedAppreciationPct)
	}
}

func TestFindAppreciationCapped(t *testing.T) {
	f := mustFinder(t)
	listings := []models.Player{listing("a", 1_000_000)}
	trends := map[string]Trend{
		"a": {Direction: "rising", TrendPct: 35, CurrentValue: 1_000_000},
	}

	got := f.Find(listings, 2_000_000, trends, nil, 0)
	if len(got) != 1 {
		t.Fatalf("Find() returned %d opportunities, want 1", len(got))
	}
	if got[0].ExpectedAppreciationPct != 20 {
		t.Errorf("ExpectedAppreciationPct = %v, want cap 20", got[0].ExpectedAppreciationPct)
	}
}

func TestFindSkips(t *testing.T) {
	f := mustFinder(t)
	listings := []models.Player{
		listing("unaffordable", 5_000_000),
		listing("no-trend", 1_000_000),
		listing("unknown", 1_000_000),
		listing("weak-trend", 1_000_000),
		listing("falling", 1_000_000),
		listing("risky", 1_000_000),
	}
	trends := map[string]Trend{
		"unaffordable": {Direction: "rising", TrendPct: 15, CurrentValue: 5_000_000},
		"unknown":      {Direction: "unknown"},
		"weak-trend":   {Direction: "rising", TrendPct: 4, CurrentValue: 1_000_000},
		"falling":      {Direction: "falling", TrendPct: -10, CurrentValue: 1_000_000, PeakValue: 2_000_000},
		"risky":        {Direction: "rising", TrendPct: 15, CurrentValue: 1_000_000},
	}
	risks := map[string]risk.Profile{
		"risky": {VolatilityScore: 80},
	}

	got := f.Find(listings, 2_000_000, trends, risks, 0)
	if len(got) != 0 {
		t.Errorf("Find() returned %d opportunities, want all skipped: %+v", len(got), got)
	}
}

func TestFindRanksByRiskDiscountedAppreciation(t *testing.T) {
	f := mustFinder(t)
	listings := []models.Player{
		listing("steady", 1_000_000),
		listing("spiky", 1_000_000),
	}
	trends := map[string]Trend{
		"steady": {Direction: "rising", TrendPct: 12, CurrentValue: 1_000_000},
		"spiky":  {Direction: "rising", TrendPct: 15, CurrentValue: 1_000_000},
	}
	risks := map[string]risk.Profile{
		"steady": {VolatilityScore: 10}, // 12 * 0.95 = 11.4
		"spiky":  {VolatilityScore: 50}, // 15 * 0.75 = 11.25
	}

	got := f.Find(listings, 2_000_000, trends, risks, 0)
	if len(got) != 2 {
		t.Fatalf("Find() returned %d opportunities, want 2", len(got))
	}
	if got[0].Player.ID != "steady" {
		t.Errorf("first opportunity = %s, want steady ranked above spiky", got[0].Player.ID)
	}
}

func TestFindMaxResults(t *testing.T) {
	f := mustFinder(t)
	listings := []models.Player{
		listing("a", 1_000_000),
		listing("b", 1_000_000),
		listing("c", 1_000_000),
	}
	trends := map[string]Trend{
		"a": {Direction: "rising", TrendPct: 10, CurrentValue: 1_000_000},
		"b": {Direction: "rising", TrendPct: 11, CurrentValue: 1_000_000},
		"c": {Direction: "rising", TrendPct: 12, CurrentValue: 1_000_000},
	}

	got := f.Find(listings, 2_000_000, trends, nil, 2)
	if len(got) != 2 {
		t.Fatalf("Find() returned %d opportunities, want 2", len(got))
	}
	if got[0].Player.ID != "c" || got[1].Player.ID != "b" {
		t.Errorf("ranking = [%s, %s], want [c, b]", got[0].Player.ID, got[1].Player.ID)
	}
}
