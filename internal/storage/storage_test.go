package storage

import (
	"math"
	"testing"
	"time"

	"github.com/kickwise/kickwise/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addSnapshot(t *testing.T, store *Store, playerID string, value, price int, at time.Time) {
	t.Helper()
	err := store.AddSnapshot(models.ValueSnapshot{
		PlayerID:    playerID,
		MarketValue: value,
		Price:       price,
		Timestamp:   at,
		Source:      "test",
	})
	if err != nil {
		t.Fatalf("AddSnapshot() error = %v", err)
	}
}

func TestPriceSeriesOrder(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	addSnapshot(t, store, "p1", 1_000_000, 0, now.Add(-48*time.Hour))
	addSnapshot(t, store, "p1", 1_100_000, 0, now.Add(-24*time.Hour))
	addSnapshot(t, store, "p1", 1_050_000, 0, now.Add(-1*time.Hour))
	addSnapshot(t, store, "other", 500_000, 0, now.Add(-1*time.Hour))

	series, err := store.PriceSeries("p1", 0)
	if err != nil {
		t.Fatalf("PriceSeries() error = %v", err)
	}

	want := []int{1_050_000, 1_100_000, 1_000_000}
	if len(series) != len(want) {
		t.Fatalf("series = %v, want %v", series, want)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %d, want %d", i, series[i], want[i])
		}
	}
}

func TestPriceSeriesLimit(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	for i := 0; i < 5; i++ {
		addSnapshot(t, store, "p1", 1_000_000+i, 0, now.Add(-time.Duration(i)*time.Hour))
	}

	series, err := store.PriceSeries("p1", 2)
	if err != nil {
		t.Fatalf("PriceSeries() error = %v", err)
	}
	if len(series) != 2 {
		t.Errorf("len(series) = %d, want 2", len(series))
	}
}

func TestPriceSeriesUnknownPlayer(t *testing.T) {
	store := newTestStore(t)

	series, err := store.PriceSeries("nobody", 0)
	if err != nil {
		t.Fatalf("PriceSeries() error = %v", err)
	}
	if len(series) != 0 {
		t.Errorf("series = %v, want empty", series)
	}
}

func TestAddSnapshotInvalid(t *testing.T) {
	store := newTestStore(t)

	err := store.AddSnapshot(models.ValueSnapshot{
		PlayerID:    "p1",
		MarketValue: 0, // must be positive
		Timestamp:   time.Now(),
		Source:      "test",
	})
	if err == nil {
		t.Error("AddSnapshot() with zero market value should fail")
	}
}

func TestAverageDailyDropPct(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	// Listed prices 100 -> 110 -> 121 over three days: +10% per step.
	addSnapshot(t, store, "p1", 1_000_000, 100, now.Add(-48*time.Hour))
	addSnapshot(t, store, "p1", 1_000_000, 110, now.Add(-24*time.Hour))
	addSnapshot(t, store, "p1", 1_000_000, 121, now.Add(-1*time.Hour))

	drop, err := store.AverageDailyDropPct("p1", 14*24*time.Hour)
	if err != nil {
		t.Fatalf("AverageDailyDropPct() error = %v", err)
	}
	got, ok := drop.Get()
	if !ok {
		t.Fatal("expected a present value")
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("average change = %v, want 10", got)
	}
}

func TestAverageDailyDropPctInsufficientData(t *testing.T) {
	store := newTestStore(t)

	drop, err := store.AverageDailyDropPct("p1", 14*24*time.Hour)
	if err != nil {
		t.Fatalf("AverageDailyDropPct() error = %v", err)
	}
	if drop.Present() {
		t.Error("no snapshots should yield an absent value")
	}

	// Unlisted snapshots (price 0) do not count either.
	addSnapshot(t, store, "p1", 1_000_000, 0, time.Now().Add(-24*time.Hour))
	addSnapshot(t, store, "p1", 1_000_000, 0, time.Now().Add(-1*time.Hour))

	drop, err = store.AverageDailyDropPct("p1", 14*24*time.Hour)
	if err != nil {
		t.Fatalf("AverageDailyDropPct() error = %v", err)
	}
	if drop.Present() {
		t.Error("unlisted snapshots should yield an absent value")
	}
}

func TestFlipLifecycle(t *testing.T) {
	store := newTestStore(t)

	id, err := store.RecordFlip("p1", "Player One", 1_000_000, time.Now())
	if err != nil {
		t.Fatalf("RecordFlip() error = %v", err)
	}
	if id == "" {
		t.Fatal("RecordFlip() returned empty ID")
	}

	open, err := store.OpenFlips()
	if err != nil {
		t.Fatalf("OpenFlips() error = %v", err)
	}
	if len(open) != 1 || open[0].ID != id || open[0].Status != "holding" {
		t.Fatalf("OpenFlips() = %+v, want the recorded flip", open)
	}

	if err := store.CloseFlip(id, 1_200_000, time.Now()); err != nil {
		t.Fatalf("CloseFlip() error = %v", err)
	}

	open, err = store.OpenFlips()
	if err != nil {
		t.Fatalf("OpenFlips() error = %v", err)
	}
	if len(open) != 0 {
		t.Errorf("OpenFlips() after close = %+v, want empty", open)
	}

	// Closing twice is an error.
	if err := store.CloseFlip(id, 1_300_000, time.Now()); err == nil {
		t.Error("CloseFlip() on a sold flip should fail")
	}
}

func TestRecordFlipValidation(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.RecordFlip("", "Nameless", 100, time.Now()); err == nil {
		t.Error("empty player ID should fail")
	}
	if _, err := store.RecordFlip("p1", "Player", 0, time.Now()); err == nil {
		t.Error("non-positive buy price should fail")
	}
	if err := store.CloseFlip("missing", 100, time.Now()); err == nil {
		t.Error("closing an unknown flip should fail")
	}
}
