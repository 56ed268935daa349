package opportunity

import (
	"reflect"
	"testing"
)

func mustResolver(t *testing.T, minSquadSize int) *Resolver {
	t.Helper()
	r, err := NewResolver(minSquadSize)
	if err != nil {
		t.Fatalf("NewResolver(%d) error = %v", minSquadSize, err)
	}
	return r
}

func TestNewResolverValidation(t *testing.T) {
	if _, err := NewResolver(0); err == nil {
		t.Error("NewResolver(0) should fail")
	}
	if _, err := NewResolver(-3); err == nil {
		t.Error("NewResolver(-3) should fail")
	}
}

func TestResolveSufficientBudget(t *testing.T) {
	r := mustResolver(t, 10)
	target := Target{PlayerID: "t1", Name: "Target", Cost: 4_000_000, ValueScore: 60, PointsPerMillion: 5}

	plan, feasible, err := r.Resolve(target, nil, 5_000_000)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !feasible {
		t.Fatal("plan should be feasible")
	}

	if len(plan.ToSell) != 0 {
		t.Errorf("ToSell has %d entries, want none", len(plan.ToSell))
	}
	if plan.Proceeds != 0 {
		t.Errorf("Proceeds = %d, want 0", plan.Proceeds)
	}
	if plan.NetBudget != 1_000_000 {
		t.Errorf("NetBudget = %d, want 1000000", plan.NetBudget)
	}
	if !plan.Worthwhile {
		t.Error("plan should be worthwhile")
	}
	if plan.Reason != "Sufficient budget available" {
		t.Errorf("Reason = %q", plan.Reason)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := mustResolver(t, 2)
	target := Target{PlayerID: "t1", Name: "Target", Cost: 4_000_000, ValueScore: 50, PointsPerMillion: 5}
	holdings := []SellCandidate{
		{PlayerID: "a", Name: "Ace", Price: 5_000_000, ValueScore: 80, PointsPerMillion: 8},
		{PlayerID: "b", Name: "Bench", Price: 3_500_000, ValueScore: 30, PointsPerMillion: 2},
		{PlayerID: "c", Name: "Core", Price: 2_000_000, ValueScore: 60, PointsPerMillion: 6},
	}

	first, feasible, err := r.Resolve(target, holdings, 1_000_000)
	if err != nil || !feasible {
		t.Fatalf("Resolve() = (feasible %v, err %v)", feasible, err)
	}
	second, feasible, err := r.Resolve(target, holdings, 1_000_000)
	if err != nil || !feasible {
		t.Fatalf("Resolve() = (feasible %v, err %v)", feasible, err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different plans:\n%+v\n%+v", first, second)
	}

	// The trivial-budget path must be deterministic too.
	trivialA, _, _ := r.Resolve(target, holdings, 5_000_000)
	trivialB, _, _ := r.Resolve(target, holdings, 5_000_000)
	if !reflect.DeepEqual(trivialA, trivialB) {
		t.Errorf("identical inputs produced different plans:\n%+v\n%+v", trivialA, trivialB)
	}
}

func TestResolveSellsWorstHolding(t *testing.T) {
	r := mustResolver(t, 2)
	target := Target{PlayerID: "t1", Name: "Target", Cost: 4_000_000, ValueScore: 50, PointsPerMillion: 5}
	holdings := []SellCandidate{
		{PlayerID: "a", Name: "Ace", Price: 5_000_000, ValueScore: 80, PointsPerMillion: 8},
		{PlayerID: "b", Name: "Bench", Price: 3_500_000, ValueScore: 30, PointsPerMillion: 2},
		{PlayerID: "c", Name: "Core", Price: 2_000_000, ValueScore: 60, PointsPerMillion: 6},
	}

	plan, feasible, err := r.Resolve(target, holdings, 1_000_000)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !feasible {
		t.Fatal("plan should be feasible")
	}

	// Only one sale is allowed by the floor, and the pool picks the worst
	// holding by value score.
	if len(plan.ToSell) != 1 || plan.ToSell[0].PlayerID != "b" {
		t.Fatalf("ToSell = %+v, want exactly the worst holding b", plan.ToSell)
	}
	if plan.Proceeds != 3_500_000 {
		t.Errorf("Proceeds = %d, want 3500000", plan.Proceeds)
	}
	if plan.NetBudget != 500_000 {
		t.Errorf("NetBudget = %d, want 500000", plan.NetBudget)
	}

	// Net value +20 with efficiency +3: a strong upgrade.
	if plan.NetValueChange != 20 {
		t.Errorf("NetValueChange = %v, want 20", plan.NetValueChange)
	}
	if !plan.Worthwhile || plan.Reason != "Strong upgrade" || plan.Confidence != 0.9 {
		t.Errorf("verdict = (%v, %q, %v), want strong upgrade at 0.9",
			plan.Worthwhile, plan.Reason, plan.Confidence)
	}
}

func TestResolveSquadAtFloor(t *testing.T) {
	r := mustResolver(t, 3)
	target := Target{PlayerID: "t1", Name: "Target", Cost: 4_000_000}
	holdings := []SellCandidate{
		{PlayerID: "a", Price: 5_000_000, ValueScore: 80},
		{PlayerID: "b", Price: 3_000_000, ValueScore: 30},
		{PlayerID: "c", Price: 2_000_000, ValueScore: 60},
	}

	_, feasible, err := r.Resolve(target, holdings, 1_000_000)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if feasible {
		t.Error("selling below the squad floor should be infeasible")
	}
}

func TestResolveShortfallUncoverable(t *testing.T) {
	r := mustResolver(t, 1)
	target := Target{PlayerID: "t1", Name: "Target", Cost: 50_000_000}
	holdings := []SellCandidate{
		{PlayerID: "a", Price: 1_000_000, ValueScore: 10},
		{PlayerID: "b", Price: 2_000_000, ValueScore: 20},
	}

	_, feasible, err := r.Resolve(target, holdings, 0)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if feasible {
		t.Error("uncoverable shortfall should be infeasible, not an error")
	}
}

func TestResolveInvalidInput(t *testing.T) {
	r := mustResolver(t, 1)

	if _, _, err := r.Resolve(Target{PlayerID: "t", Cost: -1}, nil, 0); err == nil {
		t.Error("negative cost should fail")
	}

	holdings := []SellCandidate{{PlayerID: "a", Price: -5}}
	if _, _, err := r.Resolve(Target{PlayerID: "t", Cost: 100}, holdings, 0); err == nil {
		t.Error("negative holding price should fail")
	}
}

func TestSellSetGreedyOrder(t *testing.T) {
	// Priority price/(score+1): x = 1M/11 ~ 90909, y = 2M/21 ~ 95238.
	// y ranks first, and alone covers the shortfall.
	pool := []SellCandidate{
		{PlayerID: "x", Price: 1_000_000, ValueScore: 10},
		{PlayerID: "y", Price: 2_000_000, ValueScore: 20},
	}

	toSell, proceeds := sellSet(pool, 1_500_000)
	if len(toSell) != 1 || toSell[0].PlayerID != "y" {
		t.Fatalf("sellSet = %+v, want y alone", toSell)
	}
	if proceeds != 2_000_000 {
		t.Errorf("proceeds = %d, want 2000000", proceeds)
	}
}

func TestAssessWorthwhileOrdering(t *testing.T) {
	tests := []struct {
		name          string
		netValue      float64
		netEfficiency float64
		soldCount     int
		wantOK        bool
		wantReason    string
		wantConf      float64
	}{
		{"strong upgrade", 20, 0, 1, true, "Strong upgrade", 0.9},
		{"strong upgrade beats sell count", 20, 0, 3, true, "Strong upgrade", 0.9},
		{"good upgrade tolerates slight efficiency loss", 12, -0.5, 1, true, "Good upgrade", 0.8},
		{"moderate upgrade", 7, 0, 1, true, "Moderate upgrade", 0.7},
		{"efficiency gain", 2, 6, 1, true, "Efficiency gain", 0.75},
		{"slight upgrade", 1, 1, 1, true, "Slight upgrade", 0.6},
		{"too many sales", -1, 1, 3, false, "Must sell too many players", 0.4},
		{"downgrade", -5, 1, 1, false, "Downgrade (-5.0 value score)", 0.3},
		{"efficiency loss", 2, -3, 1, false, "Efficiency loss (-3.0 pts/M)", 0.3},
		{"marginal", 2, -1, 1, false, "Marginal benefit", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason, conf := assessWorthwhile(tt.netValue, tt.netEfficiency, tt.soldCount)
			if ok != tt.wantOK || reason != tt.wantReason || conf != tt.wantConf {
				t.Errorf("assessWorthwhile(%v, %v, %d) = (%v, %q, %v), want (%v, %q, %v)",
					tt.netValue, tt.netEfficiency, tt.soldCount,
					ok, reason, conf, tt.wantOK, tt.wantReason, tt.wantConf)
			}
		})
	}
}
