package loans

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocateCents(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		front bool
		first string
		last  string
	}{
		{"Even split", "1200", 12, false, "100", "100"},
		{"Leftover at the end", "100000", 120, false, "833.33", "833.34"},
		{"Leftover at the front", "100000", 120, true, "833.34", "833.33"},
		{"Fewer cents than months", "0.05", 10, true, "0.01", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := allocateCents(decimal.RequireFromString(tt.total), tt.n, tt.front)
			if len(out) != tt.n {
				t.Fatalf("allocateCents() returned %d amounts, expected %d", len(out), tt.n)
			}

			sum := decimal.Zero
			for _, v := range out {
				sum = sum.Add(v)
			}
			if !sum.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("amounts sum to %s, expected %s", sum, tt.total)
			}
			if !out[0].Equal(decimal.RequireFromString(tt.first)) {
				t.Errorf("first amount = %s, expected %s", out[0], tt.first)
			}
			if !out[tt.n-1].Equal(decimal.RequireFromString(tt.last)) {
				t.Errorf("last amount = %s, expected %s", out[tt.n-1], tt.last)
			}
		})
	}
}

func TestAmortizerCloseOut(t *testing.T) {
	am := newAmortizer(decimal.RequireFromString("100.00"), decimal.Zero, 10)
	item := am.step(1, decimal.RequireFromString("99.99"), decimal.RequireFromString("99.99"))
	if !item.RemainingBalance.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("balance after step = %s, expected 0.01", item.RemainingBalance)
	}

	am.closeOut(&item)
	if !item.RemainingBalance.IsZero() {
		t.Errorf("balance after closeOut = %s, expected 0", item.RemainingBalance)
	}
	if !item.Payment.Equal(decimal.NewFromInt(100)) {
		t.Errorf("payment after closeOut = %s, expected 100", item.Payment)
	}
	if !item.PrincipalPortion.Equal(item.Payment) {
		t.Errorf("principal %s should equal payment %s without interest", item.PrincipalPortion, item.Payment)
	}
}

func TestLevelPlanZeroRate(t *testing.T) {
	plan, err := newLevelPlan(decimal.NewFromInt(100000), decimal.Zero, 120)
	if err != nil {
		t.Fatalf("newLevelPlan() error = %v", err)
	}
	if _, shown := plan.at(1); !shown.Equal(decimal.RequireFromString("833.33")) {
		t.Errorf("first payment = %s, expected 833.33", shown)
	}
	if _, shown := plan.at(120); !shown.Equal(decimal.RequireFromString("833.34")) {
		t.Errorf("last payment = %s, expected 833.34", shown)
	}
}

func TestAmortizerStepSettlesInsteadOfOverpaying(t *testing.T) {
	am := newAmortizer(decimal.RequireFromString("10.00"), decimal.RequireFromString("0.01"), 10)
	item := am.step(7, decimal.RequireFromString("25"), decimal.RequireFromString("25.00"))

	if !item.RemainingBalance.IsZero() {
		t.Fatalf("balance = %s, expected 0", item.RemainingBalance)
	}
	if !item.PrincipalPortion.Equal(decimal.RequireFromString("10")) {
		t.Errorf("principal = %s, expected 10", item.PrincipalPortion)
	}
	if !item.InterestPortion.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("interest = %s, expected 0.10", item.InterestPortion)
	}
	if !item.Payment.Equal(decimal.RequireFromString("10.1")) {
		t.Errorf("payment = %s, expected 10.10", item.Payment)
	}
	if item.Month != 7 {
		t.Errorf("month = %d, expected 7", item.Month)
	}
}

func TestWorkingPlaces(t *testing.T) {
	tests := []struct {
		name   string
		rate   string
		months int
		min    int32
		max    int32
	}{
		{"Zero rate", "0", 360, 10, 10},
		{"Ordinary mortgage", "0.0040833333333333", 360, 10, 10},
		{"Extreme rate over ten years", "0.25", 120, 18, 20},
		{"Extreme rate over a century", "0.25", 1200, 120, 125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workingPlaces(decimal.RequireFromString(tt.rate), tt.months)
			if got < tt.min || got > tt.max {
				t.Errorf("workingPlaces() = %d, expected between %d and %d", got, tt.min, tt.max)
			}
		})
	}
}
