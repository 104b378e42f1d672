package model

import (
	"testing"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name     string
		ev       float64
		expected Tier
	}{
		{name: "well above excellent", ev: 8.1, expected: TierExcellent},
		{name: "excellent boundary", ev: 4.5, expected: TierExcellent},
		{name: "just below excellent", ev: 4.49, expected: TierHigh},
		{name: "high boundary", ev: 2.5, expected: TierHigh},
		{name: "just below high", ev: 2.49, expected: TierPositive},
		{name: "small positive", ev: 0.01, expected: TierPositive},
		{name: "zero is neutral", ev: 0.0, expected: TierNeutral},
		{name: "negative is neutral", ev: -3.2, expected: TierNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFor(tt.ev); got != tt.expected {
				t.Errorf("TierFor(%v) = %v, want %v", tt.ev, got, tt.expected)
			}
		})
	}
}

func TestFiltersQuery(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		expected string
	}{
		{name: "no filters", filters: Filters{}, expected: ""},
		{name: "sport only omits search", filters: Filters{Sport: "nba"}, expected: "sport=nba"},
		{name: "search only omits sport", filters: Filters{Search: "lakers"}, expected: "search=lakers"},
		{name: "both set", filters: Filters{Search: "lakers", Sport: "nba"}, expected: "search=lakers&sport=nba"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Query().Encode(); got != tt.expected {
				t.Errorf("Query().Encode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFiltersKey(t *testing.T) {
	a := Filters{Search: "lakers", Sport: "nba"}
	b := Filters{Search: "lakers", Sport: "nfl"}
	c := Filters{Search: "lakers", Sport: "nba"}

	if a.Key() == b.Key() {
		t.Errorf("distinct filter tuples share key %q", a.Key())
	}
	if a.Key() != c.Key() {
		t.Errorf("equal filter tuples have keys %q and %q", a.Key(), c.Key())
	}
}

func TestValidSport(t *testing.T) {
	for _, code := range []string{"", "nfl", "nba", "mlb", "nhl"} {
		if !ValidSport(code) {
			t.Errorf("ValidSport(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"soccer", "NBA", "xfl"} {
		if ValidSport(code) {
			t.Errorf("ValidSport(%q) = true, want false", code)
		}
	}
}

func TestOpportunityTier(t *testing.T) {
	o := Opportunity{ID: "opp-1", EVPercentage: 5.0}
	if got := o.Tier(); got != TierExcellent {
		t.Errorf("Tier() = %v, want %v", got, TierExcellent)
	}
}
