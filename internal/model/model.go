// Package model defines the core data structures for the opportunities dashboard.
package model

import (
	"fmt"
	"net/url"
)

// Sports lists the sport codes the backend understands. The empty code
// means "all sports" and is never sent on the wire.
var Sports = []string{"nfl", "nba", "mlb", "nhl"}

// Opportunity represents a single +EV betting edge computed by the backend.
// The client only reads these; they are created and owned upstream.
type Opportunity struct {
	// ID uniquely identifies the opportunity across books
	ID string `json:"id"`

	// Event is the human-readable event name, e.g. "Lakers @ Celtics"
	Event string `json:"event"`

	// Description describes the bet itself, e.g. "LeBron James Over 27.5 Points"
	Description string `json:"description"`

	// BetType is the market label, e.g. "Player Props"
	BetType string `json:"bet_type"`

	// Sport is the sport code the event belongs to
	Sport string `json:"sport,omitempty"`

	// EVPercentage is the expected value of the bet as a signed percentage,
	// e.g. 3.2 for +3.2%
	EVPercentage float64 `json:"ev_percentage"`

	// BestBook is the sportsbook currently offering the best price
	BestBook string `json:"best_book"`

	// LastUpdated is the ISO-8601 timestamp of the last odds refresh
	LastUpdated string `json:"last_updated"`
}

// OpportunitiesResponse is the envelope returned by GET /api/opportunities.
// Each fetch supersedes the previous response wholesale; responses are
// never merged.
type OpportunitiesResponse struct {
	Opportunities  []Opportunity `json:"opportunities"`
	Total          int           `json:"total"`
	FiltersApplied bool          `json:"filters_applied"`
	LastUpdated    string        `json:"last_updated"`
	ResponseTimeMS float64       `json:"response_time_ms"`
}

// Filters holds the view's filter state. The zero value means unfiltered.
// A Filters value doubles as the cache key for its result set.
type Filters struct {
	Search string
	Sport  string
}

// Query builds the request query parameters, omitting any empty filter
// value entirely rather than sending empty-string parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Sport != "" {
		q.Set("sport", f.Sport)
	}
	return q
}

// Key returns the canonical cache key for this filter tuple.
func (f Filters) Key() string {
	return fmt.Sprintf("search=%s|sport=%s", f.Search, f.Sport)
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Search == "" && f.Sport == ""
}

// ValidSport reports whether code is an accepted sport filter. The empty
// code is valid and means "all".
func ValidSport(code string) bool {
	if code == "" {
		return true
	}
	for _, s := range Sports {
		if s == code {
			return true
		}
	}
	return false
}

// Tier classifies an EV percentage for badge display.
type Tier string

// Badge tiers, best first.
const (
	TierExcellent Tier = "excellent"
	TierHigh      Tier = "high"
	TierPositive  Tier = "positive"
	TierNeutral   Tier = "neutral"
)

// TierFor maps an EV percentage to its badge tier. Thresholds are
// evaluated in order; boundary values land in the higher tier.
func TierFor(ev float64) Tier {
	switch {
	case ev >= 4.5:
		return TierExcellent
	case ev >= 2.5:
		return TierHigh
	case ev > 0:
		return TierPositive
	default:
		return TierNeutral
	}
}

// Tier returns the badge tier for this opportunity.
func (o Opportunity) Tier() Tier {
	return TierFor(o.EVPercentage)
}
