// Package validation provides record hygiene for backend responses.
package validation

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/evdash/internal/model"
)

// Options holds configuration for response cleaning
type Options struct {
	// RequireID drops opportunities without a backend identifier
	RequireID bool

	// RequireEvent drops opportunities without an event name
	RequireEvent bool

	// MaxAbsEV is the largest EV magnitude considered plausible; values
	// beyond it (or non-finite values) are treated as backend glitches
	MaxAbsEV float64
}

// DefaultOptions returns sensible defaults for response cleaning
func DefaultOptions() Options {
	return Options{
		RequireID:    true,
		RequireEvent: true,
		MaxAbsEV:     100.0,
	}
}

// Clean removes malformed opportunity records from a response before it is
// cached. The envelope fields are preserved; only the record list shrinks.
func Clean(resp *model.OpportunitiesResponse) *model.OpportunitiesResponse {
	return CleanWithOptions(resp, DefaultOptions())
}

// CleanWithOptions removes malformed records with custom options.
func CleanWithOptions(resp *model.OpportunitiesResponse, opts Options) *model.OpportunitiesResponse {
	if resp == nil {
		return nil
	}

	valid := make([]model.Opportunity, 0, len(resp.Opportunities))
	for _, o := range resp.Opportunities {
		if recordValid(o, opts) {
			valid = append(valid, o)
		}
	}

	if dropped := len(resp.Opportunities) - len(valid); dropped > 0 {
		logrus.Warnf("Dropped %d malformed opportunity records", dropped)
	}

	out := *resp
	out.Opportunities = valid
	return &out
}

// recordValid applies the per-record criteria.
func recordValid(o model.Opportunity, opts Options) bool {
	if opts.RequireID && o.ID == "" {
		return false
	}
	if opts.RequireEvent && o.Event == "" {
		return false
	}
	if math.IsNaN(o.EVPercentage) || math.IsInf(o.EVPercentage, 0) {
		return false
	}
	if opts.MaxAbsEV > 0 && math.Abs(o.EVPercentage) > opts.MaxAbsEV {
		return false
	}
	return true
}
