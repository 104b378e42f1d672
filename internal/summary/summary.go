// Package summary computes the header statistics shown above the cards.
package summary

import (
	"sort"

	"github.com/yourorg/evdash/internal/model"
)

// Stats summarizes one response's opportunity list.
type Stats struct {
	Count     int
	BestEV    float64
	BestBook  string
	AverageEV float64
	MedianEV  float64
	Books     int
}

// Compute derives header statistics from opportunities. Zero value for an
// empty list.
func Compute(opps []model.Opportunity) Stats {
	if len(opps) == 0 {
		return Stats{}
	}

	var sum float64
	best := opps[0]
	books := make(map[string]struct{}, len(opps))

	for _, o := range opps {
		sum += o.EVPercentage
		if o.EVPercentage > best.EVPercentage {
			best = o
		}
		if o.BestBook != "" {
			books[o.BestBook] = struct{}{}
		}
	}

	return Stats{
		Count:     len(opps),
		BestEV:    best.EVPercentage,
		BestBook:  best.BestBook,
		AverageEV: sum / float64(len(opps)),
		MedianEV:  Median(opps, func(o model.Opportunity) float64 { return o.EVPercentage }),
		Books:     len(books),
	}
}

// Median returns the median of the selected value across opportunities.
func Median(opps []model.Opportunity, selector func(model.Opportunity) float64) float64 {
	if len(opps) == 0 {
		return 0
	}

	values := make([]float64, len(opps))
	for i, o := range opps {
		values[i] = selector(o)
	}
	sort.Float64s(values)

	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}
