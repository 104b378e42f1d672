package view

import (
	"fmt"
	"strings"

	"github.com/yourorg/evdash/internal/model"
	"github.com/yourorg/evdash/internal/summary"
)

// Empty-state messages; which one shows depends on whether the backend
// applied server-side filters to produce the empty result.
const (
	emptyFilteredMsg   = "No opportunities match your filters. Try adjusting your filters."
	emptyUnfilteredMsg = "No +EV opportunities right now. Check back later."
)

// Render produces the text dashboard for this snapshot.
func (s Snapshot) Render() string {
	var b strings.Builder

	b.WriteString("== +EV Opportunities ==\n")
	b.WriteString("Last updated: " + s.lastUpdatedLabel() + "\n")
	b.WriteString("Filters: " + filtersLabel(s.Filters) + "\n\n")

	switch s.Status {
	case StatusLoading:
		b.WriteString("Loading opportunities...\n")
	case StatusError:
		fmt.Fprintf(&b, "Failed to load opportunities: %v\n", s.Err)
		b.WriteString("Type 'retry' to try again.\n")
	case StatusEmpty:
		if s.Data != nil && s.Data.FiltersApplied {
			b.WriteString(emptyFilteredMsg + "\n")
		} else {
			b.WriteString(emptyUnfilteredMsg + "\n")
		}
	case StatusPopulated:
		renderCards(&b, s.Data)
	}

	return b.String()
}

// lastUpdatedLabel localizes the response timestamp to the viewer's
// clock, or reports "Never" before the first successful fetch.
func (s Snapshot) lastUpdatedLabel() string {
	if s.LastApplied.IsZero() {
		return "Never"
	}
	return s.LastApplied.Local().Format("3:04:05 PM")
}

func filtersLabel(f model.Filters) string {
	if f.IsZero() {
		return "none"
	}
	parts := make([]string, 0, 2)
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Sport != "" {
		parts = append(parts, "sport="+f.Sport)
	}
	return strings.Join(parts, " ")
}

// renderCards writes the summary line and one card per opportunity, in
// the order the backend returned them.
func renderCards(b *strings.Builder, data *model.OpportunitiesResponse) {
	stats := summary.Compute(data.Opportunities)
	fmt.Fprintf(b, "%d opportunities | best %+.2f%% (%s) | avg %+.2f%% | median %+.2f%% | %d books\n\n",
		stats.Count, stats.BestEV, stats.BestBook, stats.AverageEV, stats.MedianEV, stats.Books)

	for _, o := range data.Opportunities {
		b.WriteString(Card(o) + "\n")
	}
}

// Card renders a single opportunity with its EV badge.
func Card(o model.Opportunity) string {
	badge := strings.ToUpper(string(o.Tier()))
	line := fmt.Sprintf("[%s %+.2f%%] %s | %s", badge, o.EVPercentage, o.Event, o.Description)
	detail := fmt.Sprintf("    %s via %s, updated %s", o.BetType, o.BestBook, o.LastUpdated)
	return line + "\n" + detail
}
