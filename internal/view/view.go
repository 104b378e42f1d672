// Package view implements the opportunities dashboard view: filter state,
// the four render states, the 30-second poll loop, and the stale-result
// discard rule.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/evdash/internal/config"
	"github.com/yourorg/evdash/internal/metrics"
	"github.com/yourorg/evdash/internal/model"
	"github.com/yourorg/evdash/internal/querycache"
	"github.com/yourorg/evdash/internal/validation"
)

// Status is the view's render state. The four states are mutually
// exclusive; exactly one holds at any time.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusEmpty
	StatusPopulated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusPopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Fetcher retrieves opportunities for a filter key.
type Fetcher interface {
	FetchOpportunities(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error)
}

// Snapshot is an immutable copy of the view state for rendering and
// inspection.
type Snapshot struct {
	Status      Status
	Filters     model.Filters
	Data        *model.OpportunitiesResponse
	Err         error
	LastApplied time.Time // zero until the current key has a successful response
	Generation  uint64
}

// View owns the filter state and applies fetch results. Every key change
// bumps a generation counter; a result is applied only if the generation
// captured at request start still matches, so a stale-key response that
// resolves late is discarded instead of overwriting the current view.
type View struct {
	cache        *querycache.Cache
	fetch        querycache.FetchFunc
	limiter      *rate.Limiter
	pollInterval time.Duration

	// OnUpdate, when set, is invoked with a fresh snapshot after every
	// applied state change. Called without the view lock held.
	OnUpdate func(Snapshot)

	mu          sync.Mutex
	filters     model.Filters
	generation  uint64
	status      Status
	data        *model.OpportunitiesResponse
	lastErr     error
	lastApplied time.Time
}

// New wires a view to the shared cache and a backend fetcher.
func New(cache *querycache.Cache, fetcher Fetcher, cfg config.Config) *View {
	return &View{
		cache: cache,
		fetch: func(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error) {
			resp, err := fetcher.FetchOpportunities(ctx, f)
			if err != nil {
				return nil, err
			}
			return validation.Clean(resp), nil
		},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		pollInterval: cfg.PollInterval,
		status:       StatusLoading,
	}
}

// SetSearch updates the free-text search filter. A changed value re-keys
// the view and fetches immediately; there is no debounce.
func (v *View) SetSearch(ctx context.Context, search string) {
	v.mu.Lock()
	if v.filters.Search == search {
		v.mu.Unlock()
		return
	}
	v.filters.Search = search
	v.rekeyLocked(ctx)
}

// SetSport updates the sport filter. Unknown codes are rejected.
func (v *View) SetSport(ctx context.Context, sport string) {
	if !model.ValidSport(sport) {
		logrus.Warnf("Ignoring unknown sport code %q", sport)
		return
	}
	v.mu.Lock()
	if v.filters.Sport == sport {
		v.mu.Unlock()
		return
	}
	v.filters.Sport = sport
	v.rekeyLocked(ctx)
}

// ClearFilters resets both filter values in a single transition and
// issues one unfiltered fetch.
func (v *View) ClearFilters(ctx context.Context) {
	v.mu.Lock()
	if v.filters.IsZero() {
		v.mu.Unlock()
		return
	}
	v.filters = model.Filters{}
	v.rekeyLocked(ctx)
}

// Retry re-issues the current key's fetch after a failure, bypassing the
// normal polling cadence and the freshness window.
func (v *View) Retry(ctx context.Context) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	f := v.filters
	v.status = StatusLoading
	v.data = nil
	v.lastErr = nil
	v.mu.Unlock()

	go v.resolve(ctx, gen, f, true)
}

// Filters returns the current filter values.
func (v *View) Filters() model.Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// Snapshot returns a copy of the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{
		Status:      v.status,
		Filters:     v.filters,
		Data:        v.data,
		Err:         v.lastErr,
		LastApplied: v.lastApplied,
		Generation:  v.generation,
	}
}

// Run issues the initial fetch, then refreshes the current key every poll
// interval until ctx is done.
func (v *View) Run(ctx context.Context) {
	v.mu.Lock()
	v.rekeyLocked(ctx)

	logrus.Infof("View polling every %v", v.pollInterval)
	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("View poll loop stopped")
			return
		case <-ticker.C:
			v.pollOnce(ctx)
		}
	}
}

// pollOnce refreshes the current key. The generation is captured without
// being bumped: a poll is a refresh of the current key, not a new key, so
// a filter change racing the poll still wins via the generation check.
func (v *View) pollOnce(ctx context.Context) {
	metrics.PollCycles.Inc()
	v.mu.Lock()
	gen := v.generation
	f := v.filters
	v.mu.Unlock()

	e := v.cache.Refresh(ctx, f, v.fetch)
	v.apply(gen, e)
}

// rekeyLocked starts a fresh attempt sequence for the current filters.
// Called with v.mu held; releases it.
func (v *View) rekeyLocked(ctx context.Context) {
	v.generation++
	gen := v.generation
	f := v.filters
	v.status = StatusLoading
	v.data = nil
	v.lastErr = nil
	v.lastApplied = time.Time{}
	v.mu.Unlock()

	if v.limiter != nil && !v.limiter.Allow() {
		// Shed pathological input floods; the next keystroke or poll tick
		// picks the key back up.
		logrus.Warnf("Fetch for %s shed by rate limit", f.Key())
		return
	}

	go v.resolve(ctx, gen, f, false)
}

// resolve runs the fetch through the cache and applies the outcome.
func (v *View) resolve(ctx context.Context, gen uint64, f model.Filters, bypassFreshness bool) {
	var e *querycache.Entry
	if bypassFreshness {
		e = v.cache.Refresh(ctx, f, v.fetch)
	} else {
		e = v.cache.Do(ctx, f, v.fetch)
	}
	v.apply(gen, e)
}

// apply installs a fetch outcome unless the view has moved on to a newer
// generation, in which case the result is discarded.
func (v *View) apply(gen uint64, e *querycache.Entry) {
	v.mu.Lock()
	if gen != v.generation {
		v.mu.Unlock()
		metrics.StaleDiscards.Inc()
		logrus.Debugf("Discarding stale result (generation %d, current %d)", gen, v.generation)
		return
	}

	if e.Err != nil {
		v.status = StatusError
		v.lastErr = e.Err
		v.data = nil
		snap := v.snapshotLocked()
		v.mu.Unlock()
		logrus.Warnf("Fetch failed after retries: %v", e.Err)
		v.notify(snap)
		return
	}

	v.data = e.Response
	v.lastErr = nil
	v.lastApplied = appliedTime(e)
	if len(e.Response.Opportunities) == 0 {
		v.status = StatusEmpty
	} else {
		v.status = StatusPopulated
	}
	metrics.OpportunitiesShown.Set(float64(len(e.Response.Opportunities)))
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(snap)
}

func (v *View) notify(snap Snapshot) {
	if v.OnUpdate != nil {
		v.OnUpdate(snap)
	}
}

// appliedTime prefers the backend's response timestamp, falling back to
// the local fetch time when it does not parse.
func appliedTime(e *querycache.Entry) time.Time {
	if ts, err := time.Parse(time.RFC3339, e.Response.LastUpdated); err == nil {
		return ts
	}
	return e.FetchedAt
}
