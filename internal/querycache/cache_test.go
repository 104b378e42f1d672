package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/evdash/internal/model"
)

func countingFetch(calls *int32, resp *model.OpportunitiesResponse, err error) FetchFunc {
	return func(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error) {
		atomic.AddInt32(calls, 1)
		return resp, err
	}
}

func TestDoServesFreshEntries(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	var calls int32
	fn := countingFetch(&calls, &model.OpportunitiesResponse{Total: 1}, nil)
	f := model.Filters{Sport: "nba"}

	first := c.Do(context.Background(), f, fn)
	require.NoError(t, first.Err)

	second := c.Do(context.Background(), f, fn)
	require.NoError(t, second.Err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "fresh same-key lookup must not re-fetch")
	assert.Same(t, first, second)
}

func TestDoRefetchesExpiredEntries(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Close()

	var calls int32
	fn := countingFetch(&calls, &model.OpportunitiesResponse{}, nil)
	f := model.Filters{}

	c.Do(context.Background(), f, fn)
	time.Sleep(20 * time.Millisecond)
	c.Do(context.Background(), f, fn)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDistinctKeysGetDistinctEntries(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	var calls int32
	fn := countingFetch(&calls, &model.OpportunitiesResponse{}, nil)

	c.Do(context.Background(), model.Filters{Sport: "nba"}, fn)
	c.Do(context.Background(), model.Filters{Sport: "nfl"}, fn)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, c.Size())
}

func TestRefreshBypassesFreshness(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	var calls int32
	fn := countingFetch(&calls, &model.OpportunitiesResponse{}, nil)
	f := model.Filters{Search: "lakers"}

	c.Do(context.Background(), f, fn)
	c.Refresh(context.Background(), f, fn)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "Refresh must fetch even inside the freshness window")
}

func TestFailuresAreNotServedAsFresh(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	var calls int32
	fn := countingFetch(&calls, nil, errors.New("backend down"))
	f := model.Filters{}

	first := c.Do(context.Background(), f, fn)
	require.Error(t, first.Err)

	second := c.Do(context.Background(), f, fn)
	require.Error(t, second.Err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "a cached failure must start a new attempt sequence")
}

func TestEntriesReplacedWholesale(t *testing.T) {
	c := New(time.Nanosecond) // everything stale immediately
	defer c.Close()

	f := model.Filters{}
	c.Do(context.Background(), f, countingFetch(new(int32), &model.OpportunitiesResponse{Total: 1}, nil))
	first, _ := c.Lookup(f)

	c.Do(context.Background(), f, countingFetch(new(int32), &model.OpportunitiesResponse{Total: 2}, nil))
	second, _ := c.Lookup(f)

	require.NotSame(t, first, second, "entries must be replaced, not mutated")
	assert.Equal(t, 1, first.Response.Total, "superseded entry must be untouched")
	assert.Equal(t, 2, second.Response.Total)
}

func TestInflightCoalescing(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	release := make(chan struct{})
	var calls int32
	fn := func(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &model.OpportunitiesResponse{Total: 7}, nil
	}

	f := model.Filters{Sport: "mlb"}
	var wg sync.WaitGroup
	entries := make([]*Entry, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i] = c.Do(context.Background(), f, fn)
		}(i)
	}

	// Let the followers queue up behind the leader, then release it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "at most one in-flight fetch per key")
	for _, e := range entries {
		require.NoError(t, e.Err)
		assert.Equal(t, 7, e.Response.Total)
	}
}

func TestWaiterHonorsContext(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	release := make(chan struct{})
	defer close(release)
	fn := func(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error) {
		<-release
		return &model.OpportunitiesResponse{}, nil
	}

	f := model.Filters{}
	go c.Do(context.Background(), f, fn)
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := c.Do(ctx, f, fn)
	require.Error(t, e.Err)
	assert.ErrorIs(t, e.Err, context.Canceled)
}
