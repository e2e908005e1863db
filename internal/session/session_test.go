package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/searchbox/internal/cache"
	"github.com/usestring/searchbox/internal/dataset"
	"github.com/usestring/searchbox/internal/search"
)

// fakeSearcher records queries and serves canned results.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]search.Result
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: make(map[string][]search.Result)}
}

func (f *fakeSearcher) set(query string, names ...string) {
	var rs []search.Result
	for _, n := range names {
		rs = append(rs, search.Result{Record: dataset.Record{ID: n, Name: n}})
	}
	f.results[search.Normalize(query)] = rs
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := search.Normalize(query)
	f.queries = append(f.queries, key)
	return f.results[key], nil
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newSession(t *testing.T, fs *fakeSearcher, capacity int) *Session {
	t.Helper()
	s, err := New(fs, Config{CacheCapacity: capacity, Debounce: 5 * time.Millisecond}, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNew_InvalidCapacity(t *testing.T) {
	_, err := New(newFakeSearcher(), Config{CacheCapacity: 0}, nil)
	assert.ErrorIs(t, err, cache.ErrInvalidCapacity)
}

func TestSearch_CacheAvoidsRecomputation(t *testing.T) {
	fs := newFakeSearcher()
	fs.set("apple", "Apple Pie")
	s := newSession(t, fs, 4)

	for i := 0; i < 3; i++ {
		results, err := s.Search(context.Background(), "Apple", 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
	}

	// Query normalization makes all three the same key; only the first
	// reaches the engine.
	assert.Equal(t, []string{"apple"}, fs.calls())
}

func TestSearch_CachePromotionShapesEviction(t *testing.T) {
	fs := newFakeSearcher()
	fs.set("q1", "One")
	fs.set("q2", "Two")
	fs.set("q3", "Three")
	s := newSession(t, fs, 2)

	ctx := context.Background()
	_, err := s.Search(ctx, "q1", 0)
	require.NoError(t, err)
	_, err = s.Search(ctx, "q2", 0)
	require.NoError(t, err)

	// Re-reading q1 promotes it, so inserting q3 evicts q2.
	_, err = s.Search(ctx, "q1", 0)
	require.NoError(t, err)
	_, err = s.Search(ctx, "q3", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q3"}, s.CachedQueries())

	// q1 still cached: no new engine call. q2 was evicted: one more call.
	_, _ = s.Search(ctx, "q1", 0)
	_, _ = s.Search(ctx, "q2", 0)
	assert.Equal(t, []string{"q1", "q2", "q3", "q2"}, fs.calls())
}

func TestSearch_LimitClipsWithoutAffectingCache(t *testing.T) {
	fs := newFakeSearcher()
	fs.set("fruit", "Apple", "Banana", "Cherry")
	s := newSession(t, fs, 4)

	results, err := s.Search(context.Background(), "fruit", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// The cache holds the full list; a larger limit is served from it.
	results, err = s.Search(context.Background(), "fruit", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, []string{"fruit"}, fs.calls())
}

func TestSearch_EmptyQueryBypassesCache(t *testing.T) {
	fs := newFakeSearcher()
	s := newSession(t, fs, 4)

	results, err := s.Search(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, fs.calls())
	assert.Empty(t, s.CachedQueries())
}

func TestSetQuery_DebounceCoalesces(t *testing.T) {
	fs := newFakeSearcher()
	fs.set("app", "Apple Pie")

	got := make(chan string, 8)
	s, err := New(fs, Config{CacheCapacity: 4, Debounce: 20 * time.Millisecond},
		func(query string, _ []search.Result, err error) {
			require.NoError(t, err)
			got <- query
		})
	require.NoError(t, err)
	defer s.Close()

	s.SetQuery("a")
	s.SetQuery("ap")
	s.SetQuery("app")

	select {
	case q := <-got:
		assert.Equal(t, "app", q)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never fired")
	}

	// No further callback for the coalesced intermediate queries.
	select {
	case q := <-got:
		t.Fatalf("unexpected extra callback for %q", q)
	case <-time.After(100 * time.Millisecond):
	}

	assert.Equal(t, []string{"app"}, fs.calls())
}

func TestFlush_RunsPendingImmediately(t *testing.T) {
	fs := newFakeSearcher()
	fs.set("apple", "Apple Pie")

	got := make(chan string, 1)
	s, err := New(fs, Config{CacheCapacity: 4, Debounce: time.Hour},
		func(query string, _ []search.Result, _ error) { got <- query })
	require.NoError(t, err)
	defer s.Close()

	s.SetQuery("apple")
	s.Flush()

	select {
	case q := <-got:
		assert.Equal(t, "apple", q)
	case <-time.After(2 * time.Second):
		t.Fatal("flush did not run the pending query")
	}
}

func TestClose_StopsPendingQuery(t *testing.T) {
	fs := newFakeSearcher()
	fired := make(chan struct{}, 1)
	s, err := New(fs, Config{CacheCapacity: 4, Debounce: 10 * time.Millisecond},
		func(string, []search.Result, error) { fired <- struct{}{} })
	require.NoError(t, err)

	s.SetQuery("apple")
	s.Close()

	select {
	case <-fired:
		t.Fatal("callback fired after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSelection_WrapsAndResets(t *testing.T) {
	fs := newFakeSearcher()
	fs.set("fruit", "Apple", "Banana", "Cherry")
	fs.set("one", "Only")
	s := newSession(t, fs, 4)

	_, err := s.Search(context.Background(), "fruit", 0)
	require.NoError(t, err)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Apple", cur.Record.Name)

	s.MoveDown()
	s.MoveDown()
	cur, _ = s.Current()
	assert.Equal(t, "Cherry", cur.Record.Name)

	s.MoveDown() // wraps to the top
	cur, _ = s.Current()
	assert.Equal(t, "Apple", cur.Record.Name)

	s.MoveUp() // wraps to the bottom
	cur, _ = s.Current()
	assert.Equal(t, "Cherry", cur.Record.Name)

	// New results reset the cursor.
	_, err = s.Search(context.Background(), "one", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CursorIndex())
}

func TestSelection_Empty(t *testing.T) {
	fs := newFakeSearcher()
	s := newSession(t, fs, 4)

	_, ok := s.Current()
	assert.False(t, ok)
	s.MoveDown()
	s.MoveUp()
	assert.Equal(t, 0, s.CursorIndex())
}
