// Package session ties one search box to its private result cache,
// debounced input, and keyboard selection state.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/usestring/searchbox/internal/cache"
	"github.com/usestring/searchbox/internal/search"
)

// Searcher computes ranked results for a query. *search.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Config controls one session.
type Config struct {
	CacheCapacity int           // entries in the per-session query cache
	Debounce      time.Duration // quiet period before a typed query runs
}

// Session is one active search box. Each session owns its own LRU cache
// keyed by the normalized query, created at construction and discarded
// with the session; there is no shared or global cache.
//
// The mutex exists because the debounce timer fires on its own goroutine;
// the cache itself stays single-caller as required.
type Session struct {
	searcher Searcher
	debounce time.Duration

	// onResults receives the outcome of every debounced search.
	onResults func(query string, results []search.Result, err error)

	mu      sync.Mutex
	cache   *cache.LRU[string, []search.Result]
	results []search.Result
	cursor  int
	timer   *time.Timer
	pending string
	closed  bool
}

// New creates a session. onResults may be nil when the caller only uses
// Search directly and never SetQuery.
func New(searcher Searcher, cfg Config, onResults func(query string, results []search.Result, err error)) (*Session, error) {
	c, err := cache.New[string, []search.Result](cfg.CacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Session{
		searcher:  searcher,
		debounce:  cfg.Debounce,
		onResults: onResults,
		cache:     c,
	}, nil
}

// Search runs the query now, consulting the session cache first. A hit
// promotes the entry; a miss computes via the engine and stores the full
// ranked list. limit truncates the returned slice only, never what is
// cached. The selection cursor resets to the top of the new results.
func (s *Session) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	key := search.Normalize(query)
	if key == "" {
		s.mu.Lock()
		s.results = nil
		s.cursor = 0
		s.mu.Unlock()
		return nil, nil
	}

	s.mu.Lock()
	results, hit := s.cache.Get(key)
	s.mu.Unlock()

	if !hit {
		var err error
		results, err = s.searcher.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache.Put(key, results)
		s.mu.Unlock()
	} else {
		slog.Debug("query cache hit", "query", key)
	}

	s.mu.Lock()
	s.results = results
	s.cursor = 0
	s.mu.Unlock()

	return clip(results, limit), nil
}

// SetQuery feeds one keystroke's worth of query text. The search runs
// after the debounce quiet period; rapid successive calls coalesce into
// one search for the last value.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pending = query
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// Flush runs any pending debounced query immediately.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.closed || s.timer == nil {
		s.mu.Unlock()
		return
	}
	stopped := s.timer.Stop()
	s.mu.Unlock()

	if stopped {
		s.fire()
	}
}

// Close stops the debounce timer. The session must not be used after.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	query := s.pending
	s.mu.Unlock()

	results, err := s.Search(context.Background(), query, 0)
	if s.onResults != nil {
		s.onResults(query, results, err)
	}
}

// MoveDown advances the selection cursor, wrapping past the last result.
func (s *Session) MoveDown() {
	s.move(1)
}

// MoveUp retreats the selection cursor, wrapping past the first result.
func (s *Session) MoveUp() {
	s.move(-1)
}

func (s *Session) move(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.results)
	if n == 0 {
		return
	}
	s.cursor = (s.cursor + delta + n) % n
}

// Current returns the selected result, or false when there are none.
func (s *Session) Current() (search.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return search.Result{}, false
	}
	return s.results[s.cursor], true
}

// CursorIndex returns the selection position within the current results.
func (s *Session) CursorIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// CachedQueries returns the cache keys from least to most recently used.
func (s *Session) CachedQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Keys()
}

func clip(results []search.Result, limit int) []search.Result {
	if limit <= 0 || limit >= len(results) {
		return results
	}
	return results[:limit]
}
