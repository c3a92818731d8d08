package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/client"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/log"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

// Fetcher runs one search request. *client.Client implements it.
type Fetcher interface {
	Search(ctx context.Context, q client.SearchQuery, req pagination.Request) (*pagination.Page[entities.Book], error)
}

// Session is the state behind a search screen. Changing the keyword or the
// category starts a new search after the debounce delay; LoadMore appends
// the next page of the current search.
type Session struct {
	fetcher   Fetcher
	debouncer *Debouncer
	feed      *pagination.Feed[entities.Book]
	limit     int
	onChange  func()

	mu      sync.Mutex
	query   client.SearchQuery
	pending uint64
	lastErr error

	// current is the query behind the feed's generation and committed the
	// ticket that started it. Both change only when a search resets the feed.
	current   client.SearchQuery
	committed uint64
}

type SessionOption func(*Session)

// WithLimit sets the page size.
func WithLimit(limit int) SessionOption {
	return func(s *Session) { s.limit = limit }
}

// WithDelay sets the debounce quiet period.
func WithDelay(delay time.Duration) SessionOption {
	return func(s *Session) { s.debouncer = NewDebouncer(delay) }
}

// OnChange registers a callback run after the results or the error of a
// search change.
func OnChange(fn func()) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

func NewSession(fetcher Fetcher, opts ...SessionOption) *Session {
	s := &Session{
		fetcher:   fetcher,
		debouncer: NewDebouncer(DefaultDelay),
		feed:      pagination.NewFeed[entities.Book](),
		limit:     pagination.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetKeyword records a keystroke.
func (s *Session) SetKeyword(ctx context.Context, keyword string) {
	s.update(ctx, func(q *client.SearchQuery) { q.Keyword = keyword })
}

// SetCategory changes the category filter. An empty category matches all.
func (s *Session) SetCategory(ctx context.Context, category string) {
	s.update(ctx, func(q *client.SearchQuery) { q.Category = category })
}

func (s *Session) update(ctx context.Context, change func(q *client.SearchQuery)) {
	s.mu.Lock()
	change(&s.query)
	s.pending++
	ticket := s.pending
	s.mu.Unlock()

	s.debouncer.Trigger(ctx, func(ctx context.Context) {
		s.run(ctx, ticket)
	})
}

// run replaces the results with the first page of the current query. A
// response that arrives after a newer keystroke is dropped.
func (s *Session) run(ctx context.Context, ticket uint64) {
	s.mu.Lock()
	q := s.query
	generation := s.feed.Reset()
	s.current = q
	s.committed = ticket
	s.mu.Unlock()

	page, err := s.fetcher.Search(ctx, q, pagination.Request{Offset: 0, Limit: s.limit})

	s.mu.Lock()
	superseded := ticket != s.pending
	if !superseded && !errors.Is(err, context.Canceled) {
		s.lastErr = err
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Warn("Search failed", zap.String("keyword", q.Keyword), zap.Error(err))
		if !superseded {
			s.changed()
		}
		return
	}
	if superseded {
		return
	}
	if s.feed.Apply(generation, page) {
		s.changed()
	}
}

// LoadMore fetches the next page of the search whose results are shown and
// appends it. It is a no-op when everything is loaded or while a newer
// keyword or category is waiting for its search to start. On error the
// items already shown are kept.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.committed != s.pending || !s.feed.HasMore() {
		s.mu.Unlock()
		return nil
	}
	q := s.current
	generation := s.feed.Generation()
	s.mu.Unlock()

	page, err := s.fetcher.Search(ctx, q, pagination.Request{Offset: s.feed.NextOffset(), Limit: s.limit})
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	if s.feed.Apply(generation, page) {
		s.changed()
	}
	return nil
}

func (s *Session) Items() []entities.Book {
	return s.feed.Items()
}

func (s *Session) HasMore() bool {
	return s.feed.HasMore()
}

// Err is the error of the last failed request, cleared by the next
// successful search.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close cancels any pending search and waits for a running one.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
