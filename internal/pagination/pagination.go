// Package pagination implements offset/limit page windows over a store.
//
// Offset is a zero-based page index, not a row count: the rows skipped are
// offset*limit. The total count and the page itself are fetched by two
// separate queries, so a concurrent write between them can make HasMore off
// by one page. Callers accept that drift.
//
// # Usage
//
//	req := pagination.Parse(c.Query("offset"), c.Query("limit"))
//	page, err := pagination.Paginate(ctx, req, countFn, fetchFn)
package pagination

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Request asks for one page.
type Request struct {
	Offset int
	Limit  int
}

// NewRequest normalizes offset and limit: a negative offset becomes 0, a
// non-positive limit becomes DefaultLimit, and limits are capped at MaxLimit.
func NewRequest(offset, limit int) Request {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{Offset: offset, Limit: limit}
}

// Parse builds a Request from raw query values. Unparseable values fall back
// to the defaults.
func Parse(offsetStr, limitStr string) Request {
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		offset = 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		limit = DefaultLimit
	}
	return NewRequest(offset, limit)
}

// FromPage converts a 1-based page number (used by the back-office) into a
// Request.
func FromPage(page, limit int) Request {
	return NewRequest(page-1, limit)
}

// Skip is the number of rows before this page.
func (r Request) Skip() int {
	return r.Offset * r.Limit
}

// Window describes where a page sits within the whole result set.
type Window struct {
	Offset     int
	Limit      int
	TotalCount int64
}

// HasMore reports whether rows exist past this page.
func (w Window) HasMore() bool {
	return int64(w.Offset*w.Limit+w.Limit) < w.TotalCount
}

// TotalPages is ceil(TotalCount / Limit).
func (w Window) TotalPages() int {
	if w.Limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(w.TotalCount) / float64(w.Limit)))
}

// Meta is the JSON pagination block attached to listing responses.
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasMore     bool  `json:"hasMore"`
	Limit       int   `json:"limit"`
}

// Meta returns the response block for this window. CurrentPage is 1-based.
func (w Window) Meta() Meta {
	return Meta{
		CurrentPage: w.Offset + 1,
		TotalPages:  w.TotalPages(),
		TotalCount:  w.TotalCount,
		HasMore:     w.HasMore(),
		Limit:       w.Limit,
	}
}

// Page is one window of items.
type Page[T any] struct {
	Items []T
	Window
}

type CountFunc func(ctx context.Context) (int64, error)

type FetchFunc[T any] func(ctx context.Context, skip, limit int) ([]T, error)

// Paginate runs the count and the page query concurrently and combines them.
func Paginate[T any](ctx context.Context, req Request, count CountFunc, fetch FetchFunc[T]) (*Page[T], error) {
	req = NewRequest(req.Offset, req.Limit)

	var (
		total int64
		items []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := count(gctx)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := fetch(gctx, req.Skip(), req.Limit)
		if err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}
		items = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}

	return &Page[T]{
		Items: items,
		Window: Window{
			Offset:     req.Offset,
			Limit:      req.Limit,
			TotalCount: total,
		},
	}, nil
}
