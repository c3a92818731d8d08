package pagination

import "sync"

// Feed accumulates pages for a "load more" list. Pages are appended, never
// replaced. Reset starts a new generation; pages fetched for an older
// generation are discarded when they arrive.
type Feed[T any] struct {
	mu         sync.Mutex
	items      []T
	next       int
	hasMore    bool
	generation uint64
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{hasMore: true}
}

// Reset empties the feed and returns the new generation. The next page to
// request is offset 0.
func (f *Feed[T]) Reset() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = nil
	f.next = 0
	f.hasMore = true
	f.generation++
	return f.generation
}

func (f *Feed[T]) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// NextOffset is the page index the next load-more request should ask for.
func (f *Feed[T]) NextOffset() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

func (f *Feed[T]) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Apply appends page if it belongs to the current generation and is the page
// the feed is waiting for. It reports whether the page was used.
func (f *Feed[T]) Apply(generation uint64, page *Page[T]) bool {
	if page == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if generation != f.generation || page.Offset != f.next {
		return false
	}

	f.items = append(f.items, page.Items...)
	f.next = page.Offset + 1
	f.hasMore = page.HasMore()
	return true
}

// Items returns a copy of everything accumulated so far.
func (f *Feed[T]) Items() []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]T, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
