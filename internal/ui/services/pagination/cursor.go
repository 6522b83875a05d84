// Package pagination accumulates successive pages of one scope.
package pagination

import (
	"context"
	"sync"
	"time"

	"channelsdb/internal/domain"
	"channelsdb/internal/source"
)

// Page sizes used by the search screen
const (
	GroupValuePageSize = 6  // facet values listed under a group
	DrillDownPageSize  = 6  // records under a selected facet value
	FullTextPageSize   = 12 // records in full-text mode
)

const unknownTotal = -1

// FetchFunc loads the page starting at offset
type FetchFunc[T any] func(ctx context.Context, offset, limit int) (domain.Page[T], error)

// Cursor owns the accumulated items of one scope. Items only ever grow and at
// most one fetch is outstanding at a time.
type Cursor[T any] struct {
	mu       sync.Mutex
	key      domain.ScopeKey
	pageSize int
	fetch    FetchFunc[T]

	items   []T
	total   int
	pending bool
	lastErr error
	closed  bool
}

// New creates an empty cursor whose total is unknown until the first page
func New[T any](key domain.ScopeKey, pageSize int, fetch FetchFunc[T]) *Cursor[T] {
	return &Cursor[T]{
		key:      key,
		pageSize: pageSize,
		fetch:    fetch,
		total:    unknownTotal,
	}
}

// NewSeeded creates a cursor that already holds a first page and its total
func NewSeeded[T any](key domain.ScopeKey, pageSize int, fetch FetchFunc[T], first []T, total int) *Cursor[T] {
	c := New(key, pageSize, fetch)
	c.items = append([]T(nil), first...)
	c.total = total
	if c.total < len(c.items) {
		c.total = len(c.items)
	}
	return c
}

// Key returns the scope the cursor pages through
func (c *Cursor[T]) Key() domain.ScopeKey {
	return c.key
}

// PageSize returns the number of items requested per fetch
func (c *Cursor[T]) PageSize() int {
	return c.pageSize
}

// Close marks the cursor as discarded. Completions arriving afterwards are dropped.
func (c *Cursor[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether the cursor was discarded
func (c *Cursor[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Request is a reserved page fetch. Run performs it without holding the
// cursor, Complete applies the outcome.
type Request[T any] struct {
	cursor *Cursor[T]
	Offset int
	Limit  int
}

// Result is the outcome of a Request
type Result[T any] struct {
	Offset int
	Page   domain.Page[T]
	Err    error
	Took   time.Duration
}

// Begin reserves the next page. It returns false when a fetch is already
// outstanding, the cursor is closed, or every item is loaded.
func (c *Cursor[T]) Begin() (*Request[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending || c.closed || c.exhaustedLocked() {
		return nil, false
	}
	c.pending = true
	return &Request[T]{cursor: c, Offset: len(c.items), Limit: c.pageSize}, true
}

// Run calls the fetch function for the reserved page
func (r *Request[T]) Run(ctx context.Context) Result[T] {
	start := time.Now()
	page, err := r.cursor.fetch(ctx, r.Offset, r.Limit)
	return Result[T]{Offset: r.Offset, Page: page, Err: err, Took: time.Since(start)}
}

// Complete applies a fetch outcome. It returns false if the cursor was closed
// in the meantime, in which case nothing changes.
func (c *Cursor[T]) Complete(res Result[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.pending = false

	if res.Err != nil {
		c.lastErr = res.Err
		return true
	}
	c.lastErr = nil
	c.items = append(c.items, res.Page.Items...)
	c.total = res.Page.Total
	// an empty page ends the scope even if the backend claims more
	if len(res.Page.Items) == 0 || c.total < len(c.items) {
		c.total = len(c.items)
	}
	return true
}

// Load fetches the next page synchronously. loaded is false when the call was a no-op.
func (c *Cursor[T]) Load(ctx context.Context) (loaded bool, err error) {
	req, ok := c.Begin()
	if !ok {
		return false, nil
	}
	res := req.Run(ctx)
	if !c.Complete(res) {
		return false, nil
	}
	return res.Err == nil, res.Err
}

// View returns an immutable copy of the cursor state
func (c *Cursor[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View[T]{
		Key:        c.key,
		Items:      append([]T(nil), c.items...),
		Total:      c.total,
		TotalKnown: c.total != unknownTotal,
		Pending:    c.pending,
		Exhausted:  c.exhaustedLocked(),
		PageSize:   c.pageSize,
	}
	if c.lastErr != nil {
		v.Failure = source.Message(c.lastErr)
	}
	return v
}

func (c *Cursor[T]) exhaustedLocked() bool {
	return c.total != unknownTotal && len(c.items) >= c.total
}
