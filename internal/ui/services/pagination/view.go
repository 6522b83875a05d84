package pagination

import (
	"strconv"

	"channelsdb/internal/domain"
)

// View is a snapshot of a cursor handed to the presentation layer
type View[T any] struct {
	Key        domain.ScopeKey
	Items      []T
	Total      int // meaningful only when TotalKnown
	TotalKnown bool
	Pending    bool
	Exhausted  bool
	Failure    string // message of the last failed load, cleared by a success
	PageSize   int
}

// Remaining returns how many items are still to load, or -1 when unknown
func (v View[T]) Remaining() int {
	if !v.TotalKnown {
		return -1
	}
	if n := v.Total - len(v.Items); n > 0 {
		return n
	}
	return 0
}

// CanLoadMore reports whether a "load more" request would issue a fetch
func (v View[T]) CanLoadMore() bool {
	return !v.Pending && !v.Exhausted
}

// TotalText renders the total, using "?" while it is unknown
func (v View[T]) TotalText() string {
	if !v.TotalKnown {
		return "?"
	}
	return strconv.Itoa(v.Total)
}
