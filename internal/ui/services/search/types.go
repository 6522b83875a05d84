package search

import (
	"sync"

	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/pagination"
	"channelsdb/internal/ui/state"
)

// Snapshot is an immutable picture of the controller handed to subscribers
type Snapshot struct {
	State state.ViewState
	Term  string // working search text

	// Groups holds the expanded facet groups of the current results
	Groups   map[string]GroupView
	FullText *pagination.View[domain.Record]
}

// GroupView is an expanded facet group
type GroupView struct {
	Values   pagination.View[domain.FacetValue]
	Selected *domain.FacetValue // value drilled into, if any
	Drill    *pagination.View[domain.Record]
}

// Expanded reports whether a facet group is expanded
func (s Snapshot) Expanded(group string) bool {
	_, ok := s.Groups[group]
	return ok
}

// Paging holds the page size of each scope kind
type Paging struct {
	GroupValues  int
	GroupEntries int
	FullText     int
}

// DefaultPaging returns the standard page sizes
func DefaultPaging() Paging {
	return Paging{
		GroupValues:  pagination.GroupValuePageSize,
		GroupEntries: pagination.DrillDownPageSize,
		FullText:     pagination.FullTextPageSize,
	}
}

// Dispatcher runs blocking work away from the controller. The function
// returned by work is the completion; the dispatcher must hand it back so it
// runs on the same timeline as the controller's intents.
type Dispatcher interface {
	Dispatch(work func() func())
}

// DispatcherFunc adapts a function to a Dispatcher
type DispatcherFunc func(work func() func())

func (f DispatcherFunc) Dispatch(work func() func()) { f(work) }

// Inline runs work and then its completion on the calling goroutine
var Inline Dispatcher = DispatcherFunc(func(work func() func()) {
	work()()
})

// Queue holds dispatched work until it is drained by the owner of the timeline
type Queue struct {
	mu    sync.Mutex
	items []func() func()
}

func (q *Queue) Dispatch(work func() func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, work)
}

// Drain removes and returns all queued work in dispatch order
func (q *Queue) Drain() []func() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued items
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
