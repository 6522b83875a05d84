package input

import (
	"channelsdb/internal/ui/coordinator"
	"channelsdb/internal/ui/state"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	Coordinator *coordinator.Coordinator
}

// CurrentIndex returns the current selected index
func (c *ModelContext) CurrentIndex() int {
	return c.Coordinator.GetCurrentIndex()
}

// TotalItems returns the number of selectable rows
func (c *ModelContext) TotalItems() int {
	return len(c.Coordinator.Query.Rows())
}

// OnRecord reports whether the cursor is on a record
func (c *ModelContext) OnRecord() bool {
	_, ok := c.Coordinator.CurrentRecord()
	return ok
}

// CanGoBack reports whether full-text mode can return to grouped results
func (c *ModelContext) CanGoBack() bool {
	return c.Coordinator.Snapshot().State.Kind() == state.KindEntries
}

// Term returns the working search text
func (c *ModelContext) Term() string {
	return c.Coordinator.Snapshot().Term
}
