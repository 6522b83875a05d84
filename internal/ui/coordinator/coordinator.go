package coordinator

import (
	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/navigation"
	"channelsdb/internal/ui/services/query"
	"channelsdb/internal/ui/services/search"
	"channelsdb/internal/ui/state"
)

// Coordinator manages all UI services and their interactions
type Coordinator struct {
	// Services
	Navigation *navigation.Service
	Query      *query.Service
	Search     *search.Service

	lastKind    state.Kind
	savedCursor int // selection in Searched while full-text mode is shown
	unsubscribe func()
}

// NewCoordinator creates a new coordinator around a search controller
func NewCoordinator(svc *search.Service) *Coordinator {
	c := &Coordinator{
		Navigation: navigation.NewService(),
		Query:      query.NewService(),
		Search:     svc,
	}

	c.wireServices()
	c.subscribeToEvents()

	return c
}

// wireServices connects services with their dependencies
func (c *Coordinator) wireServices() {
	c.Navigation.SetQueryFunction(func() int {
		return c.Query.GetMaxIndex()
	})
	snap := c.Search.Snapshot()
	c.Query.SetSnapshot(snap)
	c.lastKind = snap.State.Kind()
}

// subscribeToEvents keeps rows and selection in step with the controller
func (c *Coordinator) subscribeToEvents() {
	c.unsubscribe = c.Search.Subscribe(c.apply)
}

func (c *Coordinator) apply(snap search.Snapshot) {
	c.Query.SetSnapshot(snap)

	kind := snap.State.Kind()
	if kind != c.lastKind {
		switch {
		case c.lastKind == state.KindSearched && kind == state.KindEntries:
			c.savedCursor = c.Navigation.GetCursor()
			c.Navigation.Reset()
		case c.lastKind == state.KindEntries && kind == state.KindSearched:
			c.Navigation.MoveToIndex(c.savedCursor)
		default:
			c.Navigation.Reset()
		}
		c.lastKind = kind
	}
	c.Navigation.Clamp()
}

// Close detaches the coordinator from the controller
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Snapshot returns the snapshot currently displayed
func (c *Coordinator) Snapshot() search.Snapshot {
	return c.Query.Snapshot()
}

// GetCurrentIndex returns the current navigation index
func (c *Coordinator) GetCurrentIndex() int {
	return c.Navigation.GetCursor()
}

// CurrentRow returns the row under the cursor, nil when there are no rows
func (c *Coordinator) CurrentRow() *query.IndexInfo {
	return c.Query.GetIndexInfo(c.Navigation.GetCursor())
}

// CurrentRecord returns the record under the cursor, if any
func (c *Coordinator) CurrentRecord() (domain.Record, bool) {
	row := c.CurrentRow()
	if row == nil || row.Type != query.IndexTypeRecord {
		return domain.Record{}, false
	}
	return row.Record, true
}

// Activate performs the primary action of the row under the cursor. Record
// rows have no action here; the caller opens them.
func (c *Coordinator) Activate() bool {
	row := c.CurrentRow()
	if row == nil {
		return false
	}
	switch row.Type {
	case query.IndexTypeGroup:
		return c.Search.ToggleGroup(row.Group)
	case query.IndexTypeValue:
		if row.Selected {
			return c.Search.CloseGroupValue(row.Group)
		}
		return c.Search.SelectGroupValue(row.Group, row.Value.Value)
	case query.IndexTypeDrillBack:
		return c.closeDrill(row.Group)
	case query.IndexTypeMore:
		return c.Search.RequestMore(row.Scope)
	default:
		return false
	}
}

// LoadMore requests the next page of the scope the cursor is in
func (c *Coordinator) LoadMore() bool {
	row := c.CurrentRow()
	if row == nil {
		return false
	}
	switch row.Type {
	case query.IndexTypeRecord, query.IndexTypeMore:
		return c.Search.RequestMore(row.Scope)
	case query.IndexTypeValue:
		return c.Search.RequestMore(domain.GroupScope(row.Group))
	case query.IndexTypeGroup:
		if row.Expanded {
			return c.Search.RequestMore(domain.GroupScope(row.Group))
		}
	}
	return false
}

// Back leaves full-text mode, or closes the drill-down or group the cursor is in
func (c *Coordinator) Back() bool {
	if c.Search.GoBack() {
		return true
	}
	row := c.CurrentRow()
	if row == nil || row.Group == "" {
		return false
	}
	if gv, ok := c.Snapshot().Groups[row.Group]; ok && gv.Drill != nil && row.Depth >= 2 {
		return c.closeDrill(row.Group)
	}
	if row.Type != query.IndexTypeGroup && c.Snapshot().Expanded(row.Group) {
		if c.Search.ToggleGroup(row.Group) {
			c.Navigation.MoveToIndex(c.Query.GetIndexForGroup(row.Group))
			return true
		}
	}
	return false
}

// closeDrill closes a drill-down and puts the cursor back on its value
func (c *Coordinator) closeDrill(group string) bool {
	gv, ok := c.Snapshot().Groups[group]
	if !ok || gv.Selected == nil {
		return false
	}
	value := gv.Selected.Value
	if !c.Search.CloseGroupValue(group) {
		return false
	}
	for i, r := range c.Query.Rows() {
		if r.Type == query.IndexTypeValue && r.Group == group && r.Value.Value == value {
			c.Navigation.MoveToIndex(i)
			break
		}
	}
	return true
}

// SetViewportHeight updates viewport height across services
func (c *Coordinator) SetViewportHeight(height int) {
	c.Navigation.SetViewportHeight(height)
}
