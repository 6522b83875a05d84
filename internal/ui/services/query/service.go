package query

import (
	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/pagination"
	"channelsdb/internal/ui/services/search"
	"channelsdb/internal/ui/state"
)

// Service answers positional questions about the rows of the current snapshot
type Service struct {
	snapshot search.Snapshot
	rows     []IndexInfo
}

// NewService creates a new query service
func NewService() *Service {
	return &Service{}
}

// SetSnapshot replaces the snapshot rows are derived from
func (s *Service) SetSnapshot(snap search.Snapshot) {
	s.snapshot = snap
	s.rows = Rows(snap)
}

// Snapshot returns the snapshot rows were derived from
func (s *Service) Snapshot() search.Snapshot {
	return s.snapshot
}

// Rows returns the selectable rows in display order
func (s *Service) Rows() []IndexInfo {
	return s.rows
}

// GetMaxIndex returns the maximum selectable index
func (s *Service) GetMaxIndex() int {
	if len(s.rows) > 0 {
		return len(s.rows) - 1
	}
	return 0
}

// GetIndexInfo returns information about what's at a specific index
func (s *Service) GetIndexInfo(index int) *IndexInfo {
	if index < 0 || index >= len(s.rows) {
		return nil
	}
	info := s.rows[index]
	return &info
}

// GetIndexForGroup finds the header row of a group, or -1
func (s *Service) GetIndexForGroup(group string) int {
	for i, r := range s.rows {
		if r.Type == IndexTypeGroup && r.Group == group {
			return i
		}
	}
	return -1
}

// GetIndexForScope finds the "more" row of a scope, or -1
func (s *Service) GetIndexForScope(key domain.ScopeKey) int {
	for i, r := range s.rows {
		if r.Type == IndexTypeMore && r.Scope == key {
			return i
		}
	}
	return -1
}

// Rows flattens a snapshot into rows. Only Searched and Entries have rows.
func Rows(snap search.Snapshot) []IndexInfo {
	switch v := snap.State.(type) {
	case state.Searched:
		return groupRows(v.Data, snap.Groups)
	case state.Entries:
		if snap.FullText == nil {
			return nil
		}
		return recordRows("", 0, *snap.FullText)
	default:
		return nil
	}
}

func groupRows(data domain.FacetResult, groups map[string]search.GroupView) []IndexInfo {
	var rows []IndexInfo
	for _, g := range data.Groups {
		gv, expanded := groups[g.GroupValue]
		rows = append(rows, IndexInfo{
			Type:     IndexTypeGroup,
			Group:    g.GroupValue,
			Count:    g.TotalCount,
			Expanded: expanded,
		})
		if !expanded {
			continue
		}

		for _, v := range gv.Values.Items {
			selected := gv.Selected != nil && gv.Selected.Value == v.Value
			rows = append(rows, IndexInfo{
				Type:     IndexTypeValue,
				Group:    g.GroupValue,
				Depth:    1,
				Value:    v,
				Selected: selected,
			})
			if selected && gv.Drill != nil {
				rows = append(rows, IndexInfo{Type: IndexTypeDrillBack, Group: g.GroupValue, Depth: 2})
				rows = append(rows, recordRows(g.GroupValue, 2, *gv.Drill)...)
			}
		}
		if more := moreRow(g.GroupValue, 1, gv.Values); showMore(more) {
			rows = append(rows, more)
		}
	}
	return rows
}

func recordRows(group string, depth int, view pagination.View[domain.Record]) []IndexInfo {
	rows := make([]IndexInfo, 0, len(view.Items)+1)
	for _, r := range view.Items {
		rows = append(rows, IndexInfo{
			Type:   IndexTypeRecord,
			Group:  group,
			Depth:  depth,
			Record: r,
			Scope:  view.Key,
		})
	}
	if more := moreRow(group, depth, view); showMore(more) {
		rows = append(rows, more)
	}
	return rows
}

func moreRow[T any](group string, depth int, view pagination.View[T]) IndexInfo {
	return IndexInfo{
		Type:      IndexTypeMore,
		Group:     group,
		Depth:     depth,
		Scope:     view.Key,
		Remaining: view.Remaining(),
		Pending:   view.Pending,
		Failure:   view.Failure,
	}
}

// showMore hides the "more" row once a scope is fully loaded
func showMore(r IndexInfo) bool {
	return r.Remaining != 0 || r.Pending || r.Failure != ""
}
