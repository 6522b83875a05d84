package search

import (
	"context"

	"go.uber.org/zap"

	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/pagination"
	"channelsdb/internal/ui/state"
)

// ToggleGroup expands or collapses a facet group of the current results.
// Expanding seeds the group's value cursor with the first page already
// returned by the search; collapsing discards it and any drill-down below it.
func (s *Service) ToggleGroup(group string) bool {
	s.mu.Lock()
	searched, ok := s.view.(state.Searched)
	if !ok {
		s.mu.Unlock()
		return false
	}
	summary, ok := searched.Data.Group(group)
	if !ok {
		s.mu.Unlock()
		return false
	}

	key := domain.GroupScope(group)
	expanded := s.cursors.Get(key) != nil
	if expanded {
		s.cursors.DeleteWhere(func(k domain.ScopeKey) bool {
			return k.Kind != domain.ScopeFullText && k.Group == group
		})
		delete(s.selected, group)
	} else {
		term := searched.Data.Term
		cur := pagination.NewSeeded(key, s.paging.GroupValues,
			func(ctx context.Context, offset, limit int) (domain.Page[domain.FacetValue], error) {
				return s.source.FetchGroupPage(ctx, term, group, offset, limit)
			},
			summary.FirstPage, summary.TotalCount)
		s.cursors.Put(cur)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("group toggled", zap.String("group", group), zap.Bool("expanded", !expanded))
	s.feed.Publish(snap)
	return true
}

// SelectGroupValue opens the records of one value of an expanded group and
// requests their first page. An open drill-down on another value of the
// same group is discarded.
func (s *Service) SelectGroupValue(group, value string) bool {
	s.mu.Lock()
	if _, ok := s.view.(state.Searched); !ok {
		s.mu.Unlock()
		return false
	}
	groupCur, ok := s.cursors.Get(domain.GroupScope(group)).(*pagination.Cursor[domain.FacetValue])
	if !ok {
		s.mu.Unlock()
		return false
	}
	fv, found := findValue(groupCur.View().Items, value)
	if !found {
		s.mu.Unlock()
		return false
	}
	key := domain.GroupValueScope(group, value)
	if s.cursors.Get(key) != nil {
		s.mu.Unlock()
		return false
	}

	s.cursors.DeleteWhere(func(k domain.ScopeKey) bool {
		return k.Kind == domain.ScopeGroupValue && k.Group == group
	})
	cur := pagination.New(key, s.paging.GroupEntries, func(ctx context.Context, offset, limit int) (domain.Page[domain.Record], error) {
		return s.source.FetchGroupValuePage(ctx, fv, offset, limit)
	})
	s.cursors.Put(cur)
	s.selected[group] = fv
	req, _ := cur.Begin()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("group value selected", zap.String("group", group), zap.String("value", value))
	s.feed.Publish(snap)
	load(s, cur, req, false)
	return true
}

// CloseGroupValue discards the drill-down open under group
func (s *Service) CloseGroupValue(group string) bool {
	s.mu.Lock()
	n := s.cursors.DeleteWhere(func(k domain.ScopeKey) bool {
		return k.Kind == domain.ScopeGroupValue && k.Group == group
	})
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	delete(s.selected, group)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.feed.Publish(snap)
	return true
}

func findValue(values []domain.FacetValue, value string) (domain.FacetValue, bool) {
	for _, v := range values {
		if v.Value == value {
			return v, true
		}
	}
	return domain.FacetValue{}, false
}
