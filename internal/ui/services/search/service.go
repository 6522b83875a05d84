// Package search owns the view state of the search screen and the cursors of
// every open scope.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"channelsdb/internal/domain"
	"channelsdb/internal/eventbus"
	"channelsdb/internal/logic"
	"channelsdb/internal/source"
	"channelsdb/internal/ui/services/events"
	"channelsdb/internal/ui/services/pagination"
	"channelsdb/internal/ui/state"
)

// Options configures a Service
type Options struct {
	Source     source.ResultSource
	Dispatcher Dispatcher        // defaults to Inline
	Bus        eventbus.EventBus // optional
	Logger     *zap.Logger
	Paging     Paging
	Context    context.Context // passed to every fetch, defaults to Background
}

// Service is the search controller. Intents and completions are serialized;
// subscribers are notified synchronously after each committed change.
type Service struct {
	source   source.ResultSource
	dispatch Dispatcher
	bus      eventbus.EventBus
	logger   *zap.Logger
	paging   Paging
	ctx      context.Context
	feed     events.Publisher[Snapshot]
	cursors  logic.ScopeRegistry

	mu       sync.Mutex
	term     string
	view     state.ViewState
	previous *state.Searched // restored by GoBack
	seq      uint64          // sequence token of the latest state-defining fetch
	selected map[string]domain.FacetValue
}

// NewService creates a controller in the Info state
func NewService(opts Options) *Service {
	s := &Service{
		source:   opts.Source,
		dispatch: opts.Dispatcher,
		bus:      opts.Bus,
		logger:   opts.Logger,
		paging:   opts.Paging,
		ctx:      opts.Context,
		feed:     events.NewFeed[Snapshot](),
		cursors:  logic.NewMemoryScopeRegistry(),
		view:     state.Info{},
		selected: make(map[string]domain.FacetValue),
	}
	if s.dispatch == nil {
		s.dispatch = Inline
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("search")
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	defaults := DefaultPaging()
	if s.paging.GroupValues <= 0 {
		s.paging.GroupValues = defaults.GroupValues
	}
	if s.paging.GroupEntries <= 0 {
		s.paging.GroupEntries = defaults.GroupEntries
	}
	if s.paging.FullText <= 0 {
		s.paging.FullText = defaults.FullText
	}
	return s
}

// Subscribe registers fn for every committed change and returns an unsubscribe function
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	return s.feed.Subscribe(fn)
}

// Snapshot returns the current state
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Term returns the working search text
func (s *Service) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// SetTerm updates the working search text without fetching
func (s *Service) SetTerm(text string) {
	s.mu.Lock()
	if text == s.term {
		s.mu.Unlock()
		return
	}
	s.term = text
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.feed.Publish(snap)
}

// SubmitSearch runs a faceted search for the working term. Only the result
// of the latest submission is ever committed. A blank term is ignored.
func (s *Service) SubmitSearch() {
	s.mu.Lock()
	term := strings.TrimSpace(s.term)
	if term == "" {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	s.cursors.Clear()
	s.selected = make(map[string]domain.FacetValue)
	s.previous = nil
	s.view = state.Loading{Message: fmt.Sprintf("Searching for %q...", term)}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("search submitted", zap.String("term", term), zap.Uint64("seq", seq))
	s.publish(domain.SearchSubmittedEvent{Term: term, Seq: seq})
	s.publish(domain.ViewChangedEvent{Kind: string(state.KindLoading)})
	s.feed.Publish(snap)

	s.dispatch.Dispatch(func() func() {
		start := time.Now()
		result, err := s.source.SearchFaceted(s.ctx, term)
		took := time.Since(start)
		return func() {
			s.commitSearch(term, seq, result, err, took)
		}
	})
}

func (s *Service) commitSearch(term string, seq uint64, result domain.FacetResult, err error, took time.Duration) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded search", zap.String("term", term), zap.Uint64("seq", seq))
		s.publish(domain.SearchSupersededEvent{Term: term, Seq: seq})
		return
	}
	if err != nil {
		s.view = state.Error{Message: source.Message(err)}
	} else {
		s.view = state.Searched{Data: result}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("search failed", zap.String("term", term), zap.Error(err))
		s.publish(domain.SearchFailedEvent{Term: term, Seq: seq, Err: err})
	} else {
		s.logger.Info("search completed",
			zap.String("term", term),
			zap.Int("groups", len(result.Groups)),
			zap.Duration("took", took))
		s.publish(domain.SearchCompletedEvent{Term: term, Seq: seq, Groups: len(result.Groups), Empty: result.Empty(), Took: took})
	}
	s.publish(domain.ViewChangedEvent{Kind: string(snap.State.Kind())})
	s.feed.Publish(snap)
}

// OpenFullText switches to full-text mode for term and requests its first
// page. Any outstanding faceted search is superseded. Opened from Searched,
// the results are kept for GoBack.
func (s *Service) OpenFullText(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	s.mu.Lock()
	s.seq++
	switch v := s.view.(type) {
	case state.Searched:
		s.previous = &v
	case state.Entries:
		// keep the results the first full-text session was opened from
	default:
		s.previous = nil
	}
	s.term = term
	s.cursors.DeleteWhere(isFullText)

	key := domain.FullTextScope(term)
	cur := pagination.New(key, s.paging.FullText, func(ctx context.Context, offset, limit int) (domain.Page[domain.Record], error) {
		return s.source.SearchFullText(ctx, term, offset, limit)
	})
	s.cursors.Put(cur)
	req, _ := cur.Begin()
	s.view = state.Entries{Term: term}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("full-text opened", zap.String("term", term))
	s.publish(domain.FullTextOpenedEvent{Term: term})
	s.publish(domain.ViewChangedEvent{Kind: string(state.KindEntries)})
	s.feed.Publish(snap)

	load(s, cur, req, true)
}

// GoBack leaves full-text mode and restores the results it was opened from,
// without fetching them again. It returns false when there is nothing to go
// back to.
func (s *Service) GoBack() bool {
	s.mu.Lock()
	if _, ok := s.view.(state.Entries); !ok || s.previous == nil {
		s.mu.Unlock()
		return false
	}
	s.view = *s.previous
	s.term = s.previous.Data.Term
	s.previous = nil
	s.cursors.DeleteWhere(isFullText)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(domain.ViewChangedEvent{Kind: string(state.KindSearched)})
	s.feed.Publish(snap)
	return true
}

// RequestMore loads the next page of the scope identified by key. It returns
// false when no fetch was issued: unknown scope, a fetch already in flight, or
// everything loaded.
func (s *Service) RequestMore(key domain.ScopeKey) bool {
	s.mu.Lock()
	var issue func()
	switch cur := s.cursors.Get(key).(type) {
	case *pagination.Cursor[domain.FacetValue]:
		if req, ok := cur.Begin(); ok {
			issue = func() { load(s, cur, req, false) }
		}
	case *pagination.Cursor[domain.Record]:
		if req, ok := cur.Begin(); ok {
			issue = func() { load(s, cur, req, false) }
		}
	}
	if issue == nil {
		s.mu.Unlock()
		return false
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.feed.Publish(snap)
	issue()
	return true
}

// load runs a reserved page fetch through the dispatcher. A failed first page
// of a primary scope turns the screen into Error; any other failure stays on
// the cursor.
func load[T any](s *Service, cur *pagination.Cursor[T], req *pagination.Request[T], primary bool) {
	if req == nil {
		return
	}
	s.dispatch.Dispatch(func() func() {
		res := req.Run(s.ctx)
		return func() {
			complete(s, cur, res, primary)
		}
	})
}

func complete[T any](s *Service, cur *pagination.Cursor[T], res pagination.Result[T], primary bool) {
	key := cur.Key()

	s.mu.Lock()
	if !cur.Complete(res) {
		s.mu.Unlock()
		s.logger.Debug("dropping page for discarded scope", zap.Stringer("scope", key), zap.Int("offset", res.Offset))
		return
	}
	failedView := false
	if res.Err != nil && primary && res.Offset == 0 {
		s.view = state.Error{Message: source.Message(res.Err)}
		s.previous = nil
		s.cursors.Delete(key)
		failedView = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if res.Err != nil {
		s.logger.Warn("page failed", zap.Stringer("scope", key), zap.Int("offset", res.Offset), zap.Error(res.Err))
		s.publish(domain.PageFailedEvent{Scope: key, Offset: res.Offset, Err: res.Err, Took: res.Took})
	} else {
		s.logger.Debug("page loaded", zap.Stringer("scope", key), zap.Int("offset", res.Offset), zap.Int("count", len(res.Page.Items)))
		s.publish(domain.PageLoadedEvent{Scope: key, Offset: res.Offset, Count: len(res.Page.Items), Total: res.Page.Total, Took: res.Took})
	}
	if failedView {
		s.publish(domain.ViewChangedEvent{Kind: string(state.KindError)})
	}
	s.feed.Publish(snap)
}

func (s *Service) publish(event domain.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.view, Term: s.term}
	for _, key := range s.cursors.Keys() {
		switch cur := s.cursors.Get(key).(type) {
		case *pagination.Cursor[domain.FacetValue]:
			if snap.Groups == nil {
				snap.Groups = make(map[string]GroupView)
			}
			gv := snap.Groups[key.Group]
			gv.Values = cur.View()
			snap.Groups[key.Group] = gv
		case *pagination.Cursor[domain.Record]:
			view := cur.View()
			if key.Kind == domain.ScopeFullText {
				snap.FullText = &view
				continue
			}
			if snap.Groups == nil {
				snap.Groups = make(map[string]GroupView)
			}
			gv := snap.Groups[key.Group]
			gv.Drill = &view
			if fv, ok := s.selected[key.Group]; ok {
				gv.Selected = &fv
			}
			snap.Groups[key.Group] = gv
		}
	}
	return snap
}

func isFullText(k domain.ScopeKey) bool {
	return k.Kind == domain.ScopeFullText
}
