package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchSubmitted  EventType = "SearchSubmitted"
	EventSearchCompleted  EventType = "SearchCompleted"
	EventSearchFailed     EventType = "SearchFailed"
	EventSearchSuperseded EventType = "SearchSuperseded"
	EventFullTextOpened   EventType = "FullTextOpened"
	EventPageLoaded       EventType = "PageLoaded"
	EventPageFailed       EventType = "PageFailed"
	EventViewChanged      EventType = "ViewChanged"
	EventConfigSaved      EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchSubmittedEvent is emitted when a faceted search is issued
type SearchSubmittedEvent struct {
	Term string
	Seq  uint64
}

func (e SearchSubmittedEvent) Type() EventType { return EventSearchSubmitted }

// SearchCompletedEvent is emitted when a faceted search result is committed
type SearchCompletedEvent struct {
	Term   string
	Seq    uint64
	Groups int
	Empty  bool
	Took   time.Duration
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when a faceted search failure is committed
type SearchFailedEvent struct {
	Term string
	Seq  uint64
	Err  error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// SearchSupersededEvent is emitted when a stale search result is discarded
type SearchSupersededEvent struct {
	Term string
	Seq  uint64
}

func (e SearchSupersededEvent) Type() EventType { return EventSearchSuperseded }

// FullTextOpenedEvent is emitted when a full-text session starts
type FullTextOpenedEvent struct {
	Term string
}

func (e FullTextOpenedEvent) Type() EventType { return EventFullTextOpened }

// PageLoadedEvent is emitted when a page is appended to a cursor
type PageLoadedEvent struct {
	Scope  ScopeKey
	Offset int
	Count  int
	Total  int
	Took   time.Duration
}

func (e PageLoadedEvent) Type() EventType { return EventPageLoaded }

// PageFailedEvent is emitted when an incremental page fetch fails
type PageFailedEvent struct {
	Scope  ScopeKey
	Offset int
	Err    error
	Took   time.Duration
}

func (e PageFailedEvent) Type() EventType { return EventPageFailed }

// ViewChangedEvent is emitted after every committed view-state transition
type ViewChangedEvent struct {
	Kind string
}

func (e ViewChangedEvent) Type() EventType { return EventViewChanged }

// ConfigSavedEvent is emitted when configuration is written to disk
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
