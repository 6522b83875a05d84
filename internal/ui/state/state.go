package state

import (
	"channelsdb/internal/domain"
)

// Kind names a ViewState variant
type Kind string

const (
	KindInfo     Kind = "info"
	KindLoading  Kind = "loading"
	KindSearched Kind = "searched"
	KindEntries  Kind = "entries"
	KindError    Kind = "error"
)

// ViewState describes what the whole screen shows. Exactly one value is live
// at a time and values are never mutated: a transition replaces it.
type ViewState interface {
	Kind() Kind
	viewState()
}

// Info is the initial state before anything was searched
type Info struct{}

// Loading is shown while a faceted search is in flight
type Loading struct {
	Message string
}

// Searched holds the grouped results of a faceted search
type Searched struct {
	Data domain.FacetResult
}

// Entries is full-text mode for Term
type Entries struct {
	Term string
}

// Error is shown when the last state-defining operation failed
type Error struct {
	Message string
}

func (Info) Kind() Kind     { return KindInfo }
func (Loading) Kind() Kind  { return KindLoading }
func (Searched) Kind() Kind { return KindSearched }
func (Entries) Kind() Kind  { return KindEntries }
func (Error) Kind() Kind    { return KindError }

func (Info) viewState()     {}
func (Loading) viewState()  {}
func (Searched) viewState() {}
func (Entries) viewState()  {}
func (Error) viewState()    {}

// AppState contains the screen state owned by the UI model, as opposed to
// the ViewState owned by the search controller
type AppState struct {
	Width  int
	Height int

	Editing bool // search box has focus

	// UI state
	StatusMessage string
	PagerActive   bool // the ov pager owns the terminal
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{}
}
