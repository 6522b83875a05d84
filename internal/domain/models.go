package domain

import (
	"fmt"
	"strings"
)

// NotAvailable is shown in place of any missing optional record field
const NotAvailable = "n/a"

// Record represents a single structure entry returned by the search backend
type Record struct {
	ID         string // PDB identifier, stable across pages
	Title      string
	Methods    []string // experimental methods, may be empty
	Resolution string   // in Ångström, empty when unknown
	Organisms  []string // source organisms, may be empty
}

// DisplayTitle returns the title or the n/a placeholder
func (r Record) DisplayTitle() string {
	return orNA(r.Title)
}

// MethodText joins the experimental methods
func (r Record) MethodText() string {
	return joinOrNA(r.Methods)
}

// ResolutionText returns the resolution or the n/a placeholder
func (r Record) ResolutionText() string {
	return orNA(r.Resolution)
}

// OrganismText joins the source organisms
func (r Record) OrganismText() string {
	return joinOrNA(r.Organisms)
}

// FacetValue is one value inside a facet group, e.g. a protein family name
type FacetValue struct {
	Value string
	Field string // backend field the value belongs to (var_name)
	Count int    // number of records carrying this value
}

// GroupSummary is one facet group of a faceted search
type GroupSummary struct {
	GroupValue string
	TotalCount int          // number of distinct values in the group
	FirstPage  []FacetValue // first page of values, at most one page size
}

// FacetResult is the outcome of a faceted search
type FacetResult struct {
	Term   string
	Groups []GroupSummary
}

// Empty reports whether the search matched nothing. This is a valid result, not an error.
func (r FacetResult) Empty() bool {
	return len(r.Groups) == 0
}

// Group finds a group summary by label
func (r FacetResult) Group(label string) (GroupSummary, bool) {
	for _, g := range r.Groups {
		if g.GroupValue == label {
			return g, true
		}
	}
	return GroupSummary{}, false
}

// Page is one slice of a paged result together with the best-known total
type Page[T any] struct {
	Items []T
	Total int
}

// ScopeKind distinguishes what a pagination cursor is paging through
type ScopeKind int

const (
	ScopeGroup      ScopeKind = iota // values of one facet group
	ScopeGroupValue                  // records carrying one facet value
	ScopeFullText                    // records matching a free-text term
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGroup:
		return "group"
	case ScopeGroupValue:
		return "group_value"
	case ScopeFullText:
		return "full_text"
	default:
		return "unknown"
	}
}

// ScopeKey identifies a cursor. It is comparable and used as a map key.
type ScopeKey struct {
	Kind  ScopeKind
	Group string
	Value string
	Term  string
}

// GroupScope returns the key for the value listing of a facet group
func GroupScope(group string) ScopeKey {
	return ScopeKey{Kind: ScopeGroup, Group: group}
}

// GroupValueScope returns the key for the records of one facet value
func GroupValueScope(group, value string) ScopeKey {
	return ScopeKey{Kind: ScopeGroupValue, Group: group, Value: value}
}

// FullTextScope returns the key for a full-text session
func FullTextScope(term string) ScopeKey {
	return ScopeKey{Kind: ScopeFullText, Term: term}
}

func (k ScopeKey) String() string {
	switch k.Kind {
	case ScopeGroup:
		return fmt.Sprintf("group:%s", k.Group)
	case ScopeGroupValue:
		return fmt.Sprintf("group:%s/value:%s", k.Group, k.Value)
	case ScopeFullText:
		return fmt.Sprintf("text:%s", k.Term)
	default:
		return "unknown"
	}
}

// Links builds outbound URLs for a record
type Links struct {
	DetailTemplate string // fmt template receiving the record ID
	FigureTemplate string // fmt template receiving the lower-cased record ID
}

// Detail returns the detail page URL for a record
func (l Links) Detail(r Record) string {
	if l.DetailTemplate == "" || r.ID == "" {
		return NotAvailable
	}
	return fmt.Sprintf(l.DetailTemplate, r.ID)
}

// Figure returns the thumbnail URL for a record
func (l Links) Figure(r Record) string {
	if l.FigureTemplate == "" || r.ID == "" {
		return NotAvailable
	}
	return fmt.Sprintf(l.FigureTemplate, strings.ToLower(r.ID))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func joinOrNA(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return NotAvailable
	}
	return strings.Join(kept, ", ")
}
