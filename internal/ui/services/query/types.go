package query

import (
	"channelsdb/internal/domain"
)

// IndexType represents what type of item is at an index
type IndexType int

const (
	IndexTypeGroup     IndexType = iota // facet group header
	IndexTypeValue                      // facet value inside an expanded group
	IndexTypeDrillBack                  // closes the drill-down above it
	IndexTypeRecord                     // record in a drill-down or in full-text mode
	IndexTypeMore                       // loads the next page of Scope
)

// IndexInfo contains information about what's at a specific index
type IndexInfo struct {
	Type  IndexType
	Group string
	Depth int // indentation level

	// IndexTypeGroup
	Count    int
	Expanded bool

	// IndexTypeValue
	Value    domain.FacetValue
	Selected bool

	// IndexTypeRecord
	Record domain.Record

	// IndexTypeRecord and IndexTypeMore
	Scope     domain.ScopeKey
	Remaining int // -1 when the total is unknown
	Pending   bool
	Failure   string
}
