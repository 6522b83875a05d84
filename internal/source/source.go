// Package source defines the contract of the search backend and its
// implementations: an HTTP client for a Solr-style API and a caching decorator.
package source

import (
	"context"

	"channelsdb/internal/domain"
)

// ResultSource answers faceted, paged and full-text queries. Calls block until
// the backend answers or ctx is done.
type ResultSource interface {
	// SearchFaceted returns the facet groups matching term. Zero groups is a
	// valid result, not an error.
	SearchFaceted(ctx context.Context, term string) (domain.FacetResult, error)

	// FetchGroupPage returns further values of one facet group.
	FetchGroupPage(ctx context.Context, term, group string, offset, limit int) (domain.Page[domain.FacetValue], error)

	// FetchGroupValuePage returns the records carrying one facet value.
	FetchGroupValuePage(ctx context.Context, value domain.FacetValue, offset, limit int) (domain.Page[domain.Record], error)

	// SearchFullText returns records matching a free-text term. Page.Total is
	// the running match count.
	SearchFullText(ctx context.Context, term string, offset, limit int) (domain.Page[domain.Record], error)
}
