// Package sourcetest provides an in-memory ResultSource for tests.
package sourcetest

import (
	"context"
	"fmt"
	"sync"

	"channelsdb/internal/domain"
)

// Fake serves generated data. Facet values and records are numbered so pages
// can be checked for order.
type Fake struct {
	mu sync.Mutex

	Facets      map[string]domain.FacetResult // by term
	TextTotals  map[string]int                // full-text matches by term
	ValueTotals map[string]int                // records by facet value
	Errors      map[string]error              // by term, for faceted and full-text searches

	failNext error
	calls    []string
}

// New creates an empty Fake
func New() *Fake {
	return &Fake{
		Facets:      map[string]domain.FacetResult{},
		TextTotals:  map[string]int{},
		ValueTotals: map[string]int{},
		Errors:      map[string]error{},
	}
}

// Standard returns a Fake with the data used across UI tests: "p450" has a
// 12-value and a 5-value group, "gating" has 30 full-text matches.
func Standard() *Fake {
	f := New()
	f.AddGroups("p450", map[string]int{"Protein name": 12, "Pfam": 5}, "Protein name", "Pfam")
	f.TextTotals["gating"] = 30
	f.ValueTotals["Protein name 0"] = 8
	return f
}

// AddGroups registers a faceted result with groups in the given order
func (f *Fake) AddGroups(term string, totals map[string]int, order ...string) {
	res := domain.FacetResult{Term: term}
	for _, g := range order {
		total := totals[g]
		first := total
		if first > 6 {
			first = 6
		}
		res.Groups = append(res.Groups, domain.GroupSummary{
			GroupValue: g,
			TotalCount: total,
			FirstPage:  Values(g, 0, first),
		})
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Facets[term] = res
}

// FailNext makes the next call of any kind fail with err
func (f *Fake) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

// Calls returns every call made so far
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Values generates facet values "<group> <i>" for i in [from, to)
func Values(group string, from, to int) []domain.FacetValue {
	out := make([]domain.FacetValue, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, domain.FacetValue{Value: fmt.Sprintf("%s %d", group, i), Field: "molecule_name", Count: i + 1})
	}
	return out
}

// Records generates records "<prefix>-<i>" for i in [from, to)
func Records(prefix string, from, to int) []domain.Record {
	out := make([]domain.Record, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, domain.Record{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Title:   fmt.Sprintf("Structure %d of %s", i, prefix),
			Methods: []string{"X-ray diffraction"},
		})
	}
	return out
}

func (f *Fake) begin(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *Fake) SearchFaceted(ctx context.Context, term string) (domain.FacetResult, error) {
	if err := f.begin("facet:" + term); err != nil {
		return domain.FacetResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errors[term]; ok {
		return domain.FacetResult{}, err
	}
	res, ok := f.Facets[term]
	if !ok {
		return domain.FacetResult{Term: term}, nil
	}
	return res, nil
}

func (f *Fake) FetchGroupPage(ctx context.Context, term, group string, offset, limit int) (domain.Page[domain.FacetValue], error) {
	if err := f.begin(fmt.Sprintf("group:%s@%d", group, offset)); err != nil {
		return domain.Page[domain.FacetValue]{}, err
	}
	f.mu.Lock()
	summary, _ := f.Facets[term].Group(group)
	f.mu.Unlock()
	return domain.Page[domain.FacetValue]{Items: Values(group, offset, clip(offset, limit, summary.TotalCount)), Total: summary.TotalCount}, nil
}

func (f *Fake) FetchGroupValuePage(ctx context.Context, value domain.FacetValue, offset, limit int) (domain.Page[domain.Record], error) {
	if err := f.begin(fmt.Sprintf("value:%s@%d", value.Value, offset)); err != nil {
		return domain.Page[domain.Record]{}, err
	}
	f.mu.Lock()
	total := f.ValueTotals[value.Value]
	f.mu.Unlock()
	return domain.Page[domain.Record]{Items: Records(value.Value, offset, clip(offset, limit, total)), Total: total}, nil
}

func (f *Fake) SearchFullText(ctx context.Context, term string, offset, limit int) (domain.Page[domain.Record], error) {
	if err := f.begin(fmt.Sprintf("text:%s@%d", term, offset)); err != nil {
		return domain.Page[domain.Record]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errors[term]; ok {
		return domain.Page[domain.Record]{}, err
	}
	total := f.TextTotals[term]
	return domain.Page[domain.Record]{Items: Records(term, offset, clip(offset, limit, total)), Total: total}, nil
}

func clip(offset, limit, total int) int {
	end := offset + limit
	if end > total {
		end = total
	}
	if end < offset {
		end = offset
	}
	return end
}
