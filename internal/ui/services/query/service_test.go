package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/pagination"
	"channelsdb/internal/ui/services/search"
	"channelsdb/internal/ui/state"
)

func values(names ...string) []domain.FacetValue {
	out := make([]domain.FacetValue, 0, len(names))
	for _, n := range names {
		out = append(out, domain.FacetValue{Value: n, Field: "molecule_name", Count: 2})
	}
	return out
}

func searchedSnapshot() search.Snapshot {
	data := domain.FacetResult{
		Term: "p450",
		Groups: []domain.GroupSummary{
			{GroupValue: "Protein name", TotalCount: 3, FirstPage: values("A", "B")},
			{GroupValue: "Pfam", TotalCount: 1, FirstPage: values("P")},
		},
	}
	return search.Snapshot{State: state.Searched{Data: data}, Term: "p450"}
}

func types(rows []IndexInfo) []IndexType {
	out := make([]IndexType, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Type)
	}
	return out
}

func TestCollapsedGroupsAreHeadersOnly(t *testing.T) {
	s := NewService()
	s.SetSnapshot(searchedSnapshot())

	assert.Equal(t, []IndexType{IndexTypeGroup, IndexTypeGroup}, types(s.Rows()))
	assert.Equal(t, 1, s.GetMaxIndex())
	assert.Equal(t, 1, s.GetIndexForGroup("Pfam"))
	assert.Equal(t, -1, s.GetIndexForGroup("missing"))
	assert.Nil(t, s.GetIndexInfo(5))
}

func TestExpandedGroupWithDrillDown(t *testing.T) {
	snap := searchedSnapshot()
	selected := values("A")[0]
	snap.Groups = map[string]search.GroupView{
		"Protein name": {
			Values: pagination.View[domain.FacetValue]{
				Key: domain.GroupScope("Protein name"), Items: values("A", "B"), Total: 3, TotalKnown: true,
			},
			Selected: &selected,
			Drill: &pagination.View[domain.Record]{
				Key:   domain.GroupValueScope("Protein name", "A"),
				Items: []domain.Record{{ID: "1TQN"}},
				Total: 2, TotalKnown: true,
			},
		},
	}

	s := NewService()
	s.SetSnapshot(snap)

	assert.Equal(t, []IndexType{
		IndexTypeGroup,
		IndexTypeValue, IndexTypeDrillBack, IndexTypeRecord, IndexTypeMore,
		IndexTypeValue,
		IndexTypeMore,
		IndexTypeGroup,
	}, types(s.Rows()))

	rows := s.Rows()
	assert.True(t, rows[0].Expanded)
	assert.True(t, rows[1].Selected)
	assert.Equal(t, 2, rows[3].Depth)
	assert.Equal(t, domain.GroupValueScope("Protein name", "A"), rows[4].Scope)
	assert.Equal(t, 1, rows[4].Remaining)
	assert.Equal(t, 1, rows[6].Remaining)
	assert.Equal(t, 6, s.GetIndexForScope(domain.GroupScope("Protein name")))
}

func TestExhaustedScopeHasNoMoreRow(t *testing.T) {
	snap := searchedSnapshot()
	snap.Groups = map[string]search.GroupView{
		"Pfam": {Values: pagination.View[domain.FacetValue]{
			Key: domain.GroupScope("Pfam"), Items: values("P"), Total: 1, TotalKnown: true, Exhausted: true,
		}},
	}

	assert.Equal(t, []IndexType{IndexTypeGroup, IndexTypeGroup, IndexTypeValue}, types(Rows(snap)))
}

func TestEntriesRows(t *testing.T) {
	ft := pagination.View[domain.Record]{Key: domain.FullTextScope("gating"), Pending: true}
	snap := search.Snapshot{State: state.Entries{Term: "gating"}, FullText: &ft}

	rows := Rows(snap)
	require.Len(t, rows, 1)
	assert.Equal(t, IndexTypeMore, rows[0].Type)
	assert.Equal(t, -1, rows[0].Remaining)

	ft = pagination.View[domain.Record]{
		Key:   domain.FullTextScope("gating"),
		Items: []domain.Record{{ID: "2R9R"}, {ID: "3LUT"}},
		Total: 2, TotalKnown: true, Exhausted: true,
	}
	rows = Rows(snap)
	assert.Equal(t, []IndexType{IndexTypeRecord, IndexTypeRecord}, types(rows))
}

func TestFailedLoadKeepsMoreRow(t *testing.T) {
	ft := pagination.View[domain.Record]{
		Key: domain.FullTextScope("gating"), Items: []domain.Record{{ID: "2R9R"}},
		Total: 1, TotalKnown: true, Exhausted: true, Failure: "boom",
	}
	rows := Rows(search.Snapshot{State: state.Entries{Term: "gating"}, FullText: &ft})
	require.Len(t, rows, 2)
	assert.Equal(t, "boom", rows[1].Failure)
}

func TestNoRowsForOtherStates(t *testing.T) {
	for _, v := range []state.ViewState{state.Info{}, state.Loading{Message: "x"}, state.Error{Message: "x"}} {
		assert.Empty(t, Rows(search.Snapshot{State: v}))
	}
}
