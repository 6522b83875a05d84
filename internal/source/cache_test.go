package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelsdb/internal/domain"
)

type countingSource struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *countingSource) wait() {
	if s.release != nil {
		<-s.release
	}
}

func (s *countingSource) SearchFaceted(ctx context.Context, term string) (domain.FacetResult, error) {
	s.calls.Add(1)
	s.wait()
	if s.err != nil {
		return domain.FacetResult{}, s.err
	}
	return domain.FacetResult{Term: term, Groups: []domain.GroupSummary{{GroupValue: "Pfam", TotalCount: 1}}}, nil
}

func (s *countingSource) FetchGroupPage(ctx context.Context, term, group string, offset, limit int) (domain.Page[domain.FacetValue], error) {
	s.calls.Add(1)
	return domain.Page[domain.FacetValue]{Items: []domain.FacetValue{{Value: group}}, Total: 1}, s.err
}

func (s *countingSource) FetchGroupValuePage(ctx context.Context, value domain.FacetValue, offset, limit int) (domain.Page[domain.Record], error) {
	s.calls.Add(1)
	return domain.Page[domain.Record]{Items: []domain.Record{{ID: value.Value}}, Total: 1}, s.err
}

func (s *countingSource) SearchFullText(ctx context.Context, term string, offset, limit int) (domain.Page[domain.Record], error) {
	s.calls.Add(1)
	return domain.Page[domain.Record]{Items: []domain.Record{{ID: term}}, Total: offset + 1}, s.err
}

func TestCachedServesRepeatedCalls(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, time.Minute, nil)

	first, err := c.SearchFaceted(context.Background(), "p450")
	require.NoError(t, err)
	second, err := c.SearchFaceted(context.Background(), "p450")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachedKeysIncludeOffset(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, time.Minute, nil)

	p0, err := c.SearchFullText(context.Background(), "gating", 0, 12)
	require.NoError(t, err)
	p12, err := c.SearchFullText(context.Background(), "gating", 12, 12)
	require.NoError(t, err)

	assert.Equal(t, 1, p0.Total)
	assert.Equal(t, 13, p12.Total)
	assert.Equal(t, int32(2), next.calls.Load())

	_, err = c.FetchGroupPage(context.Background(), "gating", "Pfam", 6, 6)
	require.NoError(t, err)
	_, err = c.FetchGroupValuePage(context.Background(), domain.FacetValue{Value: "p450", Field: "pfam_name"}, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, int32(4), next.calls.Load())
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	next := &countingSource{err: Newf(ErrNetwork, 503, "unavailable")}
	c := NewCached(next, time.Minute, nil)

	_, err := c.SearchFaceted(context.Background(), "p450")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))

	next.err = nil
	res, err := c.SearchFaceted(context.Background(), "p450")
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedCoalescesConcurrentCalls(t *testing.T) {
	next := &countingSource{release: make(chan struct{})}
	c := NewCached(next, time.Minute, nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.FacetResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.SearchFaceted(context.Background(), "p450")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// let stragglers join the in-flight call before it completes
	time.Sleep(20 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, res := range results {
		assert.Equal(t, "p450", res.Term)
	}
}

func TestCachedFlush(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, time.Minute, nil)

	_, _ = c.SearchFaceted(context.Background(), "p450")
	c.Flush()
	_, _ = c.SearchFaceted(context.Background(), "p450")

	assert.Equal(t, int32(2), next.calls.Load())
}
