package source

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"channelsdb/internal/domain"
)

// Cached wraps a ResultSource with a TTL cache. Concurrent identical requests
// share one backend call. Failures are never cached.
type Cached struct {
	next   ResultSource
	cache  *cache.Cache
	group  singleflight.Group
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached creates a caching decorator around next
func NewCached(next ResultSource, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.Named("source-cache"),
	}
}

func (c *Cached) SearchFaceted(ctx context.Context, term string) (domain.FacetResult, error) {
	return getOrCompute(c, key("facet", term), func() (domain.FacetResult, error) {
		return c.next.SearchFaceted(ctx, term)
	})
}

func (c *Cached) FetchGroupPage(ctx context.Context, term, group string, offset, limit int) (domain.Page[domain.FacetValue], error) {
	k := key("group", term, group, fmt.Sprint(offset), fmt.Sprint(limit))
	return getOrCompute(c, k, func() (domain.Page[domain.FacetValue], error) {
		return c.next.FetchGroupPage(ctx, term, group, offset, limit)
	})
}

func (c *Cached) FetchGroupValuePage(ctx context.Context, value domain.FacetValue, offset, limit int) (domain.Page[domain.Record], error) {
	k := key("value", value.Field, value.Value, fmt.Sprint(offset), fmt.Sprint(limit))
	return getOrCompute(c, k, func() (domain.Page[domain.Record], error) {
		return c.next.FetchGroupValuePage(ctx, value, offset, limit)
	})
}

func (c *Cached) SearchFullText(ctx context.Context, term string, offset, limit int) (domain.Page[domain.Record], error) {
	k := key("text", term, fmt.Sprint(offset), fmt.Sprint(limit))
	return getOrCompute(c, k, func() (domain.Page[domain.Record], error) {
		return c.next.SearchFullText(ctx, term, offset, limit)
	})
}

// Stats returns cache hit and miss counts
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Flush drops every cached entry
func (c *Cached) Flush() {
	c.cache.Flush()
}

func getOrCompute[T any](c *Cached, k string, compute func() (T, error)) (T, error) {
	if v, ok := c.cache.Get(k); ok {
		c.hits.Add(1)
		c.logger.Debug("cache hit", zap.String("key", k))
		return v.(T), nil
	}

	val, err, _ := c.group.Do(k, func() (interface{}, error) {
		if v, ok := c.cache.Get(k); ok {
			return v, nil
		}
		c.misses.Add(1)
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.cache.Set(k, result, cache.DefaultExpiration)
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return val.(T), nil
}

func key(parts ...string) string {
	return strings.Join(parts, "\x1f")
}
