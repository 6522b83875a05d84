package logic

import (
	"sort"
	"sync"

	"channelsdb/internal/domain"
)

// MemoryScopeRegistry is an in-memory implementation of ScopeRegistry.
// Replaced or removed pagers are closed.
type MemoryScopeRegistry struct {
	mu     sync.RWMutex
	pagers map[domain.ScopeKey]Pager
}

// NewMemoryScopeRegistry creates a new memory-based scope registry
func NewMemoryScopeRegistry() *MemoryScopeRegistry {
	return &MemoryScopeRegistry{
		pagers: make(map[domain.ScopeKey]Pager),
	}
}

func (r *MemoryScopeRegistry) Get(key domain.ScopeKey) Pager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pagers[key]
}

// Put stores p, closing any other pager registered under the same key
func (r *MemoryScopeRegistry) Put(p Pager) {
	r.mu.Lock()
	old := r.pagers[p.Key()]
	r.pagers[p.Key()] = p
	r.mu.Unlock()

	if old != nil && old != p {
		old.Close()
	}
}

func (r *MemoryScopeRegistry) Delete(key domain.ScopeKey) {
	r.mu.Lock()
	old := r.pagers[key]
	delete(r.pagers, key)
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// DeleteWhere removes every pager whose key matches and returns how many went
func (r *MemoryScopeRegistry) DeleteWhere(match func(domain.ScopeKey) bool) int {
	r.mu.Lock()
	var removed []Pager
	for k, p := range r.pagers {
		if match(k) {
			removed = append(removed, p)
			delete(r.pagers, k)
		}
	}
	r.mu.Unlock()

	for _, p := range removed {
		p.Close()
	}
	return len(removed)
}

func (r *MemoryScopeRegistry) Clear() {
	r.DeleteWhere(func(domain.ScopeKey) bool { return true })
}

// Holds reports whether p is the pager currently registered under its key
func (r *MemoryScopeRegistry) Holds(p Pager) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pagers[p.Key()] == p
}

// Keys returns the registered keys in a stable order
func (r *MemoryScopeRegistry) Keys() []domain.ScopeKey {
	r.mu.RLock()
	keys := make([]domain.ScopeKey, 0, len(r.pagers))
	for k := range r.pagers {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
