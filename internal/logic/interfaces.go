package logic

import "channelsdb/internal/domain"

// Pager is anything that pages through one scope and can be discarded
type Pager interface {
	Key() domain.ScopeKey
	Close()
}

// ScopeRegistry holds the live cursors of a screen, at most one per scope key
type ScopeRegistry interface {
	Get(key domain.ScopeKey) Pager
	Put(p Pager)
	Delete(key domain.ScopeKey)
	DeleteWhere(match func(domain.ScopeKey) bool) int
	Clear()
	Holds(p Pager) bool
	Keys() []domain.ScopeKey
}
