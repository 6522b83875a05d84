package events

import (
	"sync"
)

// Feed delivers values to its listeners synchronously, in subscription order.
// Publish returns only after every listener has run.
type Feed[T any] struct {
	mu        sync.RWMutex
	listeners []listener[T]
	nextID    uint64
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// NewFeed creates an empty feed
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{}
}

// Subscribe registers fn and returns a function that removes it
func (f *Feed[T]) Subscribe(fn func(T)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.listeners = append(f.listeners, listener[T]{id: id, fn: fn})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, l := range f.listeners {
			if l.id == id {
				f.listeners = append(f.listeners[:i:i], f.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish sends v to every listener. Listeners may subscribe or unsubscribe
// while being called; the change applies from the next Publish.
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	listeners := make([]listener[T], len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.RUnlock()

	for _, l := range listeners {
		l.fn(v)
	}
}

// Len returns the number of listeners
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.listeners)
}
