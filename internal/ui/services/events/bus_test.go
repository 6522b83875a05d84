package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishIsSynchronousAndOrdered(t *testing.T) {
	f := NewFeed[int]()
	var got []string
	f.Subscribe(func(v int) { got = append(got, "a") })
	f.Subscribe(func(v int) { got = append(got, "b") })

	f.Publish(1)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribe(t *testing.T) {
	f := NewFeed[string]()
	calls := 0
	unsubscribe := f.Subscribe(func(string) { calls++ })
	f.Publish("x")
	unsubscribe()
	unsubscribe()
	f.Publish("y")

	assert.Equal(t, 1, calls)
	assert.Zero(t, f.Len())
}

func TestListenerMayUnsubscribeDuringPublish(t *testing.T) {
	f := NewFeed[int]()
	var unsubscribe func()
	calls := 0
	unsubscribe = f.Subscribe(func(int) {
		calls++
		unsubscribe()
	})
	other := 0
	f.Subscribe(func(int) { other++ })

	f.Publish(1)
	f.Publish(2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

var _ Publisher[int] = (*Feed[int])(nil)
