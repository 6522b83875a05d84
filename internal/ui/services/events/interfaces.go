package events

// Publisher is the publishing side of a Feed
type Publisher[T any] interface {
	Publish(v T)
	Subscribe(fn func(T)) func()
}
