// Package notify provides the synchronous, typed notification channel that
// sub-entities use to signal their owners.
package notify

// Channel delivers events to its subscribers synchronously, in subscription
// order. The zero value is ready to use. Channels are not safe for concurrent
// use; owners drive them from a single flow of control.
type Channel[T any] struct {
	subs   []*subscription[T]
	nextID uint64
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again.
func (c *Channel[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.nextID++
	sub := &subscription[T]{id: c.nextID, fn: fn}
	c.subs = append(c.subs, sub)
	return func() { c.remove(sub.id) }
}

// Emit calls every subscriber with event before returning. Subscribers added
// or removed while an emit is in progress take effect on the next emit.
func (c *Channel[T]) Emit(event T) {
	if len(c.subs) == 0 {
		return
	}
	snapshot := make([]*subscription[T], len(c.subs))
	copy(snapshot, c.subs)
	for _, sub := range snapshot {
		sub.fn(event)
	}
}

// Len returns the number of active subscribers.
func (c *Channel[T]) Len() int {
	return len(c.subs)
}

func (c *Channel[T]) remove(id uint64) {
	for i, sub := range c.subs {
		if sub.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}
