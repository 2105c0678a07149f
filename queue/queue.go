package queue

import "sync"

// Item is anything the queue can address for out-of-order removal.
type Item interface {
	RequestID() string
}

// Queue is a FIFO of pending requests awaiting a holder decision. Enqueue
// order is arrival order across all transports; there is no priority between
// a wire-protocol request and an in-app deeplink request. The review surface
// observes only Head, and removing the head reveals the next-oldest entry
// without a separate pop step.
type Queue[T Item] struct {
	mu    sync.Mutex
	items []T
}

func New[T Item]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// Head returns the oldest pending item without removing it.
func (q *Queue[T]) Head() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// Remove takes an item out of the queue by id, from any position. Rejecting
// a non-head request is legal.
func (q *Queue[T]) Remove(id string) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	for i, item := range q.items {
		if item.RequestID() == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return item, true
		}
	}
	return zero, false
}

// Find returns the queued item with the given id, if present.
func (q *Queue[T]) Find(id string) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	for _, item := range q.items {
		if item.RequestID() == id {
			return item, true
		}
	}
	return zero, false
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot copies the current contents in arrival order.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}
