// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package queue provides the FIFO that links blocking line sources to the
// non-blocking tick loop.
package queue

import "sync"

// Unbounded is a multi-producer FIFO whose Push never blocks and whose
// consumer side never waits. The zero value is ready to use.
type Unbounded[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	notify chan struct{}
}

// New returns an empty queue.
func New[T any]() *Unbounded[T] {
	return &Unbounded[T]{}
}

// Push appends v. It reports false once the queue has been closed, in which
// case v is dropped.
func (q *Unbounded[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	if q.notify != nil {
		close(q.notify)
		q.notify = nil
	}
	return true
}

// TryPop removes and returns the oldest item without waiting.
func (q *Unbounded[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Drain removes and returns every queued item in arrival order.
func (q *Unbounded[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Latest discards everything queued and returns only the newest item.
func (q *Unbounded[T]) Latest() (T, bool) {
	items := q.Drain()
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[len(items)-1], true
}

// Len reports how many items are waiting.
func (q *Unbounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready returns a channel that is closed as soon as at least one item is
// queued or the queue is closed. Consumers that are allowed to block select on it.
func (q *Unbounded[T]) Ready() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch := make(chan struct{})
	if len(q.items) > 0 || q.closed {
		close(ch)
		return ch
	}
	if q.notify == nil {
		q.notify = ch
	}
	return q.notify
}

// Close stops accepting new items. Items already queued can still be drained.
func (q *Unbounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	if q.notify != nil {
		close(q.notify)
		q.notify = nil
	}
}

// Closed reports whether Close has been called.
func (q *Unbounded[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
