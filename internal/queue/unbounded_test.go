// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnbounded_FIFO(t *testing.T) {
	q := New[string]()

	_, ok := q.TryPop()
	assert.False(t, ok, "empty queue must not yield")

	q.Push("a")
	q.Push("b")
	q.Push("c")
	assert.Equal(t, 3, q.Len())

	v, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	assert.Equal(t, []string{"b", "c"}, q.Drain())
	assert.Nil(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestUnbounded_Latest(t *testing.T) {
	var q Unbounded[int]

	_, ok := q.Latest()
	assert.False(t, ok)

	q.Push(1)
	q.Push(2)
	q.Push(3)
	v, ok := q.Latest()
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 0, q.Len())
}

func TestUnbounded_Close(t *testing.T) {
	q := New[int]()
	require.True(t, q.Push(1))
	q.Close()
	q.Close()

	assert.True(t, q.Closed())
	assert.False(t, q.Push(2), "push after close is rejected")
	assert.Equal(t, []int{1}, q.Drain(), "queued items survive close")

	select {
	case <-q.Ready():
	default:
		t.Fatal("Ready must be closed once the queue is closed")
	}
}

func TestUnbounded_ReadyWakesConsumer(t *testing.T) {
	q := New[int]()

	ready := q.Ready()
	select {
	case <-ready:
		t.Fatal("Ready fired on an empty queue")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(42)
	}()

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("Ready did not fire after Push")
	}
	v, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestUnbounded_ConcurrentProducers(t *testing.T) {
	q := New[int]()
	const producers, perProducer = 8, 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base*perProducer + i)
			}
		}(p)
	}
	wg.Wait()

	items := q.Drain()
	assert.Len(t, items, producers*perProducer)

	// Each producer's own items keep their relative order.
	last := make(map[int]int)
	for _, v := range items {
		p := v / perProducer
		if prev, ok := last[p]; ok {
			assert.Greater(t, v, prev)
		}
		last[p] = v
	}
}
