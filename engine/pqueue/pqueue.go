// Package pqueue is a binary min-heap whose pop order depends only on the
// sequence of pushes and their priorities. Equal priorities pop in the order
// they were pushed, so two peers feeding identical inputs see identical output.
package pqueue

import "container/heap"

type entry[T any] struct {
	priority float64
	seq      uint64
	value    T
}

type entries[T any] []entry[T]

func (h entries[T]) Len() int { return len(h) }
func (h entries[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h entries[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entries[T]) Push(x any)   { *h = append(*h, x.(entry[T])) }
func (h *entries[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is a stable min-priority queue
type Queue[T any] struct {
	h   entries[T]
	seq uint64
}

// New returns an empty queue
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push adds v with the given priority
func (q *Queue[T]) Push(priority float64, v T) {
	q.seq++
	heap.Push(&q.h, entry[T]{priority: priority, seq: q.seq, value: v})
}

// Pop removes and returns the lowest-priority value. It panics on an empty queue.
func (q *Queue[T]) Pop() (T, float64) {
	e := heap.Pop(&q.h).(entry[T])
	return e.value, e.priority
}

func (q *Queue[T]) Len() int    { return len(q.h) }
func (q *Queue[T]) Empty() bool { return len(q.h) == 0 }

// Reset empties the queue but keeps its backing storage
func (q *Queue[T]) Reset() {
	clear(q.h)
	q.h = q.h[:0]
	q.seq = 0
}
