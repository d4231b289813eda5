// Package queue provides a bounded priority queue that keeps the best n
// items of a stream.
package queue

import (
	"container/heap"
	"slices"
)

// Compile time check to ensure Bounded satisfies the heap interface.
var _ heap.Interface = (*Bounded[int])(nil)

// Bounded keeps the n best items pushed into it. The root of the heap is
// the worst retained item, so a candidate is compared against it in O(1)
// and replaces it in O(log n).
type Bounded[T any] struct {
	items []T
	limit int
	// better reports whether a ranks strictly ahead of b.
	better func(a, b T) bool
}

// NewBounded returns a queue retaining at most limit items ranked by better.
func NewBounded[T any](limit int, better func(a, b T) bool) *Bounded[T] {
	return &Bounded[T]{
		items:  make([]T, 0, max(limit, 0)),
		limit:  limit,
		better: better,
	}
}

// Len returns the number of retained items.
func (q *Bounded[T]) Len() int { return len(q.items) }

// Less orders the heap worst first.
func (q *Bounded[T]) Less(i, j int) bool { return q.better(q.items[j], q.items[i]) }

// Swap swaps the elements with indexes i and j.
func (q *Bounded[T]) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

// Push implements heap.Interface. Use Offer to add items.
func (q *Bounded[T]) Push(x any) { q.items = append(q.items, x.(T)) }

// Pop implements heap.Interface.
func (q *Bounded[T]) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	q.items = old[:n-1]
	return item
}

// Offer adds item if it ranks ahead of the worst retained item or the queue
// is not full. It reports whether the item was retained.
func (q *Bounded[T]) Offer(item T) bool {
	if q.limit <= 0 {
		return false
	}
	if len(q.items) < q.limit {
		heap.Push(q, item)
		return true
	}
	if !q.better(item, q.items[0]) {
		return false
	}
	q.items[0] = item
	heap.Fix(q, 0)
	return true
}

// Worst returns the worst retained item. ok is false for an empty queue.
func (q *Bounded[T]) Worst() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	return q.items[0], true
}

// Sorted returns the retained items, best first. The queue is unchanged.
func (q *Bounded[T]) Sorted() []T {
	out := slices.Clone(q.items)
	slices.SortFunc(out, func(a, b T) int {
		switch {
		case q.better(a, b):
			return -1
		case q.better(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}
