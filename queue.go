package taskscheduler

import (
	"sync"
)

const initialQueueCapacity = 16

// WorkQueue is an unbounded FIFO of pending items shared by every slot of
// a Scheduler.
//
// Besides the items it keeps a single hint bit, "recently drained", which
// is set whenever the queue empties and cleared when it grows to exactly
// capacityHint items. The hint only decides whether a submit bothers to
// probe the slots; correctness never depends on it.
type WorkQueue[T any] struct {
	mu sync.RWMutex

	buf        []T // circular buffer, len is always a power of two
	head, tail int // read/write indices
	size       int

	capacityHint    int
	recentlyDrained bool
}

// NewWorkQueue creates an empty queue. capacityHint is normally the slot
// count; it is not a capacity limit.
func NewWorkQueue[T any](capacityHint int) *WorkQueue[T] {
	if capacityHint <= 0 {
		capacityHint = 1
	}
	return &WorkQueue[T]{
		buf:             make([]T, initialQueueCapacity),
		capacityHint:    capacityHint,
		recentlyDrained: true,
	}
}

// Push appends item at the back. It is the only place the drained hint is
// cleared.
func (q *WorkQueue[T]) Push(item T) {
	q.PushObserve(item)
}

// PushObserve appends item and returns the queue size and drained hint as
// they were right after this push, read under the same lock.
func (q *WorkQueue[T]) PushObserve(item T) (size int, drained bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[q.tail] = item
	q.tail = (q.tail + 1) & (len(q.buf) - 1)
	q.size++

	if q.size == q.capacityHint {
		q.recentlyDrained = false
	}
	return q.size, q.recentlyDrained
}

// PopFront removes and returns the oldest item.
//
// If the queue is empty, returns the zero value and false.
func (q *WorkQueue[T]) PopFront() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}
	item := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) & (len(q.buf) - 1)
	q.size--

	if q.size == 0 {
		q.recentlyDrained = true
	}
	return item, true
}

// Size returns the number of items currently waiting.
func (q *WorkQueue[T]) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size
}

// RecentlyDrained reports whether the queue has emptied since it last
// grew to capacityHint items.
func (q *WorkQueue[T]) RecentlyDrained() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.recentlyDrained
}

// CapacityHint returns the size at which the drained hint is cleared.
func (q *WorkQueue[T]) CapacityHint() int { return q.capacityHint }

// grow doubles the ring and unwraps it so head starts at 0.
// Caller must hold the write lock.
func (q *WorkQueue[T]) grow() {
	next := make([]T, len(q.buf)*2)
	n := copy(next, q.buf[q.head:])
	copy(next[n:], q.buf[:q.head])
	q.buf = next
	q.head = 0
	q.tail = q.size
}
