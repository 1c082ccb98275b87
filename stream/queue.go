package stream

import (
	"sync"
)

// Queue is an unbounded FIFO hand-off of produced media units.
//
// Any number of producer callbacks may Enqueue concurrently; Enqueue never
// blocks, so a collaborator pipeline thread is never stalled by the hand-off.
// Exactly one consumer Dequeues, on the dispatch thread. Global enqueue order
// is preserved; interleaving across streams reflects callback firing order.
type Queue struct {
	mu    sync.Mutex
	units []*Unit
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a unit. Never blocks.
func (q *Queue) Enqueue(u *Unit) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.units = append(q.units, u)
}

// Dequeue removes and returns the oldest unit. The second return value is
// false when the queue is empty.
func (q *Queue) Dequeue() (*Unit, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.units) == 0 {
		return nil, false
	}
	u := q.units[0]
	q.units[0] = nil
	q.units = q.units[1:]
	return u, true
}

// Len returns the number of queued units.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.units)
}
