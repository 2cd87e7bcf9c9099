// Package events provides the tick-scoped mailboxes the simulation systems
// read from and the outgoing bus they publish to.
package events

import "sync"

// Queue is a FIFO mailbox. Producers push during a tick; the owning
// pipeline drains it once per pass. The queue itself lives for the whole
// process and only its contents are cleared.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

func NewQueue[T any]() *Queue[T] { return &Queue[T]{} }

func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// Drain returns every pending value in enqueue order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	out := q.items
	q.items = nil
	q.mu.Unlock()
	return out
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// ConsumeStats summarises one Consume pass.
type ConsumeStats struct {
	Processed int
	Failed    int
}

// Consume drains q and hands every event to handle exactly once, in order.
// A failing event is reported to onErr (which may be nil) and the pass moves
// on to the next one.
func Consume[T any](q *Queue[T], handle func(T) error, onErr func(T, error)) ConsumeStats {
	return ConsumeAll(q.Drain(), handle, onErr)
}

// ConsumeAll is Consume over an already drained batch.
func ConsumeAll[T any](batch []T, handle func(T) error, onErr func(T, error)) ConsumeStats {
	var st ConsumeStats
	for _, ev := range batch {
		st.Processed++
		if err := handle(ev); err != nil {
			st.Failed++
			if onErr != nil {
				onErr(ev, err)
			}
		}
	}
	return st
}

func (s ConsumeStats) Add(o ConsumeStats) ConsumeStats {
	return ConsumeStats{Processed: s.Processed + o.Processed, Failed: s.Failed + o.Failed}
}
