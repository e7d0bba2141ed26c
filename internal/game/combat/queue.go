package combat

import (
	"container/heap"
	"time"
)

// PendingAction is an action scheduled to fire at a fixed time. The queue
// consumes each pending action exactly once.
type PendingAction struct {
	// Actor is the combatant the action executes for.
	Actor Combatant
	// Action is the payload to execute.
	Action *Action
	// FireAt is the scheduled execution time.
	FireAt time.Time

	seq   uint64
	index int
}

// actionHeap implements heap.Interface ordered by fire time, with the
// submission sequence as a stable tie-break so same-instant actions fire in
// FIFO order.
type actionHeap []*PendingAction

func (h actionHeap) Len() int { return len(h) }

func (h actionHeap) Less(i, j int) bool {
	if !h[i].FireAt.Equal(h[j].FireAt) {
		return h[i].FireAt.Before(h[j].FireAt)
	}
	return h[i].seq < h[j].seq
}

func (h actionHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *actionHeap) Push(x any) {
	pa := x.(*PendingAction)
	pa.index = len(*h)
	*h = append(*h, pa)
}

func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	pa := old[n-1]
	old[n-1] = nil
	pa.index = -1
	*h = old[:n-1]
	return pa
}

// ActionQueue is a time-ordered queue of pending actions shared by all
// combatants in one arena. It is not safe for concurrent use; the owning
// arena serializes access.
type ActionQueue struct {
	heap    actionHeap
	nextSeq uint64
}

// NewActionQueue creates an empty queue.
func NewActionQueue() *ActionQueue {
	return &ActionQueue{}
}

// Push schedules action for actor at now + delay. Negative delays clamp to
// zero, so an action can never be scheduled in the past.
//
// Postcondition: The action fires no earlier than now and no later than any
// action pushed afterwards with the same fire time.
func (q *ActionQueue) Push(actor Combatant, action *Action, delay time.Duration, now time.Time) {
	if delay < 0 {
		delay = 0
	}
	pa := &PendingAction{
		Actor:  actor,
		Action: action,
		FireAt: now.Add(delay),
		seq:    q.nextSeq,
	}
	q.nextSeq++
	heap.Push(&q.heap, pa)
}

// PopDue removes and returns every action whose fire time is at or before
// now, in fire-time order with submission-order tie-break. Actions not yet
// due stay queued.
func (q *ActionQueue) PopDue(now time.Time) []*PendingAction {
	var due []*PendingAction
	for q.heap.Len() > 0 && !q.heap[0].FireAt.After(now) {
		due = append(due, heap.Pop(&q.heap).(*PendingAction))
	}
	return due
}

// IsEmpty reports whether any actions remain queued.
func (q *ActionQueue) IsEmpty() bool {
	return q.heap.Len() == 0
}

// Len returns the number of queued actions.
func (q *ActionQueue) Len() int {
	return q.heap.Len()
}

// Clear drops every queued action.
func (q *ActionQueue) Clear() {
	q.heap = nil
}
