package common

import "sync"

// KeyAction is the kind of key transition reported by the window.
type KeyAction int

const (
	KeyPress KeyAction = iota
	KeyRelease
	KeyRepeat
)

// KeyEvent is a single key transition.
type KeyEvent struct {
	Key    int
	Action KeyAction
}

// KeyQueue buffers key events between window polls.
// Window callbacks push; the frame loop drains once per iteration.
type KeyQueue struct {
	mu     *sync.Mutex
	events []KeyEvent
	limit  int
}

// NewKeyQueue creates a queue that keeps at most limit pending events, dropping the oldest first.
//
// Parameters:
//   - limit: the maximum number of pending events (values < 1 mean 64)
//
// Returns:
//   - *KeyQueue: the empty queue
func NewKeyQueue(limit int) *KeyQueue {
	if limit < 1 {
		limit = 64
	}
	return &KeyQueue{mu: &sync.Mutex{}, limit: limit}
}

// Push appends an event.
func (q *KeyQueue) Push(ev KeyEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == q.limit {
		q.events = q.events[1:]
	}
	q.events = append(q.events, ev)
}

// Drain returns every pending event in arrival order and empties the queue.
//
// Returns:
//   - []KeyEvent: the pending events, or nil if there are none
func (q *KeyQueue) Drain() []KeyEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Pressed reports whether events contains a press of key.
func Pressed(events []KeyEvent, key int) bool {
	for _, ev := range events {
		if ev.Key == key && ev.Action == KeyPress {
			return true
		}
	}
	return false
}
