// Package toast keeps the list of transient notifications shown in the UI.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// DefaultDuration applies when Push is given no duration.
const DefaultDuration = 4 * time.Second

type Toast struct {
	ID        string
	Kind      Kind
	Text      string
	Duration  time.Duration
	Persist   bool
	CreatedAt time.Time
}

// ExpiresAt is the zero time for persistent toasts.
func (t Toast) ExpiresAt() time.Time {
	if t.Persist {
		return time.Time{}
	}
	return t.CreatedAt.Add(t.Duration)
}

// Options tune a single toast.
type Options struct {
	Duration time.Duration
	Persist  bool
}

// Queue is safe for concurrent use. Items are newest first.
type Queue struct {
	mu       sync.Mutex
	items    []Toast
	fallback time.Duration
	now      func() time.Time
}

// NewQueue returns an empty queue whose toasts last d unless overridden.
// A non-positive d selects DefaultDuration.
func NewQueue(d time.Duration) *Queue {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Queue{fallback: d, now: time.Now}
}

// Push adds a toast and returns it, including its assigned id.
func (q *Queue) Push(kind Kind, text string, opts ...Options) Toast {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Duration <= 0 {
		o.Duration = q.fallback
	}
	t := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		Duration:  o.Duration,
		Persist:   o.Persist,
		CreatedAt: q.now(),
	}

	q.mu.Lock()
	q.items = append([]Toast{t}, q.items...)
	q.mu.Unlock()
	return t
}

// Dismiss removes the toast with id. It reports whether one was removed.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// DismissAll clears the queue, persistent toasts included.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// Expire drops every non-persistent toast whose duration has elapsed at now.
func (q *Queue) Expire(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	removed := 0
	for _, t := range q.items {
		if !t.Persist && !now.Before(t.ExpiresAt()) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	q.items = kept
	return removed
}

// Items returns a copy of the current toasts, newest first.
func (q *Queue) Items() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Latest() (Toast, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Toast{}, false
	}
	return q.items[0], true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
