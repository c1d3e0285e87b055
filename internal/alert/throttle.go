package alert

import (
	"sync"
	"time"
)

// Decision is the outcome of a throttle check. When ShouldSend is true,
// PriorSuppressed carries how many duplicates were swallowed since the
// previous send so the caller can report "N similar errors suppressed".
type Decision struct {
	ShouldSend      bool
	Suppressed      int
	PriorSuppressed int
}

type throttleEntry struct {
	lastSentAt time.Time
	suppressed int
}

// Throttle deduplicates operational notifications per error signature
// within a time window, counting what it suppresses.
type Throttle struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*throttleEntry
}

// NewThrottle constructs the throttle. now may be nil for time.Now.
func NewThrottle(now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{now: now, entries: make(map[string]*throttleEntry)}
}

// NotifyIfDue decides whether an alert for the signature goes out now.
// The first call per signature, and the first call after the window has
// elapsed since the last send, returns ShouldSend=true and resets the
// suppression counter. Calls inside the window increment the counter and
// return it without sending.
func (t *Throttle) NotifyIfDue(signature string, window time.Duration) Decision {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[signature]
	if !ok {
		t.entries[signature] = &throttleEntry{lastSentAt: now}
		return Decision{ShouldSend: true}
	}

	if now.Sub(entry.lastSentAt) < window {
		entry.suppressed++
		return Decision{ShouldSend: false, Suppressed: entry.suppressed}
	}

	prior := entry.suppressed
	entry.lastSentAt = now
	entry.suppressed = 0
	return Decision{ShouldSend: true, PriorSuppressed: prior}
}
