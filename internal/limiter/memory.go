package limiter

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps last-grant timestamps in a map. One mutex guards
// every key; the read-check-record sequence for a key is atomic.
type MemoryLimiter struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]time.Time
}

// NewMemoryLimiter constructs the limiter. now may be nil, in which case
// time.Now is used; tests inject a deterministic clock.
func NewMemoryLimiter(now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{now: now, last: make(map[string]time.Time)}
}

// Allow grants when no prior grant exists for the key or the window has
// elapsed. A grant overwrites the record with the current time; a denial
// leaves it untouched and reports how long to wait.
func (l *MemoryLimiter) Allow(ctx context.Context, subjectID int64, action string, window time.Duration) (Result, error) {
	key := cooldownKey(subjectID, action)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.last[key]
	if ok {
		elapsed := now.Sub(last)
		if elapsed < window {
			return Result{Granted: false, RetryAfter: window - elapsed}, nil
		}
	}
	l.last[key] = now
	return Result{Granted: true}, nil
}
