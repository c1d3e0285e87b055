package limiter

import (
	"context"
	"fmt"
	"time"
)

// Result reports the outcome of a cooldown check. A denied call is an
// ordinary result, never an error.
type Result struct {
	Granted    bool
	RetryAfter time.Duration
}

// Limiter is the generic "at most once per window" gate, keyed by
// (subject, action). Grants for the same key serialize so two
// near-simultaneous calls cannot both be granted.
type Limiter interface {
	Allow(ctx context.Context, subjectID int64, action string, window time.Duration) (Result, error)
}

func cooldownKey(subjectID int64, action string) string {
	return fmt.Sprintf("cooldown:%d:%s", subjectID, action)
}
