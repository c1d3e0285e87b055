package domain

import "time"

// FeedbackKind distinguishes the two feedback flows.
type FeedbackKind string

const (
	FeedbackKindSuggestion FeedbackKind = "suggestion"
	FeedbackKindReview     FeedbackKind = "review"
)

// Feedback is a user-submitted suggestion or review. Submission is gated
// by the cooldown limiter, one grant per (subject, kind) per window.
type Feedback struct {
	ID        string
	SubjectID int64
	Kind      FeedbackKind
	Text      string
	Thanked   bool
	CreatedAt time.Time
}
