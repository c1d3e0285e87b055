package dto

import (
	"time"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// SubmitFeedbackRequest submits a suggestion or review.
type SubmitFeedbackRequest struct {
	SubjectID int64  `json:"subject_id" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=suggestion review"`
	Text      string `json:"text" validate:"required"`
}

// FeedbackResponse is the stored feedback view.
type FeedbackResponse struct {
	ID        string              `json:"id"`
	SubjectID int64               `json:"subject_id"`
	Kind      domain.FeedbackKind `json:"kind"`
	Text      string              `json:"text"`
	Thanked   bool                `json:"thanked"`
	CreatedAt time.Time           `json:"created_at"`
}

// CooldownResponse reports a denied submission, with the wait remaining.
type CooldownResponse struct {
	CooldownActive bool  `json:"cooldown_active"`
	RetryAfterSec  int64 `json:"retry_after_seconds"`
}

// FromFeedback maps a domain record onto the response shape.
func FromFeedback(fb *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        fb.ID,
		SubjectID: fb.SubjectID,
		Kind:      fb.Kind,
		Text:      fb.Text,
		Thanked:   fb.Thanked,
		CreatedAt: fb.CreatedAt,
	}
}
