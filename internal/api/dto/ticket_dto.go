package dto

import (
	"time"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// OpenTicketRequest opens a ticket on first user contact. Message length
// is additionally checked against the configured minimum at the handler.
type OpenTicketRequest struct {
	SubjectID int64  `json:"subject_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// UserReplyRequest appends a user message to a ticket.
type UserReplyRequest struct {
	SubjectID int64  `json:"subject_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// AdminReplyRequest appends an admin message to a ticket.
type AdminReplyRequest struct {
	Message string `json:"message" validate:"required"`
}

// RateTicketRequest rates a closed ticket.
type RateTicketRequest struct {
	SubjectID int64 `json:"subject_id" validate:"required"`
	Stars     int   `json:"stars" validate:"required,min=1,max=3"`
}

// TicketResponse is the snapshot view returned to callers.
type TicketResponse struct {
	ID                string              `json:"id"`
	Ref               string              `json:"ref"`
	SubjectID         int64               `json:"subject_id"`
	Status            domain.TicketStatus `json:"status"`
	LastActor         domain.Actor        `json:"last_actor"`
	CreatedAt         time.Time           `json:"created_at"`
	ClosedAt          *time.Time          `json:"closed_at,omitempty"`
	ClosedReason      domain.CloseReason  `json:"closed_reason,omitempty"`
	Rating            *int                `json:"rating,omitempty"`
	ETAToAutoCloseSec int64               `json:"eta_to_auto_close_seconds,omitempty"`
}

// FromSnapshot maps a domain snapshot onto the response shape.
func FromSnapshot(snap domain.Snapshot) TicketResponse {
	return TicketResponse{
		ID:                snap.ID,
		Ref:               snap.Ref,
		SubjectID:         snap.SubjectID,
		Status:            snap.Status,
		LastActor:         snap.LastActor,
		CreatedAt:         snap.CreatedAt,
		ClosedAt:          snap.ClosedAt,
		ClosedReason:      snap.ClosedReason,
		Rating:            snap.Rating,
		ETAToAutoCloseSec: int64(snap.ETAToAutoClose.Seconds()),
	}
}
