package events

import (
	"time"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketTaken        EventType = "ticket_taken"
	EventTicketMessageAdded EventType = "ticket_message_added"
	EventTicketClosed       EventType = "ticket_closed"
	EventTicketRated        EventType = "ticket_rated"
	EventFeedbackReceived   EventType = "feedback_received"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	TicketID  string       `json:"ticket_id,omitempty"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ref       string `json:"ref"`
	SubjectID int64  `json:"subject_id"`
	Text      string `json:"text"`
}

// TicketTakenPayload payload.
type TicketTakenPayload struct {
	Ref       string `json:"ref"`
	SubjectID int64  `json:"subject_id"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Ref       string       `json:"ref"`
	SubjectID int64        `json:"subject_id"`
	Sender    domain.Actor `json:"sender"`
	Text      string       `json:"text"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Ref       string             `json:"ref"`
	SubjectID int64              `json:"subject_id"`
	Reason    domain.CloseReason `json:"reason"`
	Waited    time.Duration      `json:"waited,omitempty"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Ref       string `json:"ref"`
	SubjectID int64  `json:"subject_id"`
	Stars     int    `json:"stars"`
}

// FeedbackReceivedPayload payload.
type FeedbackReceivedPayload struct {
	FeedbackID string              `json:"feedback_id"`
	SubjectID  int64               `json:"subject_id"`
	Kind       domain.FeedbackKind `json:"kind"`
	Text       string              `json:"text"`
}
