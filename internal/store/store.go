package store

import (
	"context"
	"errors"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// TicketFilter narrows List results. Zero value matches everything.
type TicketFilter struct {
	SubjectID *int64
	Statuses  []domain.TicketStatus
}

// Matches reports whether a ticket satisfies the filter.
func (f TicketFilter) Matches(t *domain.Ticket) bool {
	if f.SubjectID != nil && t.SubjectID != *f.SubjectID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// ActiveStatuses is the filter value for non-closed tickets.
func ActiveStatuses() []domain.TicketStatus {
	return []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress}
}

// TicketStore is the narrow persistence contract the core depends on.
// Put is an atomic replace and must be durable before it returns.
type TicketStore interface {
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Put(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// FeedbackStore persists feedback records.
type FeedbackStore interface {
	GetFeedback(ctx context.Context, id string) (*domain.Feedback, error)
	PutFeedback(ctx context.Context, fb *domain.Feedback) error
	ListFeedback(ctx context.Context) ([]domain.Feedback, error)
}

// Store is the combined contract satisfied by every backend.
type Store interface {
	TicketStore
	FeedbackStore
}
