package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Actor identifies who sent the most recent message on a ticket.
type Actor string

const (
	ActorUser  Actor = "USER"
	ActorAdmin Actor = "ADMIN"
)

// CloseReason records how a ticket reached CLOSED.
type CloseReason string

const (
	CloseReasonManual CloseReason = "MANUAL"
	CloseReasonAuto   CloseReason = "AUTO"
)

// Ticket is the aggregate for support requests. All state changes go
// through the methods below; they are pure and take the current time as
// an argument so the clock stays outside the domain.
type Ticket struct {
	ID                 string
	Ref                string
	SubjectID          int64
	Status             TicketStatus
	LastActor          Actor
	CreatedAt          time.Time
	LastUserMessageAt  time.Time
	LastAdminMessageAt time.Time
	ClosedAt           *time.Time
	ClosedReason       CloseReason
	Rating             *int
}

// NewTicket creates a ticket on first user contact.
func NewTicket(id, ref string, subjectID int64, now time.Time) *Ticket {
	return &Ticket{
		ID:                id,
		Ref:               ref,
		SubjectID:         subjectID,
		Status:            TicketStatusNew,
		LastActor:         ActorUser,
		CreatedAt:         now,
		LastUserMessageAt: now,
	}
}

// Active reports whether the ticket is still open for mutation.
func (t *Ticket) Active() bool {
	return t.Status != TicketStatusClosed
}

// Take moves a NEW ticket to IN_PROGRESS.
func (t *Ticket) Take() error {
	if t.Status != TicketStatusNew {
		return ErrInvalidTransition
	}
	t.Status = TicketStatusInProgress
	return nil
}

// AdminReply records an admin message. A reply to a NEW ticket takes it
// implicitly; the turn passes to the user.
func (t *Ticket) AdminReply(now time.Time) error {
	if t.Status == TicketStatusClosed {
		return ErrInvalidTransition
	}
	t.Status = TicketStatusInProgress
	t.LastActor = ActorAdmin
	t.LastAdminMessageAt = now
	return nil
}

// UserReply records a user message. Status is unchanged; the turn passes
// back to the admin, which cancels any pending auto-close.
func (t *Ticket) UserReply(now time.Time) error {
	if t.Status == TicketStatusClosed {
		return ErrInvalidTransition
	}
	t.LastActor = ActorUser
	t.LastUserMessageAt = now
	return nil
}

// Close transitions any non-closed ticket to CLOSED. Closing an already
// closed ticket is a no-op signalled with ErrAlreadyClosed so callers can
// treat it as benign; the stored state is never touched twice.
func (t *Ticket) Close(reason CloseReason, now time.Time) error {
	if t.Status == TicketStatusClosed {
		return ErrAlreadyClosed
	}
	t.Status = TicketStatusClosed
	t.ClosedAt = &now
	t.ClosedReason = reason
	return nil
}

// Rate records a one-time 1..3 star rating on a closed ticket.
func (t *Ticket) Rate(stars int) error {
	if t.Status != TicketStatusClosed {
		return ErrInvalidTransition
	}
	if t.Rating != nil || stars < 1 || stars > 3 {
		return ErrInvalidRating
	}
	t.Rating = &stars
	return nil
}

// AutoCloseEligible is the stateless eligibility predicate: the admin
// replied last on an IN_PROGRESS ticket and the user has been silent for
// at least `after`. Recomputed from timestamps on every evaluation, so no
// timer state survives restarts. A ticket whose last actor is the user is
// never eligible, regardless of elapsed time.
func (t *Ticket) AutoCloseEligible(now time.Time, after time.Duration) bool {
	return t.Status == TicketStatusInProgress &&
		t.LastActor == ActorAdmin &&
		now.Sub(t.LastAdminMessageAt) >= after
}

// Snapshot is the read-only view exposed to the presentation layer.
type Snapshot struct {
	ID             string
	Ref            string
	SubjectID      int64
	Status         TicketStatus
	LastActor      Actor
	CreatedAt      time.Time
	ClosedAt       *time.Time
	ClosedReason   CloseReason
	Rating         *int
	ETAToAutoClose time.Duration
}

// Snapshot derives the display view. ETAToAutoClose is populated only on
// the eligible path (admin waiting on the user) and never goes negative.
func (t *Ticket) Snapshot(now time.Time, after time.Duration) Snapshot {
	snap := Snapshot{
		ID:           t.ID,
		Ref:          t.Ref,
		SubjectID:    t.SubjectID,
		Status:       t.Status,
		LastActor:    t.LastActor,
		CreatedAt:    t.CreatedAt,
		ClosedAt:     t.ClosedAt,
		ClosedReason: t.ClosedReason,
		Rating:       t.Rating,
	}
	if t.Status == TicketStatusInProgress && t.LastActor == ActorAdmin {
		eta := after - now.Sub(t.LastAdminMessageAt)
		if eta < 0 {
			eta = 0
		}
		snap.ETAToAutoClose = eta
	}
	return snap
}
