package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/events"
	"github.com/support-kit/helpdesk-bot/internal/store"
)

// TicketService coordinates the ticket lifecycle. Every read-modify-write
// runs under one mutex so an inbound reply and the auto-close sweep can
// never interleave on the same ticket; volume is low enough that a global
// scope beats per-ticket bookkeeping.
type TicketService struct {
	mu             sync.Mutex
	store          store.TicketStore
	dispatcher     events.Dispatcher
	bans           *BanService
	logger         *zap.Logger
	now            func() time.Time
	autoCloseAfter time.Duration
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store          store.TicketStore
	Dispatcher     events.Dispatcher
	Bans           *BanService
	Logger         *zap.Logger
	Now            func() time.Time
	AutoCloseAfter time.Duration
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:          deps.Store,
		dispatcher:     deps.Dispatcher,
		bans:           deps.Bans,
		logger:         deps.Logger,
		now:            now,
		autoCloseAfter: deps.AutoCloseAfter,
	}
}

// Open creates a ticket on first user contact. One active ticket per
// subject: a second open while the first is not closed is rejected. A
// user whose previous ticket was just auto-closed opens a fresh one.
func (s *TicketService) Open(ctx context.Context, subjectID int64, text string) (*domain.Ticket, error) {
	if s.bans != nil && s.bans.IsBanned(subjectID) {
		return nil, domain.ErrSubjectBanned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.activeBySubjectLocked(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrDuplicateActiveTicket
	}

	now := s.now()
	ticket := domain.NewTicket(uuid.NewString(), generateTicketRef(), subjectID, now)
	if err := s.store.Put(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ref", ticket.Ref),
		zap.Int64("subject_id", subjectID))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    domain.ActorUser,
		Payload: events.TicketCreatedPayload{
			Ref:       ticket.Ref,
			SubjectID: subjectID,
			Text:      text,
		},
	})
	return ticket, nil
}

// UserReply records a user message on a ticket. The turn passes back to
// the admin, which makes the ticket ineligible for auto-close.
func (s *TicketService) UserReply(ctx context.Context, ticketID, text string) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, func(t *domain.Ticket) error {
		return t.UserReply(s.now())
	}, func(t *domain.Ticket) *events.Event {
		return &events.Event{
			Type:     events.EventTicketMessageAdded,
			TicketID: t.ID,
			Actor:    domain.ActorUser,
			Payload: events.TicketMessageAddedPayload{
				Ref:       t.Ref,
				SubjectID: t.SubjectID,
				Sender:    domain.ActorUser,
				Text:      text,
			},
		}
	})
}

// Take moves a NEW ticket to IN_PROGRESS.
func (s *TicketService) Take(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Take()
	}, func(t *domain.Ticket) *events.Event {
		return &events.Event{
			Type:     events.EventTicketTaken,
			TicketID: t.ID,
			Actor:    domain.ActorAdmin,
			Payload:  events.TicketTakenPayload{Ref: t.Ref, SubjectID: t.SubjectID},
		}
	})
}

// AdminReply records an admin message, taking a NEW ticket implicitly.
// From this moment the auto-close clock runs until the user replies.
func (s *TicketService) AdminReply(ctx context.Context, ticketID, text string) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, func(t *domain.Ticket) error {
		return t.AdminReply(s.now())
	}, func(t *domain.Ticket) *events.Event {
		return &events.Event{
			Type:     events.EventTicketMessageAdded,
			TicketID: t.ID,
			Actor:    domain.ActorAdmin,
			Payload: events.TicketMessageAddedPayload{
				Ref:       t.Ref,
				SubjectID: t.SubjectID,
				Sender:    domain.ActorAdmin,
				Text:      text,
			},
		}
	})
}

// Close closes a ticket manually. Closing an already closed ticket
// surfaces domain.ErrAlreadyClosed without touching stored state.
func (s *TicketService) Close(ctx context.Context, ticketID string, reason domain.CloseReason) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Close(reason, s.now())
	}, func(t *domain.Ticket) *events.Event {
		return &events.Event{
			Type:     events.EventTicketClosed,
			TicketID: t.ID,
			Actor:    domain.ActorAdmin,
			Payload: events.TicketClosedPayload{
				Ref:       t.Ref,
				SubjectID: t.SubjectID,
				Reason:    reason,
			},
		}
	})
}

// AutoClose re-reads the ticket inside the exclusive scope and closes it
// only if the eligibility predicate still holds. A user reply that landed
// between enumeration and this call makes it a no-op. Returns whether the
// ticket was closed by this call.
func (s *TicketService) AutoClose(ctx context.Context, ticketID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return false, err
	}

	now := s.now()
	if !ticket.AutoCloseEligible(now, s.autoCloseAfter) {
		return false, nil
	}

	waited := now.Sub(ticket.LastAdminMessageAt)
	if err := ticket.Close(domain.CloseReasonAuto, now); err != nil {
		// Eligible implies IN_PROGRESS, so this cannot be AlreadyClosed;
		// surface whatever it is.
		return false, err
	}
	if err := s.store.Put(ctx, ticket); err != nil {
		return false, err
	}
	s.logger.Info("ticket auto-closed",
		zap.String("ticket_id", ticket.ID),
		zap.String("ref", ticket.Ref),
		zap.Duration("waited", waited))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Actor:    domain.ActorAdmin,
		Payload: events.TicketClosedPayload{
			Ref:       ticket.Ref,
			SubjectID: ticket.SubjectID,
			Reason:    domain.CloseReasonAuto,
			Waited:    waited,
		},
	})
	return true, nil
}

// Rate records a one-time rating on a closed ticket.
func (s *TicketService) Rate(ctx context.Context, ticketID string, stars int) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Rate(stars)
	}, func(t *domain.Ticket) *events.Event {
		return &events.Event{
			Type:     events.EventTicketRated,
			TicketID: t.ID,
			Actor:    domain.ActorUser,
			Payload:  events.TicketRatedPayload{Ref: t.Ref, SubjectID: t.SubjectID, Stars: stars},
		}
	})
}

// Get returns a ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.store.Get(ctx, ticketID)
}

// Snapshot returns the display view of a ticket, including the remaining
// time before auto-close when the admin is waiting on the user.
func (s *TicketService) Snapshot(ctx context.Context, ticketID string) (domain.Snapshot, error) {
	ticket, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return ticket.Snapshot(s.now(), s.autoCloseAfter), nil
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter store.TicketFilter) ([]domain.Ticket, error) {
	return s.store.List(ctx, filter)
}

// ActiveBySubject returns the subject's most recent non-closed ticket, or
// nil when none exists.
func (s *TicketService) ActiveBySubject(ctx context.Context, subjectID int64) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeBySubjectLocked(ctx, subjectID)
}

func (s *TicketService) activeBySubjectLocked(ctx context.Context, subjectID int64) (*domain.Ticket, error) {
	tickets, err := s.store.List(ctx, store.TicketFilter{
		SubjectID: &subjectID,
		Statuses:  store.ActiveStatuses(),
	})
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, nil
	}
	most := tickets[0]
	for _, t := range tickets[1:] {
		if t.CreatedAt.After(most.CreatedAt) {
			most = t
		}
	}
	return &most, nil
}

// mutate runs a single read-decide-write cycle under the exclusion scope
// and publishes the event built from the updated ticket.
func (s *TicketService) mutate(ctx context.Context, ticketID string, change func(*domain.Ticket) error, buildEvent func(*domain.Ticket) *events.Event) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := change(ticket); err != nil {
		return ticket, err
	}
	if err := s.store.Put(ctx, ticket); err != nil {
		return nil, err
	}
	if event := buildEvent(ticket); event != nil {
		s.publishEvent(ctx, *event)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketRef() string {
	return "T-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
