package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/alert"
	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/observability"
	"github.com/support-kit/helpdesk-bot/internal/store"
)

// AutoCloseService sweeps IN_PROGRESS tickets and closes those where the
// admin has waited past the threshold for a user reply. Each ticket is an
// independent commit: one bad record never blocks closing the others.
type AutoCloseService struct {
	tickets *TicketService
	store   store.TicketStore
	alerts  *alert.Service
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAutoCloseService constructs the service.
func NewAutoCloseService(tickets *TicketService, ticketStore store.TicketStore, alerts *alert.Service, metrics *observability.Metrics, logger *zap.Logger) *AutoCloseService {
	return &AutoCloseService{
		tickets: tickets,
		store:   ticketStore,
		alerts:  alerts,
		metrics: metrics,
		logger:  logger,
	}
}

// Sweep runs one auto-close pass. Enumeration is a cheap pre-filter on
// status; eligibility is re-evaluated from a fresh read inside the
// exclusive scope right before closing, so a reply arriving between scan
// and action wins. A sweep that closes nothing is a normal outcome.
func (s *AutoCloseService) Sweep(ctx context.Context) (int, error) {
	candidates, err := s.store.List(ctx, store.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusInProgress},
	})
	if err != nil {
		s.alerts.ReportError(ctx, "autoclose.list", err)
		return 0, err
	}

	s.logger.Debug("auto-close sweep", zap.Int("candidates", len(candidates)))

	closed := 0
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		didClose, err := s.tickets.AutoClose(ctx, candidates[i].ID)
		if err != nil {
			s.alerts.ReportError(ctx, "autoclose.close",
				fmt.Errorf("ticket %s: %w", candidates[i].ID, err))
			continue
		}
		if didClose {
			closed++
		}
	}

	s.metrics.RecordSweep(closed)
	if closed > 0 {
		s.logger.Info("auto-close sweep finished", zap.Int("closed", closed))
	}
	return closed, nil
}
