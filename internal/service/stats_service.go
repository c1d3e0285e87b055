package service

import (
	"context"
	"time"

	"github.com/support-kit/helpdesk-bot/internal/alert"
	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/store"
)

// Stats aggregates ticket and feedback counters for the admin dashboard
// and the lifecycle alert banners.
type Stats struct {
	TotalTickets      int     `json:"total_tickets"`
	ActiveTickets     int     `json:"active_tickets"`
	ClosedTickets     int     `json:"closed_tickets"`
	AutoClosedTickets int     `json:"auto_closed_tickets"`
	RatedTickets      int     `json:"rated_tickets"`
	AverageRating     float64 `json:"average_rating"`
	AwaitingAutoClose int     `json:"awaiting_auto_close"`
	CreatedLastDay    int     `json:"created_last_day"`
	ClosedLastDay     int     `json:"closed_last_day"`
	FeedbackCount     int     `json:"feedback_count"`
}

// StatsService derives statistics from the store on demand; nothing is
// cached or incremented, so the numbers always match the records.
type StatsService struct {
	store          store.Store
	now            func() time.Time
	autoCloseAfter time.Duration
}

// NewStatsService constructs the service. now may be nil for time.Now.
func NewStatsService(st store.Store, now func() time.Time, autoCloseAfter time.Duration) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{store: st, now: now, autoCloseAfter: autoCloseAfter}
}

// Collect computes the full statistics snapshot.
func (s *StatsService) Collect(ctx context.Context) (Stats, error) {
	tickets, err := s.store.List(ctx, store.TicketFilter{})
	if err != nil {
		return Stats{}, err
	}
	feedbacks, err := s.store.ListFeedback(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := s.now()
	dayAgo := now.Add(-24 * time.Hour)

	stats := Stats{TotalTickets: len(tickets), FeedbackCount: len(feedbacks)}
	ratingSum := 0
	for i := range tickets {
		t := &tickets[i]
		if t.Active() {
			stats.ActiveTickets++
		} else {
			stats.ClosedTickets++
			if t.ClosedReason == domain.CloseReasonAuto {
				stats.AutoClosedTickets++
			}
			if t.ClosedAt != nil && t.ClosedAt.After(dayAgo) {
				stats.ClosedLastDay++
			}
		}
		if t.Rating != nil {
			stats.RatedTickets++
			ratingSum += *t.Rating
		}
		if t.Status == domain.TicketStatusInProgress && t.LastActor == domain.ActorAdmin {
			stats.AwaitingAutoClose++
		}
		if t.CreatedAt.After(dayAgo) {
			stats.CreatedLastDay++
		}
	}
	if stats.RatedTickets > 0 {
		stats.AverageRating = float64(ratingSum) / float64(stats.RatedTickets)
	}
	return stats, nil
}

// Summary converts the snapshot into the slice the alert banners carry.
func (s Stats) Summary() alert.StatsSummary {
	return alert.StatsSummary{
		Total:             s.TotalTickets,
		Active:            s.ActiveTickets,
		AwaitingAutoClose: s.AwaitingAutoClose,
	}
}
