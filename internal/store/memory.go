package store

import (
	"context"
	"sort"
	"sync"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// MemoryStore keeps everything in process memory. Used by tests and for
// running without persistence configured.
type MemoryStore struct {
	mu        sync.RWMutex
	tickets   map[string]domain.Ticket
	feedbacks map[string]domain.Feedback
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:   make(map[string]domain.Ticket),
		feedbacks: make(map[string]domain.Feedback),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := ticket
	return &copied, nil
}

func (s *MemoryStore) Put(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Ticket
	for id := range s.tickets {
		ticket := s.tickets[id]
		if filter.Matches(&ticket) {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) GetFeedback(ctx context.Context, id string) (*domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fb, ok := s.feedbacks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := fb
	return &copied, nil
}

func (s *MemoryStore) PutFeedback(ctx context.Context, fb *domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbacks[fb.ID] = *fb
	return nil
}

func (s *MemoryStore) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Feedback, 0, len(s.feedbacks))
	for id := range s.feedbacks {
		result = append(result, s.feedbacks[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
