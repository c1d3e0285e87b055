package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

func TestMemoryStoreGetPut(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	ticket := domain.NewTicket("tid-1", "T-AAAA0001", 42, created)
	if err := s.Put(ctx, ticket); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "tid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Ref != "T-AAAA0001" || got.SubjectID != 42 {
		t.Fatalf("got %+v", got)
	}

	// The store hands out copies; mutating the result must not leak back.
	got.Status = domain.TicketStatusClosed
	fresh, err := s.Get(ctx, "tid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Status != domain.TicketStatusNew {
		t.Fatalf("stored ticket mutated through a returned copy: %s", fresh.Status)
	}
}

func TestMemoryStoreListFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	open := domain.NewTicket("tid-1", "T-AAAA0001", 42, created)
	closed := domain.NewTicket("tid-2", "T-AAAA0002", 42, created.Add(time.Hour))
	_ = closed.Close(domain.CloseReasonManual, created.Add(2*time.Hour))
	other := domain.NewTicket("tid-3", "T-AAAA0003", 7, created.Add(3*time.Hour))
	for _, ticket := range []*domain.Ticket{open, closed, other} {
		if err := s.Put(ctx, ticket); err != nil {
			t.Fatalf("put %s: %v", ticket.ID, err)
		}
	}

	all, err := s.List(ctx, TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list all = %d, want 3", len(all))
	}
	if all[0].ID != "tid-1" || all[2].ID != "tid-3" {
		t.Fatalf("list not ordered by creation: %s .. %s", all[0].ID, all[2].ID)
	}

	subject := int64(42)
	active, err := s.List(ctx, TicketFilter{SubjectID: &subject, Statuses: ActiveStatuses()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].ID != "tid-1" {
		t.Fatalf("active for subject 42 = %+v, want only tid-1", active)
	}
}

func TestMemoryStoreFeedback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetFeedback(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing feedback: err = %v, want ErrNotFound", err)
	}

	fb := &domain.Feedback{
		ID:        "sug_12345678",
		SubjectID: 42,
		Kind:      domain.FeedbackKindSuggestion,
		Text:      "dark mode please",
		CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := s.PutFeedback(ctx, fb); err != nil {
		t.Fatalf("put feedback: %v", err)
	}

	got, err := s.GetFeedback(ctx, "sug_12345678")
	if err != nil {
		t.Fatalf("get feedback: %v", err)
	}
	if got.Text != "dark mode please" || got.Thanked {
		t.Fatalf("got %+v", got)
	}

	list, err := s.ListFeedback(ctx)
	if err != nil {
		t.Fatalf("list feedback: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list feedback = %d, want 1", len(list))
	}
}
