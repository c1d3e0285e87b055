package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/events"
	"github.com/support-kit/helpdesk-bot/internal/limiter"
	"github.com/support-kit/helpdesk-bot/internal/store"
)

const feedbackWindow = 24 * time.Hour

func newFeedbackServiceForTest(clock *testClock, bans *BanService) (*FeedbackService, store.Store) {
	st := store.NewMemoryStore()
	svc := NewFeedbackService(FeedbackDependencies{
		Store:      st,
		Limiter:    limiter.NewMemoryLimiter(clock.Now),
		Dispatcher: events.NewInMemoryDispatcher(),
		Bans:       bans,
		Window:     feedbackWindow,
		Logger:     zap.NewNop(),
		Now:        clock.Now,
	})
	return svc, st
}

func TestSubmitStoresAndAppliesCooldown(t *testing.T) {
	clock := newTestClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc, st := newFeedbackServiceForTest(clock, nil)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, 42, domain.FeedbackKindSuggestion, "dark mode please")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sub.Granted || sub.Feedback == nil {
		t.Fatalf("submission = %+v", sub)
	}
	if !strings.HasPrefix(sub.Feedback.ID, "sug_") {
		t.Fatalf("feedback id = %q, want sug_ prefix", sub.Feedback.ID)
	}

	// Second submission of the same kind inside the window is refused as a
	// plain result, not an error.
	clock.Advance(time.Hour)
	sub, err = svc.Submit(ctx, 42, domain.FeedbackKindSuggestion, "another idea")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Granted {
		t.Fatal("second submission inside window should be on cooldown")
	}
	if sub.RetryAfter != 23*time.Hour {
		t.Fatalf("retry after = %s, want 23h", sub.RetryAfter)
	}

	// A review is a different cooldown key.
	sub, err = svc.Submit(ctx, 42, domain.FeedbackKindReview, "love the bot")
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if !sub.Granted {
		t.Fatal("review should not share the suggestion cooldown")
	}
	if !strings.HasPrefix(sub.Feedback.ID, "rev_") {
		t.Fatalf("feedback id = %q, want rev_ prefix", sub.Feedback.ID)
	}

	list, err := st.ListFeedback(ctx)
	if err != nil {
		t.Fatalf("list feedback: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("stored feedback = %d, want 2 (denied submission not stored)", len(list))
	}
}

func TestSubmitRejectsBannedSubject(t *testing.T) {
	clock := newTestClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	bans := newBanServiceForTest(t)
	if err := bans.Ban(42, "spam"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	svc, _ := newFeedbackServiceForTest(clock, bans)

	if _, err := svc.Submit(context.Background(), 42, domain.FeedbackKindReview, "hi"); !errors.Is(err, domain.ErrSubjectBanned) {
		t.Fatalf("submit banned: err = %v, want ErrSubjectBanned", err)
	}
}

func TestThankIsIdempotent(t *testing.T) {
	clock := newTestClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newFeedbackServiceForTest(clock, nil)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, 42, domain.FeedbackKindSuggestion, "dark mode please")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	thanked, err := svc.Thank(ctx, sub.Feedback.ID)
	if err != nil {
		t.Fatalf("thank: %v", err)
	}
	if !thanked.Thanked {
		t.Fatal("feedback not marked thanked")
	}
	again, err := svc.Thank(ctx, sub.Feedback.ID)
	if err != nil {
		t.Fatalf("second thank: %v", err)
	}
	if !again.Thanked {
		t.Fatal("second thank lost the flag")
	}

	if _, err := svc.Thank(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("thank missing: err = %v, want ErrNotFound", err)
	}
}
