package alert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(ctx context.Context, recipientID int64, templateKey string, params map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, templateKey+"|"+params["signature"]+params["suppressed"])
	return nil
}

func TestReportErrorAppendsSuppressedCount(t *testing.T) {
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	notifier := &fakeNotifier{}
	svc := NewService(NewThrottle(now), notifier, zap.NewNop(), Config{
		Enabled:     true,
		RecipientID: 999,
		Window:      5 * time.Minute,
	})
	ctx := context.Background()
	failure := errors.New("connection refused")

	svc.ReportError(ctx, "db.write", failure)
	for i := 0; i < 3; i++ {
		clock = clock.Add(time.Minute)
		svc.ReportError(ctx, "db.write", failure)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("alerts sent = %d, want 1", len(notifier.messages))
	}

	clock = clock.Add(5 * time.Minute)
	svc.ReportError(ctx, "db.write", failure)
	if len(notifier.messages) != 2 {
		t.Fatalf("alerts sent = %d, want 2", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[1], "3 similar errors suppressed") {
		t.Fatalf("second alert = %q, want suppressed count", notifier.messages[1])
	}
}

func TestReportErrorDisabledOnlyLogs(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewService(NewThrottle(nil), notifier, zap.NewNop(), Config{Enabled: false})

	svc.ReportError(context.Background(), "db.write", errors.New("boom"))
	if len(notifier.messages) != 0 {
		t.Fatalf("alerts sent = %d, want 0", len(notifier.messages))
	}
}

func TestLifecycleBannersHonorToggles(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewService(NewThrottle(nil), notifier, zap.NewNop(), Config{
		Enabled:         true,
		RecipientID:     999,
		Window:          5 * time.Minute,
		StartupEnabled:  true,
		ShutdownEnabled: false,
	})
	ctx := context.Background()

	svc.Startup(ctx, StatsSummary{Total: 10, Active: 2, AwaitingAutoClose: 1})
	svc.Shutdown(ctx, StatsSummary{Total: 10, Active: 2})
	if len(notifier.messages) != 1 {
		t.Fatalf("banners sent = %d, want startup only", len(notifier.messages))
	}
}
