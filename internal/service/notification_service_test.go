package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/alert"
	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/events"
	"github.com/support-kit/helpdesk-bot/internal/notify"
)

func publishClosed(t *testing.T, dispatcher events.Dispatcher, reason domain.CloseReason) {
	t.Helper()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketClosed,
		TicketID:  "tid-1",
		Actor:     domain.ActorAdmin,
		Timestamp: time.Now(),
		Payload: events.TicketClosedPayload{
			Ref:       "T-AAAA0001",
			SubjectID: 42,
			Reason:    reason,
			Waited:    24 * time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func newNotificationFixture() (events.Dispatcher, *captureNotifier) {
	dispatcher := events.NewInMemoryDispatcher()
	notifier := &captureNotifier{}
	logger := zap.NewNop()
	alerts := alert.NewService(alert.NewThrottle(nil), notifier, logger, alert.Config{
		Enabled:     true,
		RecipientID: adminChatID,
		Window:      5 * time.Minute,
	})
	NewNotificationService(dispatcher, notifier, alerts, adminChatID, logger).RegisterHandlers()
	return dispatcher, notifier
}

func TestManualCloseNotifiesUserOnly(t *testing.T) {
	dispatcher, notifier := newNotificationFixture()

	publishClosed(t, dispatcher, domain.CloseReasonManual)

	sent := notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(sent))
	}
	if sent[0].RecipientID != 42 || sent[0].TemplateKey != notify.TemplateTicketClosedUser {
		t.Fatalf("sent = %+v", sent[0])
	}
}

func TestAutoCloseNotifiesUserAndAdmin(t *testing.T) {
	dispatcher, notifier := newNotificationFixture()

	publishClosed(t, dispatcher, domain.CloseReasonAuto)

	sent := notifier.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent = %d messages, want 2", len(sent))
	}
	if sent[0].RecipientID != 42 || sent[0].TemplateKey != notify.TemplateTicketAutoClosedUser {
		t.Fatalf("user message = %+v", sent[0])
	}
	if sent[1].RecipientID != adminChatID || sent[1].TemplateKey != notify.TemplateTicketAutoClosedAdmin {
		t.Fatalf("admin message = %+v", sent[1])
	}
	if sent[1].Params["waited"] != "24h0m0s" {
		t.Fatalf("waited = %q", sent[1].Params["waited"])
	}
}

func TestUserMessageRoutesToAdminAndBack(t *testing.T) {
	dispatcher, notifier := newNotificationFixture()
	ctx := context.Background()

	_ = dispatcher.Publish(ctx, events.Event{
		Type: events.EventTicketMessageAdded,
		Payload: events.TicketMessageAddedPayload{
			Ref: "T-AAAA0001", SubjectID: 42,
			Sender: domain.ActorUser, Text: "still broken",
		},
	})
	_ = dispatcher.Publish(ctx, events.Event{
		Type: events.EventTicketMessageAdded,
		Payload: events.TicketMessageAddedPayload{
			Ref: "T-AAAA0001", SubjectID: 42,
			Sender: domain.ActorAdmin, Text: "on it",
		},
	})

	sent := notifier.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(sent))
	}
	if sent[0].RecipientID != adminChatID || sent[0].TemplateKey != notify.TemplateTicketMessageAdmin {
		t.Fatalf("user->admin message = %+v", sent[0])
	}
	if sent[1].RecipientID != 42 || sent[1].TemplateKey != notify.TemplateTicketReplyUser {
		t.Fatalf("admin->user message = %+v", sent[1])
	}
}

func TestDeliveryFailureDoesNotPropagate(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	notifier := &captureNotifier{fail: errors.New("telegram down")}
	logger := zap.NewNop()
	alerts := alert.NewService(alert.NewThrottle(nil), notifier, logger, alert.Config{
		Enabled:     true,
		RecipientID: adminChatID,
		Window:      5 * time.Minute,
	})
	NewNotificationService(dispatcher, notifier, alerts, adminChatID, logger).RegisterHandlers()

	// Publish must not error even though every send fails, including the
	// alert about the failed send.
	publishClosed(t, dispatcher, domain.CloseReasonAuto)
}
