package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/alert"
	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/events"
	"github.com/support-kit/helpdesk-bot/internal/notify"
)

// NotificationService forwards domain events to the notifier. Delivery
// failures are routed to the alert service, never raised back into the
// event path.
type NotificationService struct {
	dispatcher  events.Dispatcher
	notifier    notify.Notifier
	alerts      *alert.Service
	adminChatID int64
	logger      *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, alerts *alert.Service, adminChatID int64, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		notifier:    notifier,
		alerts:      alerts,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketTaken, n.handleTicketTaken)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketMessageAdded)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketRated, n.handleTicketRated)
	n.dispatcher.Subscribe(events.EventFeedbackReceived, n.handleFeedbackReceived)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.send(ctx, n.adminChatID, notify.TemplateTicketCreatedAdmin, map[string]string{
		"ref":        payload.Ref,
		"subject_id": strconv.FormatInt(payload.SubjectID, 10),
		"text":       payload.Text,
	})
	return nil
}

func (n *NotificationService) handleTicketTaken(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketTakenPayload)
	if !ok {
		return nil
	}
	n.send(ctx, payload.SubjectID, notify.TemplateTicketTakenUser, map[string]string{
		"ref": payload.Ref,
	})
	return nil
}

func (n *NotificationService) handleTicketMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok {
		return nil
	}
	switch payload.Sender {
	case domain.ActorUser:
		n.send(ctx, n.adminChatID, notify.TemplateTicketMessageAdmin, map[string]string{
			"ref":        payload.Ref,
			"subject_id": strconv.FormatInt(payload.SubjectID, 10),
			"text":       payload.Text,
		})
	case domain.ActorAdmin:
		n.send(ctx, payload.SubjectID, notify.TemplateTicketReplyUser, map[string]string{
			"ref":  payload.Ref,
			"text": payload.Text,
		})
	}
	return nil
}

// handleTicketClosed notifies the subject on every close; an auto-close
// additionally sends the admin a card, with the user message inviting a
// fresh ticket.
func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	if payload.Reason == domain.CloseReasonAuto {
		n.send(ctx, payload.SubjectID, notify.TemplateTicketAutoClosedUser, map[string]string{
			"ref": payload.Ref,
		})
		n.send(ctx, n.adminChatID, notify.TemplateTicketAutoClosedAdmin, map[string]string{
			"ref":    payload.Ref,
			"waited": payload.Waited.Round(time.Second).String(),
		})
		return nil
	}
	n.send(ctx, payload.SubjectID, notify.TemplateTicketClosedUser, map[string]string{
		"ref": payload.Ref,
	})
	return nil
}

func (n *NotificationService) handleTicketRated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRatedPayload)
	if !ok {
		return nil
	}
	n.send(ctx, n.adminChatID, notify.TemplateTicketRatedAdmin, map[string]string{
		"ref":        payload.Ref,
		"subject_id": strconv.FormatInt(payload.SubjectID, 10),
		"stars":      strconv.Itoa(payload.Stars),
	})
	return nil
}

func (n *NotificationService) handleFeedbackReceived(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FeedbackReceivedPayload)
	if !ok {
		return nil
	}
	n.send(ctx, n.adminChatID, notify.TemplateFeedbackAdmin, map[string]string{
		"kind":       string(payload.Kind),
		"subject_id": strconv.FormatInt(payload.SubjectID, 10),
		"text":       payload.Text,
	})
	n.send(ctx, payload.SubjectID, notify.TemplateFeedbackThanksUser, map[string]string{
		"kind": string(payload.Kind),
	})
	return nil
}

func (n *NotificationService) send(ctx context.Context, recipientID int64, templateKey string, params map[string]string) {
	if err := n.notifier.Notify(ctx, recipientID, templateKey, params); err != nil {
		n.alerts.ReportError(ctx, "notify."+templateKey,
			fmt.Errorf("recipient %d: %w", recipientID, err))
	}
}
