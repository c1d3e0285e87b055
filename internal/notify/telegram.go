package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier delivers rendered templates as Telegram messages.
// Outbound sends only; inbound update handling lives outside this
// service.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegramNotifier authorizes against the Bot API with the token.
func NewTelegramNotifier(token string, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info("telegram notifier authorized", zap.String("bot", api.Self.UserName))
	return &TelegramNotifier{api: api, logger: logger}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, recipientID int64, templateKey string, params map[string]string) error {
	msg := tgbotapi.NewMessage(recipientID, Render(templateKey, params))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message to %d: %w", recipientID, err)
	}
	n.logger.Debug("notification sent",
		zap.Int64("recipient_id", recipientID),
		zap.String("template", templateKey))
	return nil
}
