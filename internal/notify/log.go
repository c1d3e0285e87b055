package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log instead of a transport.
// Used when no Telegram token is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs the notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipientID int64, templateKey string, params map[string]string) error {
	n.logger.Info("notification",
		zap.Int64("recipient_id", recipientID),
		zap.String("template", templateKey),
		zap.String("text", Render(templateKey, params)))
	return nil
}
