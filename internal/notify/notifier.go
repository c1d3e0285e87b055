package notify

import "context"

// Notifier delivers a templated message to a recipient. Failures are
// reported to the caller, not retried here; retry policy belongs to the
// implementation behind the transport.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, templateKey string, params map[string]string) error
}
