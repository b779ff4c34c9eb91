package notification

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

// LogNotifier writes notifications to the structured log. It is the default sink.
type LogNotifier struct{}

var _ domain.Notifier = LogNotifier{}

func (LogNotifier) Notify(_ context.Context, recipient string, kind domain.NotificationKind, title string, body string) error {
	logger.Info("notification", logger.Fields{
		"recipient": recipient,
		"kind":      kind,
		"title":     title,
		"body":      body,
	})
	return nil
}
