package notification

import (
	"context"
	"errors"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

// FanoutNotifier delivers to every sink and joins their errors.
type FanoutNotifier []domain.Notifier

var _ domain.Notifier = FanoutNotifier(nil)

func (f FanoutNotifier) Notify(ctx context.Context, recipient string, kind domain.NotificationKind, title string, body string) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Notify(ctx, recipient, kind, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
