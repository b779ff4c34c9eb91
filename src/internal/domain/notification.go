package domain

import "context"

type NotificationKind string

const (
	NotificationLowBalance                 NotificationKind = "LOW_BALANCE"
	NotificationAccountClosedInactivity    NotificationKind = "ACCOUNT_CLOSED_INACTIVITY"
	NotificationSuspiciousLargeTransaction NotificationKind = "SUSPICIOUS_LARGE_TRANSACTION"
	NotificationSuspiciousVelocity         NotificationKind = "SUSPICIOUS_VELOCITY"
)

// Notifier delivers a message to a customer. Callers treat delivery as fire-and-forget:
// a returned error is logged and never undoes the operation that raised it.
type Notifier interface {
	Notify(ctx context.Context, recipient string, kind NotificationKind, title string, body string) error
}

type Notification struct {
	Recipient string           `json:"recipient"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
}
