package repo_interfaces

import (
	"context"
	"time"
)

// AlertRepository remembers which suspicious-activity alerts have been raised, so a
// scan run from any process raises each alert once.
type AlertRepository interface {
	// MarkRaised records key and reports whether it had not been recorded before.
	MarkRaised(ctx context.Context, key string, accountNumber string, at time.Time) (bool, error)
}
