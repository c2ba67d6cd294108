package ports

import (
	"context"
	"time"
)

// ActivityTracker records login activity. Implementations are best-effort:
// callers treat failures as non-fatal.
type ActivityTracker interface {
	RecordLogin(ctx context.Context, username string, at time.Time) error
	LastLogin(ctx context.Context, username string) (time.Time, error)
}
