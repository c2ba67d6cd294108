package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const activityTTL = 30 * 24 * time.Hour

// ActivityTracker records last-login timestamps in Redis.
// Key format: last_login:<username>
type ActivityTracker struct {
	client *redis.Client
}

// NewActivityTracker creates an ActivityTracker wrapping the given Redis client.
func NewActivityTracker(client *redis.Client) *ActivityTracker {
	return &ActivityTracker{client: client}
}

// RecordLogin stores the login instant (expires after activityTTL).
func (t *ActivityTracker) RecordLogin(ctx context.Context, username string, at time.Time) error {
	if err := t.client.Set(ctx, t.key(username), at.UTC().Format(time.RFC3339), activityTTL).Err(); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// LastLogin returns the most recent recorded login, or the zero time when
// none is recorded.
func (t *ActivityTracker) LastLogin(ctx context.Context, username string) (time.Time, error) {
	raw, err := t.client.Get(ctx, t.key(username)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("last login: %w", err)
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("last login: %w", err)
	}
	return at, nil
}

func (t *ActivityTracker) key(username string) string {
	return "last_login:" + username
}
