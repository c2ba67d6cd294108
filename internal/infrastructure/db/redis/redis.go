package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

// Config holds the connection settings for the activity store.
type Config struct {
	Addr string
	DB   int
	// PingTimeout bounds the startup connectivity check; zero means
	// defaultPingTimeout.
	PingTimeout time.Duration
}

// Connect opens a Redis client and fails fast when the server is not
// reachable, so a misconfigured address is caught at startup rather than
// on the first login.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		DialTimeout: defaultPingTimeout,
	})

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
