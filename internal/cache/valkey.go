// Package cache connects to Valkey and caches resolved URL paths so the
// public catch-all endpoint does not hit Postgres on every hit.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// ConnectValkey dials Valkey and verifies it answers before the server
// starts taking traffic.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
