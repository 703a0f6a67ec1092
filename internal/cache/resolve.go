// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// resolve.go provides a Valkey-backed cache for resolved URL paths.
// Resolving a path walks the category tree and may hit the articles
// table twice, so the serialized result is cached per path. Instead of
// tracking which paths a category or article change affects, every key
// embeds a generation counter that writers bump; stale entries simply
// age out via TTL.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resolveKeyPrefix = "resolve:"
	generationKey    = "resolve:gen"

	// DefaultResolveTTL is how long a resolved path stays cached.
	DefaultResolveTTL = 5 * time.Minute
)

// ResolveCache stores serialized resolution results in Valkey.
type ResolveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResolveCache creates a resolution cache backed by the given Valkey client.
func NewResolveCache(client *redis.Client, ttl time.Duration) *ResolveCache {
	if ttl == 0 {
		ttl = DefaultResolveTTL
	}
	return &ResolveCache{client: client, ttl: ttl}
}

func (rc *ResolveCache) key(ctx context.Context, path string) (string, error) {
	gen, err := rc.client.Get(ctx, generationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s", resolveKeyPrefix, gen, path), nil
}

// Get retrieves the cached serialized result for a path. Returns false on
// miss or when Valkey is unreachable; resolution falls through to the DB.
func (rc *ResolveCache) Get(ctx context.Context, path string) ([]byte, bool) {
	key, err := rc.key(ctx, path)
	if err != nil {
		slog.Warn("resolve cache generation read error", "error", err)
		return nil, false
	}
	val, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("resolve cache get error", "path", path, "error", err)
		return nil, false
	}
	slog.Debug("resolve cache hit", "path", path)
	return val, true
}

// Set stores a serialized resolution result for a path with the configured TTL.
func (rc *ResolveCache) Set(ctx context.Context, path string, payload []byte) {
	key, err := rc.key(ctx, path)
	if err != nil {
		slog.Warn("resolve cache generation read error", "error", err)
		return
	}
	if err := rc.client.Set(ctx, key, payload, rc.ttl).Err(); err != nil {
		slog.Warn("resolve cache set error", "path", path, "error", err)
	}
}

// Invalidate bumps the generation counter, orphaning every cached entry.
// Called after any category or article write. Orphaned keys expire on
// their own TTL.
func (rc *ResolveCache) Invalidate(ctx context.Context) {
	if err := rc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("resolve cache invalidate error", "error", err)
		return
	}
	slog.Debug("resolve cache invalidated")
}
