// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute

	// DefaultNamespace prefixes every key this service writes to Valkey.
	DefaultNamespace = "storefront"

	clearBatch = 256
)

// PageCache stores rendered page HTML in Valkey, shared by every instance
// that uses the same namespace. Failures are logged and treated as misses;
// the cache never fails a render.
type PageCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPageCache creates a page cache. Keys live under "<namespace>:page:".
func NewPageCache(client *redis.Client, namespace string, ttl time.Duration) *PageCache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, prefix: namespace + ":page:", ttl: ttl}
}

// Key maps an engine output key to its Valkey key. Output keys embed the
// full request URL, so they are hashed to a fixed length.
func (pc *PageCache) Key(outputKey string) string {
	return fmt.Sprintf("%s%016x", pc.prefix, xxhash.Sum64String(outputKey))
}

// Get retrieves cached HTML. A miss or a backend error reports false.
func (pc *PageCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := pc.client.Get(ctx, pc.Key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false
	case err != nil:
		slog.Warn("page cache get failed", "key", key, "error", err)
		return "", false
	}
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key, html string) {
	if err := pc.client.Set(ctx, pc.Key(key), html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set failed", "key", key, "error", err)
	}
}

// Delete removes a single cached page.
func (pc *PageCache) Delete(ctx context.Context, key string) {
	if err := pc.client.Unlink(ctx, pc.Key(key)).Err(); err != nil {
		slog.Warn("page cache delete failed", "key", key, "error", err)
	}
}

// Clear unlinks every page under the namespace. A template change can
// affect any page, so there is no finer-grained invalidation.
func (pc *PageCache) Clear(ctx context.Context) {
	iter := pc.client.Scan(ctx, 0, pc.prefix+"*", clearBatch).Iterator()
	batch := make([]string, 0, clearBatch)
	removed := 0
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := pc.client.Unlink(ctx, batch...).Err(); err != nil {
			slog.Warn("page cache unlink failed", "keys", len(batch), "error", err)
		} else {
			removed += len(batch)
		}
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		slog.Warn("page cache scan failed", "error", err)
		return
	}
	slog.Info("page cache cleared", "prefix", pc.prefix, "removed", removed)
}
