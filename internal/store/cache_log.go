// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// CacheLogStore records cache invalidation events for audit and debugging.
type CacheLogStore struct {
	db *sql.DB
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records an invalidation. Logging is best-effort; failures are only
// reported through slog.
func (s *CacheLogStore) Log(ctx context.Context, entityType, entityKey, action, source string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (entity_type, entity_key, action, source)
		VALUES ($1, $2, $3, $4)
	`, entityType, entityKey, action, source)
	if err != nil {
		slog.Warn("failed to log cache invalidation",
			"entity_type", entityType,
			"entity_key", entityKey,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("cache invalidation logged",
		"entity_type", entityType,
		"entity_key", entityKey,
		"action", action,
		"source", source,
	)
}

// RecentEntries returns the most recent invalidation events, newest first.
func (s *CacheLogStore) RecentEntries(ctx context.Context, limit int) ([]CacheLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, entity_type, entity_key, action, source, created_at
		FROM cache_invalidation_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	var entries []CacheLogEntry
	for rows.Next() {
		var e CacheLogEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityKey, &e.Action, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CacheLogEntry represents a single cache invalidation event.
type CacheLogEntry struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"` // "template" or "theme"
	EntityKey  string    `json:"entity_key"`  // template path, or "*" for everything
	Action     string    `json:"action"`      // "update", "delete", "invalidate"
	Source     string    `json:"source"`      // "watcher" or "admin"
	CreatedAt  time.Time `json:"created_at"`
}
