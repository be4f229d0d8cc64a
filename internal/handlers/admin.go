// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/store"
)

// Invalidator drops cached templates. *engine.Engine satisfies it.
type Invalidator interface {
	InvalidateTemplate(ctx context.Context, path string)
	InvalidateAllTemplates(ctx context.Context)
}

// InvalidationLog records cache invalidations. *store.CacheLogStore
// satisfies it.
type InvalidationLog interface {
	Log(ctx context.Context, entityType, entityKey, action, source string)
}

// InvalidationHistory lists recorded invalidations. *store.CacheLogStore
// satisfies it.
type InvalidationHistory interface {
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// Recent invalidation listing bounds.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Admin groups the operator endpoints.
type Admin struct {
	inv     Invalidator
	log     InvalidationLog
	history InvalidationHistory
}

// NewAdmin creates the admin handler group. log and history may be nil
// when no database is configured.
func NewAdmin(inv Invalidator, log InvalidationLog, history InvalidationHistory) *Admin {
	return &Admin{inv: inv, log: log, history: history}
}

type invalidateRequest struct {
	Path string `json:"path"`
	All  bool   `json:"all"`
}

// InvalidateTemplates handles POST /admin/templates/invalidate. The body is
// {"path": "templates/pages/product.html"} for a single template or
// {"all": true} for the whole theme.
func (a *Admin) InvalidateTemplates(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	req.Path = strings.TrimSpace(req.Path)

	ctx := r.Context()
	var entityType, key string
	switch {
	case req.All:
		a.inv.InvalidateAllTemplates(ctx)
		entityType, key = "theme", "*"
	case req.Path != "":
		a.inv.InvalidateTemplate(ctx, req.Path)
		entityType, key = "template", req.Path
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `either "path" or "all" is required`})
		return
	}

	if a.log != nil {
		a.log.Log(ctx, entityType, key, "invalidate", "admin")
	}
	slog.Info("templates invalidated",
		"scope", entityType,
		"key", key,
		"request_id", middleware.RequestIDFromCtx(ctx),
	)
	writeJSON(w, http.StatusOK, map[string]any{"invalidated": key, "scope": entityType})
}

// RecentInvalidations handles GET /admin/templates/invalidations?limit=N.
func (a *Admin) RecentInvalidations(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "invalidation history needs a database"})
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := a.history.RecentEntries(r.Context(), limit)
	if err != nil {
		slog.Error("list invalidations failed", "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list invalidations"})
		return
	}
	if entries == nil {
		entries = []store.CacheLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
