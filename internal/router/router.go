// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// storefront: public pages, theme assets, health, metrics and the admin
// invalidation endpoint.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
)

// Config holds the routing inputs that are not handlers.
type Config struct {
	// ThemeDir is served under AssetBaseURL when that is a local path.
	ThemeDir     string
	AssetBaseURL string
	// AdminToken guards /admin; empty disables the admin routes.
	AdminToken string
	// AdminLimiter throttles admin calls; nil means unlimited.
	AdminLimiter *middleware.RateLimiter
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// New creates the chi router with all middleware and routes wired up.
func New(cfg Config, storefront *handlers.Storefront, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/admin", func(r chi.Router) {
		if cfg.AdminLimiter != nil {
			r.Use(cfg.AdminLimiter.Middleware)
		}
		r.Use(middleware.RequireBearer(cfg.AdminToken))
		r.Post("/templates/invalidate", admin.InvalidateTemplates)
		r.Get("/templates/invalidations", admin.RecentInvalidations)
	})

	// Theme assets, unless they live on another host.
	if base := strings.TrimSuffix(cfg.AssetBaseURL, "/"); strings.HasPrefix(base, "/") && cfg.ThemeDir != "" {
		r.Handle(base+"/*", http.StripPrefix(base, handlers.Assets(cfg.ThemeDir)))
	}

	// Everything else is a storefront page.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SecureHeaders)
		r.Get("/*", storefront.ServeHTTP)
		r.Head("/*", storefront.ServeHTTP)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
