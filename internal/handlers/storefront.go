// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the storefront: page
// rendering through the theme engine, theme asset serving and the admin
// cache invalidation endpoint.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/engine"
	"storefront/internal/middleware"
	"storefront/internal/render"
)

// Storefront renders every public page through the theme engine.
type Storefront struct {
	engine *engine.Engine
	pages  *render.Renderer
}

// NewStorefront creates the storefront page handler.
func NewStorefront(eng *engine.Engine) *Storefront {
	return &Storefront{engine: eng, pages: render.MustNew()}
}

// ServeHTTP renders the page for the request URL. Query parameters are
// passed to the engine as page parameters; the first value of a repeated
// key wins.
func (s *Storefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string, len(r.URL.Query()))
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	out, dbg, err := s.engine.RenderPage(r.Context(), r.URL.RequestURI(), params, nil, nil)
	for k, v := range dbg.Headers() {
		w.Header().Set(k, v)
	}
	if err != nil {
		reqID := middleware.RequestIDFromCtx(r.Context())
		slog.Error("storefront render failed",
			"error", err,
			"url", r.URL.RequestURI(),
			"request_id", reqID,
		)
		msg := "This page could not be rendered."
		if errors.Is(err, engine.ErrNoWrapper) {
			msg = "The store theme has no layout wrapper."
		}
		s.pages.Error(w, render.ErrorData{
			Status:    http.StatusInternalServerError,
			Title:     "Store unavailable",
			Message:   msg,
			RequestID: reqID,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}
