// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders storefront pages from a theme directory. A page is
// composed from a layout wrapper, head/header/footer partials and a
// page-body template, then run through include expansion, loop,
// conditional and data-tag passes, and asset path rewriting.
//
// The engine keeps two caches: an L1 cache of raw theme files (see
// TemplateStore) and an optional output cache of fully rendered pages.
package engine

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/metrics"
)

// OutputCache stores fully rendered pages. Implementations must be safe for
// concurrent use; a lost write is acceptable.
type OutputCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, html string)
	Clear(ctx context.Context)
}

// Options configures an Engine.
type Options struct {
	ThemeDir           string
	AssetBaseURL       string // absolute URL prefix theme assets are served from
	TemplateCacheSize  int
	MaxIncludeDepth    int
	Debug              bool // collect DebugInfo and bypass the output cache
	DiagnosticComments bool // render missing templates as HTML comments
	Clock              func() time.Time
}

// Engine renders storefront pages. It is safe for concurrent use; every
// render owns its own context, include stack and debug record.
type Engine struct {
	opts      Options
	templates *TemplateStore
	selector  *TemplateSelector
	contexts  *ContextBuilder
	now       func() time.Time

	// Optional collaborators, nil when not configured.
	output  OutputCache
	metrics *metrics.Recorder
}

// New creates an engine reading the theme at opts.ThemeDir and page data
// from catalog.
func New(catalog Catalog, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if opts.AssetBaseURL == "" {
		opts.AssetBaseURL = "/assets"
	}
	templates := NewTemplateStore(opts.ThemeDir, opts.TemplateCacheSize, opts.DiagnosticComments)
	return &Engine{
		opts:      opts,
		templates: templates,
		selector:  NewTemplateSelector(templates),
		contexts:  NewContextBuilder(catalog, opts.Clock),
		now:       opts.Clock,
	}
}

// SetOutputCache enables caching of rendered pages.
func (e *Engine) SetOutputCache(c OutputCache) {
	e.output = c
}

// SetMetrics attaches a metrics recorder.
func (e *Engine) SetMetrics(r *metrics.Recorder) {
	e.metrics = r
}

// Templates exposes the template store, mainly for tests and tooling.
func (e *Engine) Templates() *TemplateStore {
	return e.templates
}

// Debug reports whether renders collect DebugInfo.
func (e *Engine) Debug() bool {
	return e.opts.Debug
}

// InvalidateTemplate drops one theme file from the L1 cache. Any rendered
// page may depend on it, so the whole output cache is cleared as well.
func (e *Engine) InvalidateTemplate(ctx context.Context, path string) {
	e.templates.Invalidate(path)
	e.clearOutput(ctx)
}

// InvalidateAllTemplates clears the L1 cache and the output cache.
func (e *Engine) InvalidateAllTemplates(ctx context.Context) {
	e.templates.InvalidateAll()
	e.clearOutput(ctx)
}

func (e *Engine) clearOutput(ctx context.Context) {
	if e.output == nil {
		return
	}
	e.output.Clear(ctx)
	slog.Debug("output cache cleared after template invalidation")
}

// readTemplate reads through the template store, recording the cache
// outcome on the render's debug record and in metrics.
func (e *Engine) readTemplate(p string, dbg *DebugInfo) string {
	text, hit := e.templates.Read(p)
	dbg.recordRead(hit)
	e.metrics.ObserveTemplateRead(hit)
	return text
}
