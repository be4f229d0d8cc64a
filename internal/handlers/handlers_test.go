// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"storefront/internal/engine"
)

// writeTheme lays out files (logical path -> contents) under a temp dir.
func writeTheme(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for p, body := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return root
}

func basicTheme() map[string]string {
	return map[string]string{
		"wrapper.html":                 `<html><head>[%head_includes%]</head><body>[%content%]</body></html>`,
		"templates/partials/head.html": `<link href="css/site.css" rel="stylesheet">`,
		"templates/pages/home.html":    `<h1>[@store_name@]</h1>`,
		"templates/pages/search.html":  `<p>Results for [@search_query@]</p>`,
		"css/site.css":                 `body{margin:0}`,
		"templates/pages/cart.html":    `secret template`,
	}
}

// newEngine builds an engine over files with no catalog.
func newEngine(t *testing.T, files map[string]string, debug bool) *engine.Engine {
	t.Helper()
	return engine.New(nil, engine.Options{ThemeDir: writeTheme(t, files), Debug: debug})
}

type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
	all   int
}

func (r *recordingInvalidator) InvalidateTemplate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingInvalidator) InvalidateAllTemplates(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all++
}

type logEntry struct{ entityType, key, action, source string }

type recordingLog struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLog) Log(_ context.Context, entityType, entityKey, action, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{entityType, entityKey, action, source})
}
