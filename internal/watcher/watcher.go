// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package watcher invalidates cached theme templates when files under the
// theme directory change on disk.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Invalidator drops cached templates. *engine.Engine satisfies it.
type Invalidator interface {
	InvalidateTemplate(ctx context.Context, path string)
	InvalidateAllTemplates(ctx context.Context)
}

// InvalidationLog records invalidations. *store.CacheLogStore satisfies it.
type InvalidationLog interface {
	Log(ctx context.Context, entityType, entityKey, action, source string)
}

// ThemeWatcher watches a theme directory tree.
type ThemeWatcher struct {
	root     string
	inv      Invalidator
	log      InvalidationLog
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New creates a watcher over every directory below root. log may be nil.
func New(root string, inv Invalidator, log InvalidationLog, debounce time.Duration) (*ThemeWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	w := &ThemeWatcher{root: root, inv: inv, log: log, debounce: debounce, fsw: fsw}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *ThemeWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != dir {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watcher: watch %s: %w", p, err)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled, then releases the
// underlying watcher.
func (w *ThemeWatcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	slog.Info("theme watcher started", "root", w.root)

	pending := map[string]fsnotify.Op{}
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn("theme watcher could not follow new directory", "dir", ev.Name, "error", err)
					}
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			pending[ev.Name] |= ev.Op
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("theme watcher error", "error", err)

		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

// flush invalidates every changed file. A change the watcher cannot map to
// a template path drops the whole cache.
func (w *ThemeWatcher) flush(ctx context.Context, pending map[string]fsnotify.Op) {
	paths := make([]string, 0, len(pending))
	for name := range pending {
		paths = append(paths, name)
	}
	sort.Strings(paths)

	for _, name := range paths {
		logical, ok := w.logicalPath(name)
		if !ok {
			w.inv.InvalidateAllTemplates(ctx)
			w.record(ctx, "theme", "*", "invalidate")
			slog.Info("theme changed outside root, cleared template cache", "file", name)
			return
		}
		action := "update"
		if pending[name].Has(fsnotify.Remove) || pending[name].Has(fsnotify.Rename) {
			action = "delete"
		}
		w.inv.InvalidateTemplate(ctx, logical)
		w.record(ctx, "template", logical, action)
		slog.Info("template invalidated", "path", logical, "action", action)
	}
}

// logicalPath maps a filesystem path to the theme-relative slash path the
// engine caches under.
func (w *ThemeWatcher) logicalPath(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *ThemeWatcher) record(ctx context.Context, entityType, key, action string) {
	if w.log != nil {
		w.log.Log(ctx, entityType, key, action, "watcher")
	}
}
