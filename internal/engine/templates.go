// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// templates.go provides the L1 template cache. Theme files are read from
// disk on demand and kept in memory keyed by their logical path. Every read
// stats the file so an edit (newer modification time) is picked up on the
// next request without an explicit invalidation.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultTemplateCacheSize bounds the number of cached theme files.
const DefaultTemplateCacheSize = 512

// templateEntry is one cached theme file.
type templateEntry struct {
	text        string
	modTime     time.Time
	fingerprint string
}

// TemplateStore reads theme templates by logical path (relative to the theme
// root) and caches their contents. It is safe for concurrent use.
type TemplateStore struct {
	root       string
	capacity   int
	diagnostic bool

	mu      sync.RWMutex
	entries map[string]templateEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTemplateStore creates a store rooted at the given theme directory.
// A non-positive capacity falls back to DefaultTemplateCacheSize. When
// diagnostic is set, missing files render as an HTML comment instead of
// an empty string.
func NewTemplateStore(root string, capacity int, diagnostic bool) *TemplateStore {
	if capacity <= 0 {
		capacity = DefaultTemplateCacheSize
	}
	return &TemplateStore{
		root:       root,
		capacity:   capacity,
		diagnostic: diagnostic,
		entries:    make(map[string]templateEntry),
	}
}

// Root returns the theme directory the store reads from.
func (s *TemplateStore) Root() string {
	return s.root
}

// CleanPath normalizes a logical template path. Leading separators and ".."
// segments cannot climb above the theme root.
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (s *TemplateStore) filename(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Read returns the text of the template at p and whether it was served from
// cache. A missing or unreadable file yields an empty string (or a
// diagnostic comment) rather than an error.
func (s *TemplateStore) Read(p string) (string, bool) {
	key := CleanPath(p)
	if key == "" {
		s.misses.Add(1)
		return s.missingText(p), false
	}

	info, err := os.Stat(s.filename(key))
	if err != nil || info.IsDir() {
		s.forget(key)
		s.misses.Add(1)
		return s.missingText(key), false
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if ok && !info.ModTime().After(entry.modTime) {
		s.hits.Add(1)
		return entry.text, true
	}
	if ok {
		slog.Debug("template cache stale", "path", key, "cached", entry.modTime, "disk", info.ModTime())
		s.forget(key)
	}

	data, err := os.ReadFile(s.filename(key))
	if err != nil {
		slog.Warn("template read failed", "path", key, "error", err)
		s.misses.Add(1)
		return s.missingText(key), false
	}

	text := string(data)
	s.put(key, templateEntry{
		text:        text,
		modTime:     info.ModTime(),
		fingerprint: Fingerprint(text),
	})
	s.misses.Add(1)
	return text, false
}

// Exists reports whether a regular file exists at the logical path.
func (s *TemplateStore) Exists(p string) bool {
	key := CleanPath(p)
	if key == "" {
		return false
	}
	info, err := os.Stat(s.filename(key))
	return err == nil && !info.IsDir()
}

// CachedFingerprint returns the content fingerprint recorded for p, if cached.
func (s *TemplateStore) CachedFingerprint(p string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[CleanPath(p)]
	return entry.fingerprint, ok
}

// Invalidate drops a single cached template.
func (s *TemplateStore) Invalidate(p string) {
	s.forget(CleanPath(p))
	slog.Debug("template cache invalidated", "path", CleanPath(p))
}

// InvalidateAll clears every cached template.
func (s *TemplateStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]templateEntry)
	slog.Debug("template cache fully cleared")
}

// Len returns the number of cached templates.
func (s *TemplateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns the lifetime hit and miss counts.
func (s *TemplateStore) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

func (s *TemplateStore) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// put stores an entry, evicting the entry with the oldest modification time
// when the cache is full.
func (s *TemplateStore) put(key string, entry templateEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.entries {
			if oldestKey == "" || e.modTime.Before(oldest) {
				oldestKey, oldest = k, e.modTime
			}
		}
		delete(s.entries, oldestKey)
		slog.Debug("template cache evicted", "path", oldestKey)
	}
	s.entries[key] = entry
}

func (s *TemplateStore) missingText(p string) string {
	if !s.diagnostic {
		return ""
	}
	return fmt.Sprintf("<!-- template not found: %s -->", p)
}

// Fingerprint returns a short content hash used to detect changes
// independently of modification times.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}
