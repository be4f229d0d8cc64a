// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"wrapper.html", "wrapper.html"},
		{"/templates/pages/home.html", "templates/pages/home.html"},
		{"templates/../wrapper.html", "wrapper.html"},
		{"../../etc/passwd", "etc/passwd"},
		{`templates\partials\head.html`, "templates/partials/head.html"},
		{"  ./a.html ", "a.html"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPath(tt.in))
		})
	}
}

func TestTemplateStore_ReadCachesUntilModified(t *testing.T) {
	root := writeTheme(t, map[string]string{"a.html": "first"})
	s := NewTemplateStore(root, 0, false)

	text, hit := s.Read("a.html")
	assert.Equal(t, "first", text)
	assert.False(t, hit, "first read comes from disk")

	text, hit = s.Read("/a.html")
	assert.Equal(t, "first", text)
	assert.True(t, hit, "second read is served from cache")

	touch(t, root, "a.html", "second", time.Hour)
	text, hit = s.Read("a.html")
	assert.Equal(t, "second", text)
	assert.False(t, hit, "newer modification time invalidates the entry")

	hits, misses := s.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestTemplateStore_Missing(t *testing.T) {
	root := writeTheme(t, nil)

	plain := NewTemplateStore(root, 0, false)
	text, hit := plain.Read("nope.html")
	assert.Empty(t, text)
	assert.False(t, hit)
	assert.False(t, plain.Exists("nope.html"))

	diag := NewTemplateStore(root, 0, true)
	text, _ = diag.Read("nope.html")
	assert.Equal(t, "<!-- template not found: nope.html -->", text)
}

func TestTemplateStore_DeletedFileIsForgotten(t *testing.T) {
	root := writeTheme(t, map[string]string{"a.html": "x"})
	s := NewTemplateStore(root, 0, false)
	s.Read("a.html")
	require.Equal(t, 1, s.Len())

	require.NoError(t, removeFile(root, "a.html"))
	text, _ := s.Read("a.html")
	assert.Empty(t, text)
	assert.Equal(t, 0, s.Len())
}

func TestTemplateStore_Invalidate(t *testing.T) {
	root := writeTheme(t, map[string]string{"a.html": "a", "b.html": "b"})
	s := NewTemplateStore(root, 0, false)
	s.Read("a.html")
	s.Read("b.html")

	fp, ok := s.CachedFingerprint("a.html")
	require.True(t, ok)
	assert.Equal(t, Fingerprint("a"), fp)

	s.Invalidate("/a.html")
	_, ok = s.CachedFingerprint("a.html")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	s.InvalidateAll()
	assert.Equal(t, 0, s.Len())
}

func TestTemplateStore_EvictsOldestAtCapacity(t *testing.T) {
	files := map[string]string{}
	for i := range 3 {
		files[fmt.Sprintf("t%d.html", i)] = fmt.Sprint(i)
	}
	root := writeTheme(t, files)
	// Distinct modification times, t0 oldest.
	for i := range 3 {
		touch(t, root, fmt.Sprintf("t%d.html", i), fmt.Sprint(i), time.Duration(i+1)*time.Minute)
	}

	s := NewTemplateStore(root, 2, false)
	s.Read("t0.html")
	s.Read("t1.html")
	s.Read("t2.html")

	assert.Equal(t, 2, s.Len())
	_, ok := s.CachedFingerprint("t0.html")
	assert.False(t, ok, "oldest entry evicted")
	_, ok = s.CachedFingerprint("t2.html")
	assert.True(t, ok)
}

func TestFingerprint(t *testing.T) {
	assert.Len(t, Fingerprint("hello"), 16)
	assert.Equal(t, Fingerprint("hello"), Fingerprint("hello"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("hello!"))
}
