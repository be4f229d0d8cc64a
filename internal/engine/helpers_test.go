// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

// writeTheme lays out files (logical path -> contents) under a fresh temp
// directory and returns its root.
func writeTheme(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for p, body := range files {
		writeFile(t, root, p, body)
	}
	return root
}

func writeFile(t *testing.T, root, p, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(p))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

// touch rewrites a file and pushes its modification time forward so the
// change is visible even on filesystems with coarse timestamps.
func touch(t *testing.T, root, p, body string, ahead time.Duration) {
	t.Helper()
	writeFile(t, root, p, body)
	future := time.Now().Add(ahead)
	require.NoError(t, os.Chtimes(filepath.Join(root, filepath.FromSlash(p)), future, future))
}

func removeFile(root, p string) error {
	return os.Remove(filepath.Join(root, filepath.FromSlash(p)))
}

var fixedNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeCatalog is an in-memory Catalog.
type fakeCatalog struct {
	settings   *models.StoreSettings
	categories []models.Category
	products   []models.Product
	banners    []models.Banner
	pages      map[string]*models.Page
	err        error

	mu    sync.Mutex
	calls map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		settings: &models.StoreSettings{
			Name:           "Acme Goods",
			Email:          "shop@acme.test",
			URL:            "https://acme.test",
			CurrencySymbol: "$",
			CurrencyCode:   "USD",
		},
		pages: map[string]*models.Page{},
		calls: map[string]int{},
	}
}

func (f *fakeCatalog) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeCatalog) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalog) StoreSettings(context.Context) (*models.StoreSettings, error) {
	f.record("StoreSettings")
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func (f *fakeCatalog) Categories(_ context.Context, limit int) ([]models.Category, error) {
	f.record("Categories")
	if f.err != nil {
		return nil, f.err
	}
	return f.categories[:min(limit, len(f.categories))], nil
}

func (f *fakeCatalog) Category(_ context.Context, id string) (*models.Category, error) {
	f.record("Category")
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, f.err
}

func (f *fakeCatalog) Product(_ context.Context, id string) (*models.Product, error) {
	f.record("Product")
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, f.err
}

func (f *fakeCatalog) Products(_ context.Context, filter models.ProductFilter, limit int) ([]models.Product, error) {
	f.record("Products")
	var out []models.Product
	for _, p := range f.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out[:min(limit, len(out))], f.err
}

func (f *fakeCatalog) SearchProducts(_ context.Context, query string, limit int) ([]models.Product, error) {
	f.record("SearchProducts")
	var out []models.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out[:min(limit, len(out))], f.err
}

func (f *fakeCatalog) Banners(_ context.Context, limit int) ([]models.Banner, error) {
	f.record("Banners")
	return f.banners[:min(limit, len(f.banners))], f.err
}

func (f *fakeCatalog) PageBySlug(_ context.Context, slug string) (*models.Page, error) {
	f.record("PageBySlug")
	if p, ok := f.pages[slug]; ok {
		return p, nil
	}
	return nil, f.err
}

// mapOutputCache is an OutputCache backed by a map.
type mapOutputCache struct {
	mu      sync.Mutex
	entries map[string]string
	clears  int
}

func newMapOutputCache() *mapOutputCache {
	return &mapOutputCache{entries: map[string]string{}}
}

func (c *mapOutputCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapOutputCache) Set(_ context.Context, key, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = html
}

func (c *mapOutputCache) Clear(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]string{}
	c.clears++
}
