// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the PostgreSQL-backed data access used by the
// storefront: the read-only catalog the renderer draws from and the cache
// invalidation log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// CatalogStore reads store settings, categories, products, banners and CMS
// pages. Point lookups return (nil, nil) when nothing matches.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a new CatalogStore with the given database connection.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// StoreSettings returns the single settings row, or nil before seeding.
func (s *CatalogStore) StoreSettings(ctx context.Context) (*models.StoreSettings, error) {
	st := &models.StoreSettings{}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, phone, address, url, currency_symbol, currency_code
		FROM store_settings WHERE id = 1
	`).Scan(&st.Name, &st.Email, &st.Phone, &st.Address, &st.URL, &st.CurrencySymbol, &st.CurrencyCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find store settings: %w", err)
	}
	return st, nil
}

const categoryColumns = `id, name, slug, description, image, sort_order`

func scanCategory(row interface{ Scan(...any) error }, c *models.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.SortOrder)
}

// Categories returns up to limit categories in display order.
func (s *CatalogStore) Categories(ctx context.Context, limit int) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY sort_order, name
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Category finds a category by ID or slug.
func (s *CatalogStore) Category(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := scanCategory(s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories WHERE id = $1 OR slug = $1
		LIMIT 1
	`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

const productColumns = `id, name, sku, slug, description, price, compare_price, stock, image,
		       COALESCE(category_id, ''), created_at`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Slug, &p.Description, &p.Price, &p.ComparePrice,
		&p.Stock, &p.Image, &p.CategoryID, &p.CreatedAt,
	)
}

func (s *CatalogStore) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Product finds a product by ID or slug.
func (s *CatalogStore) Product(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = $1 OR slug = $1
		LIMIT 1
	`, id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// Products lists the newest products matching filter.
func (s *CatalogStore) Products(ctx context.Context, filter models.ProductFilter, limit int) ([]models.Product, error) {
	items, err := s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR category_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $2
	`, filter.CategoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// SearchProducts runs a full-text search over name, SKU and description,
// falling back to a substring match on the name.
func (s *CatalogStore) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	items, err := s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE search @@ plainto_tsquery('simple', $1)
		   OR name ILIKE '%' || $1 || '%'
		ORDER BY ts_rank(search, plainto_tsquery('simple', $1)) DESC, name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return items, nil
}

// Banners returns active banners in display order.
func (s *CatalogStore) Banners(ctx context.Context, limit int) ([]models.Banner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, title, text, image, url, sort_order
		FROM banners
		WHERE active
		ORDER BY sort_order
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var items []models.Banner
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.Text, &b.Image, &b.URL, &b.SortOrder); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// PageBySlug finds a published CMS page.
func (s *CatalogStore) PageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	p := &models.Page{}
	var blocks []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id::text, slug, title, content, meta_description, image, blocks, updated_at
		FROM pages WHERE slug = $1 AND published
	`, slug).Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.MetaDescription, &p.Image, &blocks, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	if len(blocks) > 0 {
		if err := json.Unmarshal(blocks, &p.Blocks); err != nil {
			return nil, fmt.Errorf("decode page %s blocks: %w", slug, err)
		}
	}
	return p, nil
}
