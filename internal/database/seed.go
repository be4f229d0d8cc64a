// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"storefront/internal/models"
	"storefront/internal/slug"
)

type seedProduct struct {
	id, name, sku, category, description string
	price, comparePrice                  float64
	stock                                int
}

var (
	seedCategories = []models.Category{
		{ID: "apparel", Name: "Apparel", Description: "Shirts, hoodies and caps.", SortOrder: 1},
		{ID: "home", Name: "Home & Living", Description: "Mugs, prints and cushions.", SortOrder: 2},
	}

	seedProducts = []seedProduct{
		{"tee-classic", "Classic Tee", "TEE-001", "apparel", "<p>Soft cotton tee.</p>", 19.99, 24.99, 40},
		{"hoodie-zip", "Zip Hoodie", "HOD-002", "apparel", "<p>Midweight fleece.</p>", 49.00, 0, 12},
		{"cap-logo", "Logo Cap", "CAP-003", "apparel", "<p>Six-panel cap.</p>", 15.00, 0, 0},
		{"mug-enamel", "Enamel Mug", "MUG-004", "home", "<p>Camp-style enamel mug.</p>", 12.50, 16.00, 75},
		{"print-a3", "A3 Art Print", "PRT-005", "home", "<p>Giclée print on matte paper.</p>", 35.00, 0, 8},
	}

	seedBanners = []models.Banner{
		{Title: "Summer sale", Text: "Up to 30% off apparel", Image: "images/banners/summer.jpg", URL: "/category/apparel", SortOrder: 1},
		{Title: "New prints", Text: "Fresh art for your walls", Image: "images/banners/prints.jpg", URL: "/category/home", SortOrder: 2},
	}

	seedPages = []models.Page{
		{
			Slug:            "about",
			Title:           "About us",
			Content:         "<p>We make small batches of things we like.</p>",
			MetaDescription: "Who we are",
			Blocks: []models.ContentBlock{
				{Name: "story", Body: "Started in a **garage** in 2019.", Format: models.BlockFormatMarkdown},
			},
		},
		{
			Slug:    "shipping",
			Title:   "Shipping",
			Content: "<p>Orders ship within two business days.</p>",
		},
	}
)

// Seed populates an empty database with a demo catalog. It does nothing
// when store settings already exist.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM store_settings").Scan(&count); err != nil {
		return fmt.Errorf("seed check store settings: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO store_settings (id, name, email, phone, address, url, currency_symbol, currency_code)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	`, "Demo Store", "hello@demo.test", "+1 555 0100", "1 Market St", "http://localhost:8080", "$", "USD"); err != nil {
		return fmt.Errorf("seed store settings: %w", err)
	}

	for _, c := range seedCategories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, slug, description, image, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, c.Name, slug.Generate(c.Name), c.Description, c.Image, c.SortOrder); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}

	for _, p := range seedProducts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, sku, slug, description, price, compare_price, stock, image, category_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, p.id, p.name, p.sku, slug.Generate(p.name), p.description, p.price, p.comparePrice, p.stock,
			"images/products/"+p.id+".jpg", p.category); err != nil {
			return fmt.Errorf("seed product %s: %w", p.id, err)
		}
	}

	for _, b := range seedBanners {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO banners (title, text, image, url, sort_order)
			VALUES ($1, $2, $3, $4, $5)
		`, b.Title, b.Text, b.Image, b.URL, b.SortOrder); err != nil {
			return fmt.Errorf("seed banner %q: %w", b.Title, err)
		}
	}

	for _, pg := range seedPages {
		blocks, err := json.Marshal(pg.Blocks)
		if err != nil {
			return fmt.Errorf("seed page %s blocks: %w", pg.Slug, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (slug, title, content, meta_description, image, blocks)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, pg.Slug, pg.Title, pg.Content, pg.MetaDescription, pg.Image, blocks); err != nil {
			return fmt.Errorf("seed page %s: %w", pg.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo catalog",
		"categories", len(seedCategories),
		"products", len(seedProducts),
		"pages", len(seedPages),
	)
	return nil
}
