// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// StoreSettings is the single settings record of a storefront tenant.
type StoreSettings struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	URL            string `json:"url"`
	CurrencySymbol string `json:"currency_symbol"`
	CurrencyCode   string `json:"currency_code"`
}

// DefaultStoreSettings is used when no settings record has been persisted yet.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		Name:           "My Store",
		Email:          "hello@example.com",
		URL:            "/",
		CurrencySymbol: "$",
		CurrencyCode:   "USD",
	}
}

// Category groups products for navigation and category pages.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SortOrder   int    `json:"sort_order"`
}

// Product is a sellable catalog item.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"` // HTML
	Price        float64   `json:"price"`
	ComparePrice float64   `json:"compare_price"`
	Stock        int       `json:"stock"`
	Image        string    `json:"image"`
	CategoryID   string    `json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// OnSale reports whether the compare-at price is above the selling price.
func (p *Product) OnSale() bool {
	return p.ComparePrice > p.Price
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// ProductFilter narrows a product list query. Empty fields match everything.
type ProductFilter struct {
	CategoryID string
}

// Banner is a promotional slide shown on the home page.
type Banner struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Image     string `json:"image"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

// BlockFormat is the markup a content block is authored in.
type BlockFormat string

const (
	BlockFormatHTML     BlockFormat = "html"
	BlockFormatMarkdown BlockFormat = "markdown"
)

// ContentBlock is one named section of a CMS page.
type ContentBlock struct {
	Name   string      `json:"name"`
	Body   string      `json:"body"`
	Format BlockFormat `json:"format"`
}

// Page is a CMS page addressed by slug.
type Page struct {
	ID              string         `json:"id"`
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	Content         string         `json:"content"` // HTML
	MetaDescription string         `json:"meta_description"`
	Image           string         `json:"image"`
	Blocks          []ContentBlock `json:"blocks"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
