// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"storefront/internal/markdown"
	"storefront/internal/models"
)

// Catalog is the data source the context builder reads from. Lookups that
// find nothing return (nil, nil).
type Catalog interface {
	StoreSettings(ctx context.Context) (*models.StoreSettings, error)
	Categories(ctx context.Context, limit int) ([]models.Category, error)
	Category(ctx context.Context, id string) (*models.Category, error)
	Product(ctx context.Context, id string) (*models.Product, error)
	Products(ctx context.Context, filter models.ProductFilter, limit int) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error)
	Banners(ctx context.Context, limit int) ([]models.Banner, error)
	PageBySlug(ctx context.Context, slug string) (*models.Page, error)
}

// Fetch bounds used when building page contexts.
const (
	categoryFetchLimit   = 100
	homeProductLimit     = 24
	featuredCount        = 8
	bannerFetchLimit     = 10
	categoryProductLimit = 48
	searchResultLimit    = 48
	dateLayout           = "January 2, 2006"
)

// Pagination is a placeholder for listing pages. Only a single page of
// results is fetched.
type Pagination struct {
	Page    int
	PerPage int
	Total   int
	Pages   int
}

// PageContext is the data a single render sees. Optional sections are nil
// (or empty) when the page type does not use them or the lookup found
// nothing; tags over absent sections render empty or stay untouched.
type PageContext struct {
	PageType PageType
	Params   RouteParams

	Store      models.StoreSettings
	Categories []models.Category
	Customer   *models.Customer
	Cart       *models.Cart
	Date       string
	Year       string

	Product     *models.Product
	Category    *models.Category
	Page        *models.Page
	Blocks      map[string]string // rendered HTML per content block name
	Products    []models.Product
	Featured    []models.Product
	Banners     []models.Banner
	Pagination  *Pagination
	SearchQuery string
}

// ContextBuilder assembles render contexts from a Catalog.
type ContextBuilder struct {
	catalog Catalog
	now     func() time.Time
}

// NewContextBuilder creates a builder. A nil clock defaults to time.Now.
func NewContextBuilder(catalog Catalog, now func() time.Time) *ContextBuilder {
	if now == nil {
		now = time.Now
	}
	return &ContextBuilder{catalog: catalog, now: now}
}

// BuildGlobalContext loads the data every page shares: store settings,
// categories, date strings, a nil customer and an empty cart.
func (b *ContextBuilder) BuildGlobalContext(ctx context.Context) *PageContext {
	now := b.now()
	pc := &PageContext{
		Store: models.DefaultStoreSettings(),
		Cart:  &models.Cart{},
		Date:  now.Format(dateLayout),
		Year:  strconv.Itoa(now.Year()),
	}
	if b.catalog == nil {
		return pc
	}

	settings, err := b.catalog.StoreSettings(ctx)
	if err != nil {
		slog.Warn("store settings lookup failed, using defaults", "error", err)
	} else if settings != nil {
		pc.Store = *settings
	}

	categories, err := b.catalog.Categories(ctx, categoryFetchLimit)
	if err != nil {
		slog.Warn("category list lookup failed", "error", err)
	}
	pc.Categories = categories
	return pc
}

// BuildPageContext copies global and layers on the data for pageType.
func (b *ContextBuilder) BuildPageContext(ctx context.Context, pageType PageType, params RouteParams, global *PageContext) *PageContext {
	pc := &PageContext{}
	if global != nil {
		*pc = *global
	}
	pc.PageType = pageType
	pc.Params = params
	if pageType == PageSearch {
		pc.SearchQuery = params["q"]
	}
	if pc.Cart == nil {
		pc.Cart = &models.Cart{}
	}
	if b.catalog == nil {
		return pc
	}

	switch pageType {
	case PageProduct:
		pc.Product = lookup(ctx, "product", params["id"], b.catalog.Product)

	case PageCategory:
		pc.Category = lookup(ctx, "category", params["id"], b.catalog.Category)
		if pc.Category != nil {
			products, err := b.catalog.Products(ctx, models.ProductFilter{CategoryID: pc.Category.ID}, categoryProductLimit)
			if err != nil {
				slog.Warn("category products lookup failed", "category", pc.Category.ID, "error", err)
			}
			pc.Products = products
			pc.Pagination = singlePage(len(products), categoryProductLimit)
		}

	case PageHome:
		products, err := b.catalog.Products(ctx, models.ProductFilter{}, homeProductLimit)
		if err != nil {
			slog.Warn("home products lookup failed", "error", err)
		}
		pc.Products = products
		pc.Featured = products[:min(featuredCount, len(products))]
		banners, err := b.catalog.Banners(ctx, bannerFetchLimit)
		if err != nil {
			slog.Warn("banner lookup failed", "error", err)
		}
		pc.Banners = banners

	case PageSearch:
		if pc.SearchQuery != "" {
			products, err := b.catalog.SearchProducts(ctx, pc.SearchQuery, searchResultLimit)
			if err != nil {
				slog.Warn("product search failed", "query", pc.SearchQuery, "error", err)
			}
			pc.Products = products
			pc.Pagination = singlePage(len(products), searchResultLimit)
		}

	case PageCMS:
		b.attachPage(ctx, pc, params["page_slug"])

	case PageContact, PageAbout:
		b.attachPage(ctx, pc, string(pageType))
	}
	return pc
}

func (b *ContextBuilder) attachPage(ctx context.Context, pc *PageContext, slug string) {
	pc.Page = lookup(ctx, "page", slug, b.catalog.PageBySlug)
	if pc.Page == nil || len(pc.Page.Blocks) == 0 {
		return
	}
	pc.Blocks = make(map[string]string, len(pc.Page.Blocks))
	for _, block := range pc.Page.Blocks {
		body := block.Body
		if block.Format == models.BlockFormatMarkdown {
			body = markdown.ToHTMLOrRaw(body)
		}
		pc.Blocks[block.Name] = body
	}
}

// lookup runs a point lookup, turning errors and empty keys into absence.
func lookup[T any](ctx context.Context, kind, key string, find func(context.Context, string) (*T, error)) *T {
	if key == "" {
		return nil
	}
	v, err := find(ctx, key)
	if err != nil {
		slog.Warn("lookup failed", "kind", kind, "key", key, "error", err)
		return nil
	}
	return v
}

func singlePage(total, perPage int) *Pagination {
	return &Pagination{Page: 1, PerPage: perPage, Total: total, Pages: 1}
}
