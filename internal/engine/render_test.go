// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/metrics"
	"storefront/internal/models"
)

// classicTheme is a small but complete theme.
func classicTheme() map[string]string {
	return map[string]string{
		"wrapper.html": `<html><head><title>[@store_name@]</title>[%head_includes%]</head>` +
			`<body>[%header%]<main>[%content%]</main>[%footer%]</body></html>`,
		"templates/wrappers/print.html":  `<html><body class="print">[%content%]</body></html>`,
		"templates/partials/head.html":   `<link href="css/site.css" rel="stylesheet">`,
		"templates/partials/header.html": `<header>[%load_template file:'partials/nav.html'%]</header>`,
		"templates/partials/nav.html":    `<nav>[%categories%]<a href="[@category_url@]">[@category_name@]</a>[%/categories%]</nav>`,
		"templates/partials/footer.html": `<footer>&copy; [@current_year@] [@store_name@]</footer>`,
		"templates/pages/home.html":      `<h1>Welcome</h1>[%featured_products%]<p>[@product_name@]</p>[%/featured_products%]`,
		"templates/pages/product.html":   `<h1>[@product_name@]</h1><span class="price">[@product_price@]</span><span id="sale">[@product_on_sale@]</span>[%if [@product_available@]%]<b>available</b>[%else%]<b>sold out</b>[%/if%]<img src="images/[@product_id@].jpg">`,
		"templates/pages/default.html":   `<h1>[@name@]</h1><div>[@page_content@]</div>`,
		"templates/pages/cart.html":      `[%cart_items%]<li>[@item_name@] x[@item_qty@]</li>[%/cart_items%]<p>[@cart_total@]</p>`,
		"templates/pages/cms/faq.html":   `<h1>FAQ: [@page_title@]</h1>[@block_intro@]`,
	}
}

func productCatalog() *fakeCatalog {
	cat := newFakeCatalog()
	cat.categories = []models.Category{{ID: "gadgets", Name: "Gadgets"}}
	cat.products = []models.Product{
		{ID: "abc123", Name: "Widget", Price: 9.99, ComparePrice: 14.99, Stock: 5, CategoryID: "gadgets"},
		{ID: "zzz", Name: "Gizmo", Price: 20, Stock: 0, CategoryID: "gadgets"},
	}
	return cat
}

func newRenderEngine(t *testing.T, cat Catalog, opts Options) (*Engine, string) {
	t.Helper()
	root := writeTheme(t, classicTheme())
	opts.ThemeDir = root
	if opts.Clock == nil {
		opts.Clock = fixedClock
	}
	return New(cat, opts), root
}

func TestRenderPage_Product(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{AssetBaseURL: "/assets/classic"})

	html, dbg, err := e.RenderPage(context.Background(), "/product/abc123", nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, dbg, "no debug record outside debug mode")

	assert.Contains(t, html, "$9.99")
	assert.Contains(t, html, `<span id="sale">y</span>`)
	assert.Contains(t, html, "<b>available</b>")
	assert.NotContains(t, html, "sold out")
	assert.Contains(t, html, "<title>Acme Goods</title>")
	assert.Contains(t, html, `<link href="/assets/classic/css/site.css" rel="stylesheet">`)
	assert.Contains(t, html, `<img src="/assets/classic/images/abc123.jpg">`)
	assert.Contains(t, html, `<nav><a href="/category/gadgets">Gadgets</a></nav>`)
	assert.Contains(t, html, "<footer>&copy; 2026 Acme Goods</footer>")
	assert.NotContains(t, html, "[%")
}

func TestRenderPage_ProductAvailabilityFlag(t *testing.T) {
	cb := NewContextBuilder(productCatalog(), fixedClock)
	ctx := context.Background()
	pt, rp := Resolve("/product/abc123", nil)
	pc := cb.BuildPageContext(ctx, pt, rp, cb.BuildGlobalContext(ctx))

	v := pc.Vocabulary()
	assert.Equal(t, true, v["product_available"])
	assert.Equal(t, "y", v["product_on_sale"])
}

func TestRenderPage_SoldOutProduct(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{})
	html, _, err := e.RenderPage(context.Background(), "/product/zzz", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "<b>sold out</b>")
	assert.Contains(t, html, `<span id="sale">n</span>`)
}

func TestRenderPage_UnknownSlugKeepsPlaceholder(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{})

	html, _, err := e.RenderPage(context.Background(), "/some-random-slug", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>[@name@]</h1>")
	assert.Contains(t, html, "<div>[@page_content@]</div>")
}

func TestRenderPage_CMSPageWithBlocks(t *testing.T) {
	cat := productCatalog()
	cat.pages["faq"] = &models.Page{
		ID: "p1", Slug: "faq", Title: "Questions",
		Blocks: []models.ContentBlock{{Name: "intro", Body: "**Read** this", Format: models.BlockFormatMarkdown}},
	}
	e, _ := newRenderEngine(t, cat, Options{})

	html, _, err := e.RenderPage(context.Background(), "/faq", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>FAQ: Questions</h1>")
	assert.Contains(t, html, "<strong>Read</strong> this")
}

func TestRenderPage_CustomerAndCart(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{})
	cart := &models.Cart{Items: []models.CartItem{{ProductID: "abc123", Name: "Widget", Price: 9.99, Quantity: 2}}}

	html, _, err := e.RenderPage(context.Background(), "/cart", nil, &models.Customer{ID: "c1"}, cart)
	require.NoError(t, err)
	assert.Contains(t, html, "<li>Widget x2</li>")
	assert.Contains(t, html, "<p>$19.98</p>")
}

func TestRenderPage_PrintWrapper(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{})
	html, _, err := e.RenderPage(context.Background(), "/product/abc123", map[string]string{"print": "1"}, nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<html><body class="print">`))
	assert.NotContains(t, html, "<footer>")
}

func TestRenderPage_MissingPageTemplateRendersShell(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{})
	html, _, err := e.RenderPage(context.Background(), "/checkout", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "<main></main>")
}

func TestRenderPage_NoWrapper(t *testing.T) {
	root := writeTheme(t, map[string]string{"templates/pages/home.html": "home"})
	e := New(productCatalog(), Options{ThemeDir: root, Debug: true, Clock: fixedClock})

	html, dbg, err := e.RenderPage(context.Background(), "/", nil, nil, nil)
	require.ErrorIs(t, err, ErrNoWrapper)
	assert.Empty(t, html)
	require.NotNil(t, dbg)
	assert.False(t, dbg.End.IsZero(), "debug record finalized on failure")
}

func TestRenderPage_CatalogErrorsDegrade(t *testing.T) {
	cat := productCatalog()
	cat.err = errors.New("database down")
	e, _ := newRenderEngine(t, cat, Options{})

	html, _, err := e.RenderPage(context.Background(), "/", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Welcome</h1>")
	assert.Contains(t, html, "<title>My Store</title>")
}

func TestRenderPage_DebugInfo(t *testing.T) {
	var tick time.Duration
	clock := func() time.Time {
		tick += 5 * time.Millisecond
		return fixedNow.Add(tick)
	}
	e, _ := newRenderEngine(t, productCatalog(), Options{Debug: true, Clock: clock})

	_, dbg, err := e.RenderPage(context.Background(), "/product/abc123", nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, dbg)

	assert.NotEmpty(t, dbg.RenderID)
	assert.Equal(t, PageProduct, dbg.PageType)
	assert.Equal(t, "wrapper.html", dbg.WrapperPath)
	assert.Equal(t, "templates/pages/product.html", dbg.PageTemplatePath)
	assert.Equal(t, []string{"templates/partials/nav.html"}, dbg.Includes)
	assert.Positive(t, dbg.Elapsed())
	assert.Equal(t, 6, dbg.CacheMisses, "wrapper, head, header, footer, page and nav")

	_, dbg2, err := e.RenderPage(context.Background(), "/product/abc123", nil, nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, dbg.RenderID, dbg2.RenderID)
	assert.Equal(t, 6, dbg2.CacheHits)

	h := dbg2.Headers()
	assert.Equal(t, "product", h["X-Render-Page-Type"])
	assert.Equal(t, "templates/partials/nav.html", h["X-Render-Includes"])
	assert.Equal(t, "6", h["X-Render-Cache-Hits"])
}

func TestRenderPage_TemplateEditVisibleWithoutRestart(t *testing.T) {
	e, root := newRenderEngine(t, productCatalog(), Options{})
	ctx := context.Background()

	html, _, err := e.RenderPage(ctx, "/", nil, nil, nil)
	require.NoError(t, err)
	require.Contains(t, html, "<h1>Welcome</h1>")

	touch(t, root, "templates/pages/home.html", "<h1>Hello again</h1>", time.Hour)
	html, _, err = e.RenderPage(ctx, "/", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Hello again</h1>")
}

func TestRenderPage_OutputCache(t *testing.T) {
	cat := productCatalog()
	e, root := newRenderEngine(t, cat, Options{})
	out := newMapOutputCache()
	e.SetOutputCache(out)
	ctx := context.Background()

	first, _, err := e.RenderPage(ctx, "/product/abc123", nil, nil, nil)
	require.NoError(t, err)
	calls := cat.callCount("Product")

	second, _, err := e.RenderPage(ctx, "/product/abc123", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, calls, cat.callCount("Product"), "cached page skips the catalog")

	// A different customer is a different cache entry.
	_, _, err = e.RenderPage(ctx, "/product/abc123", nil, &models.Customer{ID: "c1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, calls+1, cat.callCount("Product"))

	touch(t, root, "templates/pages/product.html", "<p>[@product_name@] v2</p>", time.Hour)
	e.InvalidateTemplate(ctx, "templates/pages/product.html")
	assert.Equal(t, 1, out.clears)

	third, _, err := e.RenderPage(ctx, "/product/abc123", nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, third, "<p>Widget v2</p>")
}

func TestRenderPage_DebugBypassesOutputCache(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{Debug: true})
	out := newMapOutputCache()
	e.SetOutputCache(out)

	_, dbg, err := e.RenderPage(context.Background(), "/", nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, dbg)
	assert.Empty(t, out.entries)
}

func TestRenderPage_Metrics(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{})
	rec := metrics.NewRecorder(nil)
	e.SetMetrics(rec)

	_, _, err := e.RenderPage(context.Background(), "/product/abc123", nil, nil, nil)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(rec.Gatherer(), "storefront_render_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRenderPage_ConcurrentRendersAreIndependent(t *testing.T) {
	e, _ := newRenderEngine(t, productCatalog(), Options{Debug: true})
	ctx := context.Background()

	type result struct {
		html string
		dbg  *DebugInfo
		err  error
	}
	results := make(chan result, 20)
	for i := range 20 {
		go func() {
			u := "/product/abc123"
			if i%2 == 1 {
				u = "/product/zzz"
			}
			html, dbg, err := e.RenderPage(ctx, u, nil, nil, nil)
			results <- result{html, dbg, err}
		}()
	}
	for range 20 {
		r := <-results
		require.NoError(t, r.err)
		if strings.Contains(r.html, "Widget") {
			assert.Contains(t, r.html, "<b>available</b>")
		} else {
			assert.Contains(t, r.html, "<b>sold out</b>")
		}
		assert.Equal(t, []string{"templates/partials/nav.html"}, r.dbg.Includes)
	}
}

func TestContextFingerprint(t *testing.T) {
	a := ContextFingerprint(nil, nil, map[string]string{"a": "1", "b": "2"})
	b := ContextFingerprint(nil, nil, map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b, "parameter order does not matter")

	c := ContextFingerprint(&models.Customer{ID: "x"}, nil, nil)
	assert.NotEqual(t, ContextFingerprint(nil, nil, nil), c)

	cart := &models.Cart{Items: []models.CartItem{{ProductID: "p", Quantity: 1}}}
	assert.NotEqual(t, ContextFingerprint(nil, nil, nil), ContextFingerprint(nil, cart, nil))
	assert.Equal(t, "product|/p/1|"+a, OutputKey(PageProduct, "/p/1", a))
}
