// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"storefront/internal/models"
)

// RenderPage renders the page for rawURL. params are query or route
// parameters; customer and cart override the empty defaults when non-nil.
//
// The debug record is non-nil only in debug mode and is finalized even when
// rendering fails. The only error is a missing wrapper (ErrNoWrapper), in
// which case no HTML is returned.
func (e *Engine) RenderPage(ctx context.Context, rawURL string, params map[string]string, customer *models.Customer, cart *models.Cart) (html string, dbg *DebugInfo, err error) {
	start := e.now()
	if e.opts.Debug {
		dbg = newDebugInfo(start)
	}

	var pageType PageType
	defer func() {
		end := e.now()
		dbg.finish(end)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.ObserveRender(string(pageType), outcome, end.Sub(start))
	}()

	// 1. Route.
	pageType, routeParams := Resolve(rawURL, params)
	if dbg != nil {
		dbg.PageType = pageType
	}

	var cacheKey string
	if e.output != nil && dbg == nil {
		cacheKey = OutputKey(pageType, rawURL, ContextFingerprint(customer, cart, params))
		cached, ok := e.output.Get(ctx, cacheKey)
		e.metrics.ObserveOutputCache(ok)
		if ok {
			return cached, nil, nil
		}
	}

	// 2–3. Wrapper context and template selection.
	wc := wrapperContextFor(pageType, params)
	wrapperPath, err := e.selector.SelectWrapper(wc)
	if err != nil {
		slog.Error("render aborted", "url", rawURL, "wrapper_context", wc, "error", err)
		return "", dbg, err
	}
	pagePath := e.selector.SelectPageTemplate(pageType, routeParams)
	if dbg != nil {
		dbg.WrapperPath = wrapperPath
		dbg.PageTemplatePath = pagePath
	}

	// 4. Context.
	global := e.contexts.BuildGlobalContext(ctx)
	if customer != nil {
		global.Customer = customer
	}
	if cart != nil {
		global.Cart = cart
	}
	pc := e.contexts.BuildPageContext(ctx, pageType, routeParams, global)

	// 5–6. Read and assemble.
	wrapper := e.readTemplate(wrapperPath, dbg)
	f := fragments{head: e.readTemplate(headPartialPath, dbg)}
	if strings.Contains(wrapper, headerSlot) {
		f.header = e.readTemplate(headerPartialPath, dbg)
	}
	if strings.Contains(wrapper, footerSlot) {
		f.footer = e.readTemplate(footerPartialPath, dbg)
	}
	if pagePath != "" {
		f.body = e.readTemplate(pagePath, dbg)
	}
	assembled, placed := assemble(wrapper, f)
	if !placed {
		slog.Warn("wrapper has no content slot, page body dropped", "wrapper", wrapperPath, "page_template", pagePath)
	}

	// 7. Includes.
	out := e.expandIncludes(assembled, "", newIncludeStack(e.opts.MaxIncludeDepth), dbg)

	// 8. Loops, conditionals, data tags.
	out = ProcessTags(out, pc)

	// 9. Asset paths.
	out = RewriteAssetPaths(out, e.opts.AssetBaseURL)

	if cacheKey != "" {
		e.output.Set(ctx, cacheKey, out)
	}
	return out, dbg, nil
}

// OutputKey builds the output cache key for a render.
func OutputKey(pt PageType, rawURL, fingerprint string) string {
	return fmt.Sprintf("%s|%s|%s", pt, rawURL, fingerprint)
}

// ContextFingerprint hashes the caller-supplied inputs that change a page's
// output for the same URL: the customer, the cart lines and the parameters.
func ContextFingerprint(customer *models.Customer, cart *models.Cart, params map[string]string) string {
	var sb strings.Builder
	if customer != nil {
		sb.WriteString("c=")
		sb.WriteString(customer.ID)
	}
	sb.WriteByte(';')
	if cart != nil {
		for _, it := range cart.Items {
			sb.WriteString(it.ProductID)
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(it.Quantity))
			sb.WriteByte(':')
			sb.WriteString(strconv.FormatFloat(it.Price, 'f', -1, 64))
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(cart.Shipping, 'f', -1, 64))
	}
	sb.WriteByte(';')
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
		sb.WriteByte('&')
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(sb.String()))
}
