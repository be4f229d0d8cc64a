// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"net/url"
	"strings"
)

// PageType decides which page-body template and context data a render uses.
type PageType string

const (
	PageHome      PageType = "home"
	PageProduct   PageType = "product"
	PageCategory  PageType = "category"
	PageCMS       PageType = "cms"
	PageSearch    PageType = "search"
	PageCart      PageType = "cart"
	PageCheckout  PageType = "checkout"
	PageAccount   PageType = "account"
	PageStockists PageType = "stockists"
	PageNotFound  PageType = "404"
	PageContact   PageType = "contact"
	PageAbout     PageType = "about"
)

// PageTypes lists every page type in a stable order.
var PageTypes = []PageType{
	PageHome, PageProduct, PageCategory, PageCMS, PageSearch, PageCart,
	PageCheckout, PageAccount, PageStockists, PageNotFound, PageContact, PageAbout,
}

// RouteParams carries values extracted from the URL: "id" for products and
// categories, "q" for search, "page_slug" for CMS pages and "path" always.
type RouteParams map[string]string

// Resolve maps a request path to a page type. It is a pure function; the
// order of checks matters because the CMS route catches everything else.
func Resolve(rawURL string, params map[string]string) (PageType, RouteParams) {
	rp := make(RouteParams, len(params)+2)
	for k, v := range params {
		rp[k] = v
	}

	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		if p[i] == '?' {
			if q, err := url.ParseQuery(strings.SplitN(p[i+1:], "#", 2)[0]); err == nil {
				for k := range q {
					if _, ok := rp[k]; !ok {
						rp[k] = q.Get(k)
					}
				}
			}
		}
		p = p[:i]
	}

	trimmed := strings.Trim(p, "/")
	rp["path"] = trimmed
	lower := strings.ToLower(trimmed)
	segments := strings.Split(trimmed, "/")
	first := strings.ToLower(segments[0])

	secondSegment := func() string {
		if len(segments) > 1 {
			return segments[1]
		}
		return ""
	}

	switch {
	case lower == "" || lower == "home":
		return PageHome, rp
	case first == "product" || first == "products":
		rp["id"] = secondSegment()
		return PageProduct, rp
	case first == "category" || first == "collection":
		rp["id"] = secondSegment()
		return PageCategory, rp
	case strings.HasPrefix(lower, "search"):
		if _, ok := rp["q"]; !ok {
			rp["q"] = ""
		}
		return PageSearch, rp
	case strings.HasPrefix(lower, "cart"):
		return PageCart, rp
	case strings.HasPrefix(lower, "checkout"):
		return PageCheckout, rp
	case strings.HasPrefix(lower, "account"),
		strings.HasPrefix(lower, "login"),
		strings.HasPrefix(lower, "register"):
		return PageAccount, rp
	case strings.HasPrefix(lower, "stockists"):
		return PageStockists, rp
	case lower == "contact":
		return PageContact, rp
	case lower == "about":
		return PageAbout, rp
	}

	rp["page_slug"] = trimmed
	return PageCMS, rp
}
