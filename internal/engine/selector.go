// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"errors"
	"fmt"
	"path"

	"storefront/internal/slug"
)

// ErrNoWrapper is returned when no layout wrapper exists in the theme.
// Nothing can be rendered without one.
var ErrNoWrapper = errors.New("no wrapper template found")

// WrapperContext selects the layout wrapper independently of the page type.
type WrapperContext string

const (
	WrapperDefault  WrapperContext = "default"
	WrapperCheckout WrapperContext = "checkout"
	WrapperPrint    WrapperContext = "print"
	WrapperEmpty    WrapperContext = "empty"
	WrapperEmail    WrapperContext = "email"
)

// ParseWrapperContext validates a wrapper context name.
func ParseWrapperContext(s string) (WrapperContext, bool) {
	switch wc := WrapperContext(s); wc {
	case WrapperDefault, WrapperCheckout, WrapperPrint, WrapperEmpty, WrapperEmail:
		return wc, true
	}
	return "", false
}

// wrapperContextFor decides the wrapper: print and embed flags win, then an
// explicit "wrapper" parameter, then checkout pages get the checkout wrapper.
func wrapperContextFor(pt PageType, params map[string]string) WrapperContext {
	if flagSet(params["print"]) {
		return WrapperPrint
	}
	if flagSet(params["embed"]) {
		return WrapperEmpty
	}
	if wc, ok := ParseWrapperContext(params["wrapper"]); ok {
		return wc
	}
	if pt == PageCheckout {
		return WrapperCheckout
	}
	return WrapperDefault
}

// flagSet treats a present parameter as set unless it is an explicit no.
func flagSet(v string) bool {
	if v == "" {
		return false
	}
	switch v {
	case "0", "n", "no", "false":
		return false
	}
	return true
}

// Conventional theme paths.
const (
	rootWrapperPath     = "wrapper.html"
	fallbackWrapperPath = "templates/wrapper.html"
	headPartialPath     = "templates/partials/head.html"
	headerPartialPath   = "templates/partials/header.html"
	footerPartialPath   = "templates/partials/footer.html"
	cmsTemplatePath     = "templates/pages/cms.html"
	defaultPagePath     = "templates/pages/default.html"
)

// TemplateSelector maps page types and wrapper contexts to theme files.
type TemplateSelector struct {
	templates *TemplateStore
}

// NewTemplateSelector creates a selector that checks existence in templates.
func NewTemplateSelector(templates *TemplateStore) *TemplateSelector {
	return &TemplateSelector{templates: templates}
}

// SelectWrapper returns the wrapper path for wc, falling back to the default
// wrapper at the theme root and then under templates/.
func (s *TemplateSelector) SelectWrapper(wc WrapperContext) (string, error) {
	candidates := []string{
		path.Join("templates/wrappers", string(wc)+".html"),
		rootWrapperPath,
		fallbackWrapperPath,
	}
	for _, c := range candidates {
		if s.templates.Exists(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("select wrapper %q in %s: %w", wc, s.templates.Root(), ErrNoWrapper)
}

// SelectPageTemplate returns the page-body template for pt, or "" when the
// theme has none. CMS pages try a slug-specific file first.
func (s *TemplateSelector) SelectPageTemplate(pt PageType, params RouteParams) string {
	var candidates []string
	if pt == PageCMS {
		if name := slug.FromPath(params["page_slug"]); name != "" {
			candidates = append(candidates, path.Join("templates/pages/cms", name+".html"))
		}
		candidates = append(candidates, cmsTemplatePath, defaultPagePath)
	} else {
		candidates = append(candidates, PageTemplatePath(pt))
	}

	for _, c := range candidates {
		if s.templates.Exists(c) {
			return c
		}
	}
	return ""
}

// PageTemplatePath is the conventional page-body path for a page type.
func PageTemplatePath(pt PageType) string {
	return path.Join("templates/pages", string(pt)+".html")
}
