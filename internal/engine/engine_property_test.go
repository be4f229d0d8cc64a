//go:build property

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"storefront/internal/models"
)

func TestEngineProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Text without include directives passes through unchanged.
	e, _ := newTestEngine(t, map[string]string{"a.html": "A"}, Options{})
	properties.Property("include expansion identity", prop.ForAll(
		func(s string) bool {
			return e.ExpandIncludes(s, "") == s
		},
		gen.RegexMatch(`^[a-zA-Z0-9 <>/="\[\]@%]*$`).SuchThat(func(s string) bool {
			return !strings.Contains(s, "load_template") && !strings.Contains(s, "include")
		}),
	))

	// Data-tag substitution never rewrites its own output.
	pc := &PageContext{
		Store:   models.StoreSettings{Name: "Acme", CurrencySymbol: "$"},
		Product: &models.Product{ID: "p1", Name: "Widget", Price: 9.99, Stock: 2},
		Cart:    &models.Cart{},
	}
	vocab := pc.Vocabulary()
	names := make([]any, 0, len(vocab)+1)
	for k := range vocab {
		names = append(names, k)
	}
	names = append(names, "not_a_tag")
	properties.Property("data tags idempotent", prop.ForAll(
		func(tags []string) bool {
			var sb strings.Builder
			for _, name := range tags {
				fmt.Fprintf(&sb, "<i>[@%s@]</i>", name)
			}
			once := SubstituteDataTags(sb.String(), vocab)
			return SubstituteDataTags(once, vocab) == once
		},
		gen.SliceOf(gen.OneConstOf(names...).Map(func(v any) string { return v.(string) })),
	))

	// Every URL maps to a known page type and CMS slugs echo the path.
	properties.Property("routing is total", prop.ForAll(
		func(segs []string) bool {
			url := "/" + strings.Join(segs, "/")
			pt, rp := Resolve(url, nil)
			if !slices.Contains(PageTypes, pt) {
				return false
			}
			if pt == PageCMS {
				return rp["page_slug"] == strings.Trim(url, "/")
			}
			return true
		},
		gen.SliceOfN(3, gen.RegexMatch(`^[a-z0-9-]{1,12}$`)),
	))

	// A loop never yields more items than its limit.
	products := make([]models.Product, 30)
	for i := range products {
		products[i] = models.Product{ID: fmt.Sprintf("p%d", i)}
	}
	loopPC := &PageContext{Products: products}
	properties.Property("loop limit respected", prop.ForAll(
		func(limit int) bool {
			out := ExpandLoops(fmt.Sprintf("[%%products limit:'%d'%%]x[%%/products%%]", limit), loopPC)
			return len(out) == min(limit, len(products))
		},
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
