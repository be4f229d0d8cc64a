// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"log/slog"
	"strconv"
	"strings"
)

// reservedTags are [%...%] names that are never loops.
var reservedTags = map[string]bool{
	"if":            true,
	"else":          true,
	"load_template": true,
	"content":       true,
	"page_content":  true,
	"head_includes": true,
	"header":        true,
	"footer":        true,
	"ntheme_asset":  true,
}

func isLoopName(name string) bool {
	return !reservedTags[strings.ToLower(name)]
}

// loopKind describes one recognized loop: where its items come from and the
// item-scoped vocabulary each item exposes.
type loopKind struct {
	defaultLimit int
	items        func(pc *PageContext, args map[string]string) []Vocab
}

var loopKinds = map[string]loopKind{
	"products":          {defaultLimit: 12, items: productItems},
	"product_list":      {defaultLimit: 12, items: productItems},
	"featured_products": {defaultLimit: 8, items: featuredItems},
	"categories":        {defaultLimit: 20, items: categoryItems},
	"category_list":     {defaultLimit: 20, items: categoryItems},
	"banners":           {defaultLimit: 5, items: bannerItems},
	"banner_list":       {defaultLimit: 5, items: bannerItems},
	"cart_items":        {defaultLimit: 100, items: cartItems},
}

func productItems(pc *PageContext, args map[string]string) []Vocab {
	categoryID := args["category"]
	var out []Vocab
	for i := range pc.Products {
		p := &pc.Products[i]
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		out = append(out, productTags(p, pc.Store.CurrencySymbol))
	}
	return out
}

func featuredItems(pc *PageContext, _ map[string]string) []Vocab {
	out := make([]Vocab, 0, len(pc.Featured))
	for i := range pc.Featured {
		out = append(out, productTags(&pc.Featured[i], pc.Store.CurrencySymbol))
	}
	return out
}

func categoryItems(pc *PageContext, _ map[string]string) []Vocab {
	out := make([]Vocab, 0, len(pc.Categories))
	for i := range pc.Categories {
		out = append(out, categoryTags(&pc.Categories[i]))
	}
	return out
}

func bannerItems(pc *PageContext, _ map[string]string) []Vocab {
	out := make([]Vocab, 0, len(pc.Banners))
	for i := range pc.Banners {
		out = append(out, bannerTags(&pc.Banners[i]))
	}
	return out
}

func cartItems(pc *PageContext, _ map[string]string) []Vocab {
	if pc.Cart == nil {
		return nil
	}
	out := make([]Vocab, 0, len(pc.Cart.Items))
	for i := range pc.Cart.Items {
		out = append(out, cartItemTags(&pc.Cart.Items[i], pc.Store.CurrencySymbol))
	}
	return out
}

// ExpandLoops expands [%name args%]...[%/name%] blocks, repeating until
// nothing changes or maxTagPasses is reached.
func ExpandLoops(text string, pc *PageContext) string {
	if pc == nil {
		pc = &PageContext{}
	}
	for i := 0; i < maxTagPasses; i++ {
		blocks := findBlocks(text, isLoopName)
		if len(blocks) == 0 {
			break
		}
		next := replaceBlocks(text, blocks, func(b block) string {
			return renderLoop(text, b, pc)
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

func renderLoop(text string, b block, pc *PageContext) string {
	kind, ok := loopKinds[strings.ToLower(b.name)]
	if !ok {
		slog.Debug("unknown loop tag rendered empty", "name", b.name)
		return ""
	}

	args := parseTagArgs(b.args)
	limit := kind.defaultLimit
	if raw, ok := args["limit"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			limit = n
		}
	}

	items := kind.items(pc, args)
	if len(items) > limit {
		items = items[:limit]
	}

	inner := b.inner(text)
	var sb strings.Builder
	for idx, item := range items {
		item["index"] = idx
		item["index1"] = idx + 1
		out := substituteItemTags(inner, item)
		sb.WriteString(evaluateInlineConditionals(out, item))
	}
	return sb.String()
}

// substituteItemTags fills an item's tags into a loop body. Nested loop
// bodies belong to their own items and are left alone; only their opening
// tags see the outer item, so args like category:'[@category_id@]' work.
func substituteItemTags(body string, item Vocab) string {
	nested := findBlocks(body, isLoopName)
	if len(nested) == 0 {
		return SubstituteDataTags(body, item)
	}
	var sb strings.Builder
	sb.Grow(len(body))
	prev := 0
	for _, b := range nested {
		sb.WriteString(SubstituteDataTags(body[prev:b.start], item))
		sb.WriteString(SubstituteDataTags(body[b.start:b.innerStart], item))
		sb.WriteString(body[b.innerStart:b.end])
		prev = b.end
	}
	sb.WriteString(SubstituteDataTags(body[prev:], item))
	return sb.String()
}
