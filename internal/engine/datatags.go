// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"html"
	"regexp"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"storefront/internal/models"
)

// dataTagRe matches a data tag: [@name@].
var dataTagRe = regexp.MustCompile(`\[@([A-Za-z0-9_]+)@\]`)

// Vocab maps data-tag names to values. Values are strings, ints, float64s or
// bools; formatValue decides how each renders.
type Vocab map[string]any

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders an amount with the store currency symbol and two
// decimals, grouping thousands: $1,234.50.
func formatMoney(symbol string, amount float64) string {
	return moneyPrinter.Sprintf("%s%.2f", symbol, amount)
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return ""
}

// SubstituteDataTags replaces every known [@name@] in text in a single pass.
// Unknown names are left as they are.
func SubstituteDataTags(text string, vocab Vocab) string {
	return dataTagRe.ReplaceAllStringFunc(text, func(tag string) string {
		name := tag[2 : len(tag)-2]
		if v, ok := vocab[name]; ok {
			return formatValue(v)
		}
		return tag
	})
}

// Vocabulary builds the page-level data-tag dictionary from the context.
func (pc *PageContext) Vocabulary() Vocab {
	v := Vocab{}
	if pc == nil {
		return v
	}
	sym := pc.Store.CurrencySymbol

	v["store_name"] = html.EscapeString(pc.Store.Name)
	v["store_email"] = html.EscapeString(pc.Store.Email)
	v["store_phone"] = html.EscapeString(pc.Store.Phone)
	v["store_address"] = html.EscapeString(pc.Store.Address)
	v["store_url"] = pc.Store.URL
	v["currency_symbol"] = sym
	v["currency_code"] = pc.Store.CurrencyCode
	v["current_date"] = pc.Date
	v["current_year"] = pc.Year
	v["page_type"] = string(pc.PageType)
	v["search_query"] = html.EscapeString(pc.SearchQuery)
	v["category_count"] = len(pc.Categories)
	v["product_count"] = len(pc.Products)

	// Absent sections still define their tags so they render empty.
	if pc.Product != nil {
		for k, val := range productTags(pc.Product, sym) {
			v[k] = val
		}
		v["product_available"] = pc.Product.InStock()
	} else {
		for k := range productTags(&models.Product{}, sym) {
			v[k] = ""
		}
		v["product_available"] = false
	}
	if pc.Category != nil {
		for k, val := range categoryTags(pc.Category) {
			v[k] = val
		}
	} else {
		for k := range categoryTags(&models.Category{}) {
			v[k] = ""
		}
	}

	loggedIn := pc.Customer != nil
	v["customer_logged_in"] = yesNo(loggedIn)
	if loggedIn {
		v["customer_id"] = pc.Customer.ID
		v["customer_name"] = html.EscapeString(pc.Customer.FullName())
		v["customer_first_name"] = html.EscapeString(pc.Customer.FirstName)
		v["customer_email"] = html.EscapeString(pc.Customer.Email)
	} else {
		for _, k := range []string{"customer_id", "customer_name", "customer_first_name", "customer_email"} {
			v[k] = ""
		}
	}

	cart := pc.Cart
	if cart == nil {
		cart = &models.Cart{}
	}
	v["cart_count"] = cart.Count()
	v["cart_subtotal"] = formatMoney(sym, cart.Subtotal())
	v["cart_total"] = formatMoney(sym, cart.Total())

	if pc.Page != nil {
		v["page_slug"] = pc.Page.Slug
		v["page_title"] = html.EscapeString(pc.Page.Title)
		v["page_content"] = pc.Page.Content
		for name, body := range pc.Blocks {
			v["block_"+name] = body
		}
	} else if slug := pc.Params["page_slug"]; slug != "" {
		v["page_slug"] = html.EscapeString(slug)
	}

	// Generic fields fall back product → category → page.
	switch {
	case pc.Product != nil:
		v["id"] = pc.Product.ID
		v["name"] = v["product_name"]
		v["title"] = v["product_name"]
		v["description"] = pc.Product.Description
		v["content"] = pc.Product.Description
		v["image"] = pc.Product.Image
		v["url"] = v["product_url"]
	case pc.Category != nil:
		v["id"] = pc.Category.ID
		v["name"] = v["category_name"]
		v["title"] = v["category_name"]
		v["description"] = pc.Category.Description
		v["content"] = pc.Category.Description
		v["image"] = pc.Category.Image
		v["url"] = v["category_url"]
	case pc.Page != nil:
		v["id"] = pc.Page.ID
		v["name"] = v["page_title"]
		v["title"] = v["page_title"]
		v["description"] = html.EscapeString(pc.Page.MetaDescription)
		v["content"] = pc.Page.Content
		v["image"] = pc.Page.Image
		v["url"] = "/" + pc.Page.Slug
	}
	return v
}

// productTags is the [@product_*@] vocabulary, shared by product pages and
// product loops.
func productTags(p *models.Product, sym string) Vocab {
	compare := ""
	if p.ComparePrice > 0 {
		compare = formatMoney(sym, p.ComparePrice)
	}
	return Vocab{
		"product_id":            p.ID,
		"product_name":          html.EscapeString(p.Name),
		"product_sku":           html.EscapeString(p.SKU),
		"product_url":           "/product/" + p.ID,
		"product_image":         p.Image,
		"product_description":   p.Description,
		"product_price":         formatMoney(sym, p.Price),
		"product_price_raw":     p.Price,
		"product_compare_price": compare,
		"product_on_sale":       yesNo(p.OnSale()),
		"product_in_stock":      yesNo(p.InStock()),
		"product_stock":         p.Stock,
		"product_category_id":   p.CategoryID,
	}
}

// categoryTags is the [@category_*@] vocabulary.
func categoryTags(c *models.Category) Vocab {
	return Vocab{
		"category_id":          c.ID,
		"category_name":        html.EscapeString(c.Name),
		"category_url":         "/category/" + c.ID,
		"category_description": c.Description,
		"category_image":       c.Image,
	}
}

// bannerTags is the [@banner_*@] vocabulary.
func bannerTags(b *models.Banner) Vocab {
	return Vocab{
		"banner_id":    b.ID,
		"banner_title": html.EscapeString(b.Title),
		"banner_text":  html.EscapeString(b.Text),
		"banner_image": b.Image,
		"banner_url":   b.URL,
	}
}

// cartItemTags is the [@item_*@] vocabulary for cart lines.
func cartItemTags(it *models.CartItem, sym string) Vocab {
	return Vocab{
		"item_product_id": it.ProductID,
		"item_name":       html.EscapeString(it.Name),
		"item_sku":        html.EscapeString(it.SKU),
		"item_image":      it.Image,
		"item_price":      formatMoney(sym, it.Price),
		"item_qty":        it.Quantity,
		"item_total":      formatMoney(sym, it.LineTotal()),
		"item_url":        "/product/" + it.ProductID,
	}
}
