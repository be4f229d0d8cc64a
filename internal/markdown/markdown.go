// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts CMS content blocks authored in Markdown into
// HTML using goldmark. Raw HTML inside Markdown is passed through so
// merchants can mix both in one block.
package markdown

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(highlighting.WithStyle("monokai")),
	),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToHTMLOrRaw converts source and falls back to the unconverted text when
// goldmark fails, so a bad block never blanks a page.
func ToHTMLOrRaw(source string) string {
	out, err := ToHTML(source)
	if err != nil {
		slog.Warn("markdown conversion failed, using raw source", "error", err)
		return source
	}
	return out
}
