// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import "strings"

// Slot markers a wrapper may carry.
const (
	headSlot        = "[%head_includes%]"
	headerSlot      = "[%header%]"
	footerSlot      = "[%footer%]"
	contentSlot     = "[%content%]"
	pageContentSlot = "[%page_content%]"
)

// fragments are the partials injected into a wrapper.
type fragments struct {
	head   string
	header string
	footer string
	body   string
}

// assemble injects the fragments into wrapper. The returned bool is false
// when the wrapper offered no place for the page body, in which case the
// body was dropped.
func assemble(wrapper string, f fragments) (string, bool) {
	out := wrapper

	// Head: explicit slot, else right before </head>, else omitted.
	if strings.Contains(out, headSlot) {
		out = strings.ReplaceAll(out, headSlot, f.head)
	} else if i := indexFold(out, "</head>"); i >= 0 {
		out = out[:i] + f.head + out[i:]
	}

	// Header and footer only go where the wrapper asks for them.
	out = strings.ReplaceAll(out, headerSlot, f.header)
	out = strings.ReplaceAll(out, footerSlot, f.footer)

	switch {
	case strings.Contains(out, contentSlot):
		return strings.ReplaceAll(out, contentSlot, f.body), true
	case strings.Contains(out, pageContentSlot):
		return strings.ReplaceAll(out, pageContentSlot, f.body), true
	}
	if i := lastIndexFold(out, "</main>"); i >= 0 {
		return out[:i] + f.body + out[i:], true
	}
	if i := lastIndexFold(out, "</body>"); i >= 0 {
		return out[:i] + f.body + out[i:], true
	}
	return out, false
}

// indexFold and lastIndexFold search for an ASCII tag case-insensitively.
// strings.ToLower keeps byte offsets for ASCII input, and tag names are ASCII.
func indexFold(s, substr string) int {
	return strings.Index(asciiLower(s), substr)
}

func lastIndexFold(s, substr string) int {
	return strings.LastIndex(asciiLower(s), substr)
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
