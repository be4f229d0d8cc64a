// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"regexp"
	"strings"
)

// maxTagPasses bounds loop and conditional reprocessing. Each pass expands
// the outermost blocks; nested blocks are handled by later passes.
const maxTagPasses = 10

// blockTagRe matches an opening or closing block tag: [%name args%] or
// [%/name%].
var blockTagRe = regexp.MustCompile(`\[%\s*(/?)([A-Za-z_][A-Za-z0-9_]*)([^%]*)%\]`)

// tagArgRe matches key:'value' pairs inside a block tag.
var tagArgRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(?:'([^']*)'|"([^"]*)"|([^\s'"]+))`)

// tagToken is one [%...%] occurrence.
type tagToken struct {
	start, end int
	closing    bool
	name       string
	args       string
}

// block is a matched open/close pair at the outermost nesting level.
type block struct {
	start, end           int // span of the whole block, tags included
	innerStart, innerEnd int // span between the tags
	name                 string
	args                 string
	tokens               []tagToken // tokens strictly inside the block
}

func (b block) inner(text string) string {
	return text[b.innerStart:b.innerEnd]
}

func scanTags(text string) []tagToken {
	locs := blockTagRe.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]tagToken, 0, len(locs))
	for _, m := range locs {
		tokens = append(tokens, tagToken{
			start:   m[0],
			end:     m[1],
			closing: m[3] > m[2],
			name:    text[m[4]:m[5]],
			args:    strings.TrimSpace(text[m[6]:m[7]]),
		})
	}
	return tokens
}

// findBlocks returns the outermost blocks, in document order, whose name is
// accepted by want. Openers with no matching closer are ignored. Nesting of
// the same name is matched by depth.
func findBlocks(text string, want func(name string) bool) []block {
	tokens := scanTags(text)
	var blocks []block
	for i := 0; i < len(tokens); i++ {
		open := tokens[i]
		if open.closing || !want(open.name) {
			continue
		}
		depth := 1
		for j := i + 1; j < len(tokens); j++ {
			tok := tokens[j]
			if tok.name != open.name {
				continue
			}
			if tok.closing {
				depth--
			} else {
				depth++
			}
			if depth == 0 {
				blocks = append(blocks, block{
					start:      open.start,
					end:        tok.end,
					innerStart: open.end,
					innerEnd:   tok.start,
					name:       open.name,
					args:       open.args,
					tokens:     tokens[i+1 : j],
				})
				i = j
				break
			}
		}
	}
	return blocks
}

// replaceBlocks rebuilds text with each block replaced by render(block).
func replaceBlocks(text string, blocks []block, render func(block) string) string {
	if len(blocks) == 0 {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	prev := 0
	for _, b := range blocks {
		sb.WriteString(text[prev:b.start])
		sb.WriteString(render(b))
		prev = b.end
	}
	sb.WriteString(text[prev:])
	return sb.String()
}

// parseTagArgs reads key:'value' pairs. Later keys win.
func parseTagArgs(args string) map[string]string {
	out := make(map[string]string)
	for _, m := range tagArgRe.FindAllStringSubmatch(args, -1) {
		out[strings.ToLower(m[1])] = m[2] + m[3] + m[4]
	}
	return out
}

// ProcessTags runs the three tag passes in their fixed order: loops, then
// conditionals, then data tags.
func ProcessTags(text string, pc *PageContext) string {
	vocab := pc.Vocabulary()
	text = ExpandLoops(text, pc)
	text = EvaluateConditionals(text, vocab)
	return SubstituteDataTags(text, vocab)
}
