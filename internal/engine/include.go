// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"
)

// DefaultMaxIncludeDepth caps nested includes for a single render.
const DefaultMaxIncludeDepth = 20

// includeRe matches both include syntaxes:
//
//	[%load_template file:'path'%]
//	{{ include("path") }}
var includeRe = regexp.MustCompile(
	`\[%\s*load_template\s+file:\s*(?:'([^']*)'|"([^"]*)")\s*%\]` +
		`|\{\{\s*include\(\s*(?:"([^"]*)"|'([^']*)')\s*\)\s*\}\}`,
)

var (
	errIncludeCycle = errors.New("cycle")
	errIncludeDepth = errors.New("max depth")
)

// includeStack tracks the in-flight include paths of one render.
type includeStack struct {
	paths []string
	max   int
}

func newIncludeStack(max int) *includeStack {
	if max <= 0 {
		max = DefaultMaxIncludeDepth
	}
	return &includeStack{max: max}
}

func (s *includeStack) push(p string) error {
	if slices.Contains(s.paths, p) {
		return errIncludeCycle
	}
	if len(s.paths) >= s.max {
		return errIncludeDepth
	}
	s.paths = append(s.paths, p)
	return nil
}

func (s *includeStack) pop() {
	if len(s.paths) > 0 {
		s.paths = s.paths[:len(s.paths)-1]
	}
}

// ExpandIncludes resolves every include directive in text, recursively.
// base is the logical directory of the template text came from ("" for the
// theme root). Text without directives is returned unchanged.
func (e *Engine) ExpandIncludes(text, base string) string {
	return e.expandIncludes(text, base, newIncludeStack(e.opts.MaxIncludeDepth), nil)
}

func (e *Engine) expandIncludes(text, base string, stack *includeStack, dbg *DebugInfo) string {
	matches := includeRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	// Back to front so earlier offsets stay valid.
	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		target := ""
		for g := 1; g < len(m)/2; g++ {
			if m[2*g] >= 0 {
				target = text[m[2*g]:m[2*g+1]]
				break
			}
		}
		replacement := e.resolveInclude(target, base, stack, dbg)
		out = out[:m[0]] + replacement + out[m[1]:]
	}
	return out
}

func (e *Engine) resolveInclude(target, base string, stack *includeStack, dbg *DebugInfo) string {
	resolved, found := e.locateInclude(target, base)
	if !found {
		slog.Debug("include not found", "target", target, "base", base)
		return e.templates.missingText(resolved)
	}

	if err := stack.push(resolved); err != nil {
		slog.Warn("include skipped", "path", resolved, "reason", err, "depth", len(stack.paths))
		return fmt.Sprintf("<!-- include skipped (%s): %s -->", err, resolved)
	}
	defer stack.pop()

	text := e.readTemplate(resolved, dbg)
	dbg.addInclude(resolved)
	return e.expandIncludes(text, path.Dir(resolved), stack, dbg)
}

// locateInclude maps an include target to a logical path. Absolute targets
// resolve from the theme root. Relative targets are tried against the
// including template's directory, then the templates/ folder, then the root.
func (e *Engine) locateInclude(target, base string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}
	if strings.HasPrefix(target, "/") {
		p := CleanPath(target)
		return p, e.templates.Exists(p)
	}

	var candidates []string
	if base != "" && base != "." {
		candidates = append(candidates, path.Join(base, target))
	}
	candidates = append(candidates, path.Join("templates", target), target)

	for _, c := range candidates {
		c = CleanPath(c)
		if e.templates.Exists(c) {
			return c, true
		}
	}
	return CleanPath(target), false
}
