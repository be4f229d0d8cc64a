// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"strconv"
	"strings"
)

var (
	// truthyWords is the block-level truthy set. Strings outside it,
	// including ordinary non-empty text, are false.
	truthyWords = []string{"y", "yes", "true", "1"}
	// falsyWords is the loop-item set. Any other non-empty string is true.
	falsyWords = []string{"n", "no", "false", "0"}
)

func isIfName(name string) bool {
	return strings.EqualFold(name, "if")
}

// EvaluateConditionals resolves [%if expr%]...[%else%]...[%/if%] blocks
// with the block-level truthiness rules, repeating for nested blocks until
// nothing changes or maxTagPasses is reached.
func EvaluateConditionals(text string, vocab Vocab) string {
	return evaluateIfBlocks(text, func(expr string) (bool, bool) {
		return evalCondition(expr, vocab, truthyBlock), true
	}, nil)
}

// evaluateInlineConditionals applies the loop-item truthiness rules. Blocks
// that sit inside a nested loop are left for that loop to evaluate, and
// blocks whose expression still names a page-level tag are left for the
// page-level pass.
func evaluateInlineConditionals(text string, item Vocab) string {
	return evaluateIfBlocks(text, func(expr string) (bool, bool) {
		if dataTagRe.MatchString(SubstituteDataTags(expr, item)) {
			return false, false
		}
		return evalCondition(expr, item, truthyInline), true
	}, func(s string) []block {
		return findBlocks(s, isLoopName)
	})
}

// evaluateIfBlocks replaces each outermost if block with the branch chosen
// by decide. When decide reports it cannot decide, the block's tags are kept
// and the blocks nested inside it are evaluated in place.
func evaluateIfBlocks(text string, decide func(expr string) (result, decided bool), shielded func(string) []block) string {
	for i := 0; i < maxTagPasses; i++ {
		blocks := findBlocks(text, isIfName)
		if shielded != nil {
			blocks = outside(blocks, shielded(text))
		}
		if len(blocks) == 0 {
			break
		}
		current := text
		next := replaceBlocks(current, blocks, func(b block) string {
			result, decided := decide(b.args)
			if !decided {
				return current[b.start:b.innerStart] +
					evaluateIfBlocks(b.inner(current), decide, shielded) +
					current[b.innerEnd:b.end]
			}
			then, otherwise := splitElse(current, b)
			if result {
				return then
			}
			return otherwise
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

// outside drops blocks that start inside any of the shield spans.
func outside(blocks, shields []block) []block {
	if len(shields) == 0 {
		return blocks
	}
	kept := blocks[:0:0]
	for _, b := range blocks {
		inside := false
		for _, s := range shields {
			if b.start > s.start && b.start < s.end {
				inside = true
				break
			}
		}
		if !inside {
			kept = append(kept, b)
		}
	}
	return kept
}

// splitElse returns the then/else branches of an if block. Only an else at
// the block's own nesting level counts.
func splitElse(text string, b block) (string, string) {
	depth := 0
	for _, tok := range b.tokens {
		switch {
		case isIfName(tok.name) && !tok.closing:
			depth++
		case isIfName(tok.name) && tok.closing:
			depth--
		case strings.EqualFold(tok.name, "else") && !tok.closing && depth == 0:
			return text[b.innerStart:tok.start], text[tok.end:b.innerEnd]
		}
	}
	return b.inner(text), ""
}

// operand is one side of a condition after tag resolution.
type operand struct {
	value      any
	unresolved bool // still contains a [@...@] placeholder
}

func resolveOperand(raw string, vocab Vocab) operand {
	s := strings.TrimSpace(raw)
	if m := dataTagRe.FindStringSubmatch(s); m != nil && m[0] == s {
		if v, ok := vocab[m[1]]; ok {
			return operand{value: v}
		}
		return operand{value: s, unresolved: true}
	}
	s = SubstituteDataTags(s, vocab)
	if dataTagRe.MatchString(s) {
		return operand{value: s, unresolved: true}
	}
	return operand{value: unquote(s)}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// splitComparison splits on the first == or != in expr.
func splitComparison(expr string) (lhs, op, rhs string, ok bool) {
	eq := strings.Index(expr, "==")
	ne := strings.Index(expr, "!=")
	switch {
	case eq < 0 && ne < 0:
		return "", "", "", false
	case ne < 0 || (eq >= 0 && eq < ne):
		return expr[:eq], "==", expr[eq+2:], true
	default:
		return expr[:ne], "!=", expr[ne+2:], true
	}
}

func evalCondition(expr string, vocab Vocab, truthy func(any) bool) bool {
	if lhs, op, rhs, ok := splitComparison(expr); ok {
		left := resolveOperand(lhs, vocab)
		if left.unresolved {
			return false
		}
		right := resolveOperand(rhs, vocab)
		equal := formatValue(left.value) == formatValue(right.value)
		if op == "==" {
			return equal
		}
		return !equal
	}

	v := resolveOperand(expr, vocab)
	if v.unresolved {
		return false
	}
	return truthy(v.value)
}

// truthyBlock: bools literally, numbers above zero, strings only when they
// are one of truthyWords.
func truthyBlock(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t > 0
	case float64:
		return t > 0
	case string:
		return containsFold(truthyWords, strings.TrimSpace(t))
	}
	return false
}

// truthyInline: bools literally, numbers above zero, strings when non-empty
// and not one of falsyWords.
func truthyInline(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t > 0
	case float64:
		return t > 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" || containsFold(falsyWords, s) {
			return false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f > 0
		}
		return true
	}
	return false
}

func containsFold(words []string, s string) bool {
	for _, w := range words {
		if strings.EqualFold(w, s) {
			return true
		}
	}
	return false
}
