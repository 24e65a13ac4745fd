package qti

import (
	"strings"
	"unicode"
)

// nativeScripts are the Unicode ranges the downstream math renderer cannot
// typeset inline with math mode; runs of these get wrapped in \text{}.
var nativeScripts = []*unicode.RangeTable{
	unicode.Hangul,
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
}

// NormalizeLatex applies the serialization-time cleanup pass to raw LaTeX
// captured from IML math elements: balanced outer-brace unwrapping, brace
// and operator whitespace collapse, and wrapping native-script runs in
// \text{} for the math renderer. The whole pass is idempotent.
//
// The native-script wrap is a known-lossy heuristic: a formula that uses a
// glyph from these ranges as a mathematical symbol gets wrapped anyway; the
// source format offers no signal to tell the two apart.
func NormalizeLatex(s string) string {
	s = unwrapOuterBraces(strings.TrimSpace(s))
	s = collapseWhitespace(s)
	s = tightenBraces(s)
	s = tightenOperators(s)
	s = wrapNativeScript(s)
	return s
}

// unwrapOuterBraces strips "{ ... }" wrappers that enclose the whole
// expression, repeating until the outermost braces no longer wrap it.
func unwrapOuterBraces(s string) string {
	for len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		depth := 0
		wraps := true
		for i, r := range s {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 && i != len(s)-1 {
					wraps = false
				}
			}
			if !wraps {
				break
			}
		}
		if !wraps || depth != 0 {
			return s
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// collapseWhitespace reduces every whitespace run to a single space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// tightenBraces removes spaces directly after '{' and directly before '}',
// so "{ { x " collapses to "{{x".
func tightenBraces(s string) string {
	for {
		next := strings.ReplaceAll(s, "{ ", "{")
		next = strings.ReplaceAll(next, " }", "}")
		if next == s {
			return s
		}
		s = next
	}
}

// tightenOperators removes whitespace around superscript and subscript
// operators.
func tightenOperators(s string) string {
	for _, op := range []string{"^", "_"} {
		s = strings.ReplaceAll(s, " "+op, op)
		s = strings.ReplaceAll(s, op+" ", op)
	}
	return s
}

// wrapNativeScript wraps each maximal run of native-script runes in
// \text{...}. Runs already inside a \text{ group are left alone so the
// pass stays idempotent.
func wrapNativeScript(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(runes); {
		if !isNativeScript(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isNativeScript(runes[j]) {
			j++
		}
		run := string(runes[i:j])
		if insideTextGroup(runes, i, j) {
			b.WriteString(run)
		} else {
			b.WriteString(`\text{` + run + `}`)
		}
		i = j
	}
	return b.String()
}

func isNativeScript(r rune) bool {
	for _, rt := range nativeScripts {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}

// insideTextGroup reports whether the run [start, end) is immediately
// preceded by `\text{` and followed by `}`.
func insideTextGroup(runes []rune, start, end int) bool {
	const marker = `\text{`
	if start < len(marker) || end >= len(runes) || runes[end] != '}' {
		return false
	}
	return string(runes[start-len(marker):start]) == marker
}
