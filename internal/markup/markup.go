// Package markup provides structural helpers over an element tree.
//
// The IML corpus spans several historical schema dialects, so nearly every
// lookup is "try this spelling, then that one". These helpers keep that
// tolerance in one place: tag and attribute matching is case-insensitive
// and driven by ordered name lists, so a new dialect spelling is a one-line
// addition at the call site rather than a new branch in the parser.
package markup

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Child returns the first direct child element whose tag matches any of the
// given names (case-insensitive), honoring the order children appear in the
// document. Returns nil when nothing matches.
func Child(el *etree.Element, names ...string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if tagMatches(c.Tag, names) {
			return c
		}
	}
	return nil
}

// Children returns every direct child element whose tag matches any of the
// given names, in document order.
func Children(el *etree.Element, names ...string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if tagMatches(c.Tag, names) {
			out = append(out, c)
		}
	}
	return out
}

// Find searches descendants breadth-first down to maxDepth levels (1 = direct
// children) and returns the first element whose tag matches any name.
func Find(el *etree.Element, maxDepth int, names ...string) *etree.Element {
	if el == nil || maxDepth <= 0 {
		return nil
	}
	frontier := []*etree.Element{el}
	for depth := 0; depth < maxDepth; depth++ {
		var next []*etree.Element
		for _, e := range frontier {
			for _, c := range e.ChildElements() {
				if tagMatches(c.Tag, names) {
					return c
				}
				next = append(next, c)
			}
		}
		frontier = next
	}
	return nil
}

// Attr looks up an attribute by trying each name in order (case-insensitive)
// and returns the first non-empty trimmed value.
func Attr(el *etree.Element, names ...string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, name := range names {
		for _, a := range el.Attr {
			if strings.EqualFold(a.Key, name) {
				if v := strings.TrimSpace(a.Value); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

// AttrDefault is Attr with a fallback value.
func AttrDefault(el *etree.Element, def string, names ...string) string {
	if v, ok := Attr(el, names...); ok {
		return v
	}
	return def
}

// IntAttr parses the first matching attribute as an integer, returning def
// when absent or unparsable.
func IntAttr(el *etree.Element, def int, names ...string) int {
	v, ok := Attr(el, names...)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// FloatAttr parses the first matching attribute as a float, returning def
// when absent or unparsable.
func FloatAttr(el *etree.Element, def float64, names ...string) float64 {
	v, ok := Attr(el, names...)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// BoolAttr parses the first matching attribute as a boolean. Accepts the
// spellings seen across corpus vintages: true/false, 1/0, y/n, yes/no, o/x.
func BoolAttr(el *etree.Element, def bool, names ...string) bool {
	v, ok := Attr(el, names...)
	if !ok {
		return def
	}
	return ParseBool(v, def)
}

// ParseBool maps a dialect truth token to a bool, returning def for
// anything unrecognized.
func ParseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "y", "yes", "o":
		return true
	case "false", "0", "n", "no", "x":
		return false
	}
	return def
}

// Text returns the element's own leading text, trimmed.
func Text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// DeepText concatenates every character-data node in the subtree, in
// document order, and trims the result.
func DeepText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	collectText(el, &b)
	return strings.TrimSpace(b.String())
}

func collectText(el *etree.Element, b *strings.Builder) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			collectText(t, b)
		}
	}
}

// DeepTextExcluding is DeepText with subtrees under any of the named tags
// skipped (case-insensitive). Character data outside the skipped subtrees
// is collected wherever it sits, including after the last child element.
func DeepTextExcluding(el *etree.Element, skip ...string) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	collectTextExcluding(el, &b, skip)
	return strings.TrimSpace(b.String())
}

func collectTextExcluding(el *etree.Element, b *strings.Builder, skip []string) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			if !tagMatches(t.Tag, skip) {
				collectTextExcluding(t, b, skip)
			}
		}
	}
}

// SplitPacked splits a packed "code<sep>label" value at the first occurrence
// of any separator, returning both halves trimmed. Values without a
// separator come back as (value, "").
func SplitPacked(v string, seps ...string) (code, label string) {
	v = strings.TrimSpace(v)
	idx := -1
	for _, sep := range seps {
		if i := strings.Index(v, sep); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	if idx < 0 {
		return v, ""
	}
	return strings.TrimSpace(v[:idx]), strings.TrimSpace(v[idx+1:])
}

// LeadingInt extracts a leading decimal integer from s, tolerating trailing
// junk ("2:④" yields 2). Returns false when s does not start with a digit.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func tagMatches(tag string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(tag, n) {
			return true
		}
	}
	return false
}
