package iml

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/itemforge/imlkit/internal/markup"
)

// Geometry constants for image reconciliation: percentage sizes scale
// against a nominal page width, literal pixel sizes are capped to the
// maximum display dimension.
const (
	nominalPageWidth = 760
	maxImageDim      = 700
)

var (
	paragraphTags = []string{"p", "para", "paragraph", "text"}
	imageTags     = []string{"img", "image", "picture"}
	mathTags      = []string{"math", "formula", "latex"}
	tableTags     = []string{"table", "tbl"}
	exampleTags   = []string{"example", "exampleBox", "box"}
	stringTags    = []string{"string", "span", "run"}
	blankTags     = []string{"blank", "blankBox", "gap"}
)

// structuralTags are variant scaffolding that can appear as siblings of
// content (when the question wrapper is missing) and must not be mistaken
// for rich content.
var structuralTags = []string{
	"choices", "choice", "answers", "answer", "correctAnswer",
	"blanks", "sources", "targets", "leftItems", "rightItems",
	"correctMatches", "sampleAnswer", "typeInfo", "itemType",
	"explanation", "commentary", "solution", "question", "stem", "problem",
}

// parseBlocks walks an element's children dispatching by tag. Unknown
// elements carrying text degrade to a synthesized paragraph, and an element
// whose children all yielded nothing but whose subtree still carries text
// yields one fallback paragraph: content is never silently lost to
// structure. blankSeq numbers id-less blank markers across the whole walk
// so synthesized ids stay unique between sibling paragraphs.
func parseBlocks(el *etree.Element, blankSeq *int) []Block {
	if el == nil {
		return nil
	}
	var out []Block
	for _, c := range el.ChildElements() {
		switch {
		case tagIn(c.Tag, paragraphTags):
			out = append(out, parseParagraph(c, blankSeq))
		case tagIn(c.Tag, imageTags):
			out = append(out, parseImageBlock(c))
		case tagIn(c.Tag, mathTags):
			out = append(out, MathBlock{
				Latex:   markup.DeepText(c),
				Display: markup.BoolAttr(c, false, "display", "block"),
			})
		case tagIn(c.Tag, tableTags):
			out = append(out, parseTable(c, blankSeq))
		case tagIn(c.Tag, exampleTags):
			out = append(out, parseExampleBox(c, blankSeq))
		case tagIn(c.Tag, structuralTags):
			// variant scaffolding, handled by the per-variant extractors
		default:
			if txt := markup.DeepText(c); txt != "" {
				out = append(out, fallbackParagraph(txt))
			}
		}
	}
	if len(out) == 0 {
		// aggregate everything outside structural scaffolding, including
		// text that trails an unrecognized empty child
		if txt := markup.DeepTextExcluding(el, structuralTags...); txt != "" {
			out = append(out, fallbackParagraph(txt))
		}
	}
	return out
}

func fallbackParagraph(text string) Paragraph {
	return Paragraph{Inlines: []Inline{TextRun{Text: text}}}
}

// parseParagraph walks a paragraph's child nodes in order, preserving the
// interleaving of text, math, images and blank markers.
func parseParagraph(el *etree.Element, blankSeq *int) Paragraph {
	p := Paragraph{Align: markup.AttrDefault(el, "", "align")}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if txt := collapseSpace(t.Data); txt != "" {
				p.Inlines = append(p.Inlines, TextRun{Text: txt})
			}
		case *etree.Element:
			switch {
			case tagIn(t.Tag, stringTags):
				p.Inlines = append(p.Inlines, TextRun{Text: markup.DeepText(t)})
			case tagIn(t.Tag, mathTags):
				p.Inlines = append(p.Inlines, InlineMath{Latex: markup.DeepText(t)})
			case tagIn(t.Tag, imageTags):
				img := parseImageBlock(t)
				p.Inlines = append(p.Inlines, InlineImage{Path: img.Path, Width: img.Width, Height: img.Height})
			case tagIn(t.Tag, blankTags):
				*blankSeq++
				p.Inlines = append(p.Inlines, parseBlankMarker(t, *blankSeq))
			default:
				if txt := markup.DeepText(t); txt != "" {
					p.Inlines = append(p.Inlines, TextRun{Text: txt})
				}
			}
		}
	}
	p.Inlines = trimEdgeSpace(p.Inlines)
	return p
}

// collapseSpace folds whitespace runs down to single spaces while keeping a
// single boundary space on either side, so words stay separated from
// adjacent inline elements. Runs that are whitespace only (inter-element
// indentation) vanish.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		out = " " + out
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		out += " "
	}
	return out
}

// trimEdgeSpace drops the boundary spaces that collapseSpace kept when they
// end up at the very start or end of the paragraph.
func trimEdgeSpace(inlines []Inline) []Inline {
	if len(inlines) == 0 {
		return inlines
	}
	if tr, ok := inlines[0].(TextRun); ok {
		tr.Text = strings.TrimLeft(tr.Text, " ")
		inlines[0] = tr
	}
	last := len(inlines) - 1
	if tr, ok := inlines[last].(TextRun); ok {
		tr.Text = strings.TrimRight(tr.Text, " ")
		inlines[last] = tr
	}
	return inlines
}

func parseBlankMarker(el *etree.Element, seq int) BlankMarker {
	id, ok := markup.Attr(el, "id", "blankId", "no")
	if !ok {
		id = "blank-" + strconv.Itoa(seq)
	}
	return BlankMarker{
		ID:   id,
		Size: markup.IntAttr(el, 0, "size", "width", "len"),
	}
}

// parseImageBlock resolves the source path and reconciles geometry.
//
// The path may live in the element text (older vintages) when it looks like
// a file path, else in a short list of attributes in priority order.
func parseImageBlock(el *etree.Element) ImageBlock {
	img := ImageBlock{
		Path: resolveImagePath(el),
		Alt:  markup.AttrDefault(el, "", "alt", "title"),
	}
	img.Width, img.Height = reconcileImageSize(el)
	img.Align = resolveImageAlign(el)
	return img
}

func resolveImagePath(el *etree.Element) string {
	if txt := markup.Text(el); txt != "" && looksLikePath(txt) {
		return txt
	}
	return markup.AttrDefault(el, "", "src", "href", "file", "path")
}

// looksLikePath accepts anything with a separator or an extension dot.
func looksLikePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.Contains(s, ".")
}

// reconcileImageSize prefers a percentage pair scaled against the nominal
// page width; literal pixel pairs larger than the display maximum are
// downscaled proportionally.
func reconcileImageSize(el *etree.Element) (w, h int) {
	wPct := markup.IntAttr(el, 0, "widthPercent", "wper")
	hPct := markup.IntAttr(el, 0, "heightPercent", "hper")
	if wPct > 0 {
		w = wPct * nominalPageWidth / 100
		h = hPct * nominalPageWidth / 100
		return w, h
	}
	w = markup.IntAttr(el, 0, "width", "w")
	h = markup.IntAttr(el, 0, "height", "h")
	if w > maxImageDim || h > maxImageDim {
		max := w
		if h > max {
			max = h
		}
		w = w * maxImageDim / max
		h = h * maxImageDim / max
	}
	return w, h
}

// resolveImageAlign decodes the small alignment vocabulary. A dedicated
// center flag wins over the generic align attribute when both are present.
func resolveImageAlign(el *etree.Element) string {
	if markup.BoolAttr(el, false, "center") {
		return "center"
	}
	switch strings.ToLower(markup.AttrDefault(el, "", "align")) {
	case "left":
		return "left"
	case "center", "middle":
		return "center"
	case "right":
		return "right"
	}
	return ""
}

func parseExampleBox(el *etree.Element, blankSeq *int) ExampleBox {
	box := ExampleBox{
		Title:      markup.AttrDefault(el, "", "title", "caption"),
		TitleAlign: markup.AttrDefault(el, "", "titleAlign"),
		Blocks:     parseBlocks(el, blankSeq),
	}
	// border defaults on; only an explicit "no border" disables it
	if v, ok := markup.Attr(el, "border"); ok && !markup.ParseBool(v, true) {
		box.NoBorder = true
	}
	return box
}

func tagIn(tag string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(tag, n) {
			return true
		}
	}
	return false
}

