package qti

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/itemforge/imlkit/internal/iml"
)

// Blank placeholder sizing: width hint is a character-count scale.
const (
	blankPxPerUnit  = 6
	blankDefaultPx  = 120
	essayShortLines = 3
	essayLongLines  = 12
)

// Options influences rich-content serialization for one conversion call.
// Threaded explicitly so conversions stay safely concurrent across items.
type Options struct {
	// ImageBaseURL, when set, is prefixed to every relative image path.
	ImageBaseURL string
}

// renderer carries the per-call options through the block-tree walk.
type renderer struct {
	opt Options
}

// RenderBlocks serializes a block-content tree into a single HTML string
// using the fixed class/data-attribute vocabulary the presentation layer
// progressively enhances (math spans, blank placeholders, iml-table).
func RenderBlocks(blocks []iml.Block, opt Options) string {
	r := renderer{opt: opt}
	return r.blocks(blocks)
}

func (r renderer) blocks(blocks []iml.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch v := blk.(type) {
		case iml.Paragraph:
			b.WriteString(r.paragraph(v))
		case iml.ImageBlock:
			b.WriteString(r.image(v))
		case iml.MathBlock:
			b.WriteString(r.math(v))
		case iml.Table:
			b.WriteString(r.table(v))
		case iml.ExampleBox:
			b.WriteString(r.exampleBox(v))
		}
	}
	return b.String()
}

// paragraph ignores the stored alignment: body text is always rendered
// left-aligned, an intentional normalization across the corpus.
func (r renderer) paragraph(p iml.Paragraph) string {
	var b strings.Builder
	b.WriteString("<p>")
	for _, in := range p.Inlines {
		switch v := in.(type) {
		case iml.TextRun:
			b.WriteString(html.EscapeString(v.Text))
		case iml.InlineMath:
			b.WriteString(r.mathSpan(v.Latex))
		case iml.InlineImage:
			b.WriteString(r.image(iml.ImageBlock{Path: v.Path, Width: v.Width, Height: v.Height}))
		case iml.BlankMarker:
			b.WriteString(r.blank(v))
		}
	}
	b.WriteString("</p>")
	return b.String()
}

// blank renders the fixed-role placeholder the UI wires to an input later.
func (r renderer) blank(m iml.BlankMarker) string {
	width := blankDefaultPx
	if m.Size > 0 {
		width = m.Size * blankPxPerUnit
	}
	return fmt.Sprintf(
		`<span class="blank-box" data-blank-id="%s" style="display:inline-block;width:%dpx;">&nbsp;</span>`,
		attrEscape(m.ID), width)
}

func (r renderer) mathSpan(latex string) string {
	norm := NormalizeLatex(latex)
	return fmt.Sprintf(`<span class="math" data-latex="%s">%s</span>`,
		attrEscape(norm), html.EscapeString(norm))
}

func (r renderer) math(m iml.MathBlock) string {
	if m.Display {
		return "<p>" + r.mathSpan(m.Latex) + "</p>"
	}
	return r.mathSpan(m.Latex)
}

func (r renderer) image(img iml.ImageBlock) string {
	src := r.imageSrc(img.Path)
	styles := []string{"max-width:100%", "height:auto"}
	if img.Width > 0 {
		styles = append(styles, "width:"+strconv.Itoa(img.Width)+"px")
	}
	if img.Height > 0 {
		styles = append(styles, "height:"+strconv.Itoa(img.Height)+"px")
	}
	switch img.Align {
	case "center":
		styles = append(styles, "display:block", "margin:0 auto")
	case "right":
		styles = append(styles, "display:block", "margin-left:auto")
	}
	alt := ""
	if img.Alt != "" {
		alt = fmt.Sprintf(` alt="%s"`, attrEscape(img.Alt))
	}
	return fmt.Sprintf(`<img src="%s"%s style="%s">`, attrEscape(src), alt, strings.Join(styles, "; "))
}

// imageSrc normalizes separators and, when a base URL is configured,
// rewrites relative paths under it without producing double slashes.
func (r renderer) imageSrc(path string) string {
	src := strings.TrimSpace(strings.ReplaceAll(path, `\`, "/"))
	if r.opt.ImageBaseURL == "" || isAbsoluteSrc(src) {
		return src
	}
	return strings.TrimRight(r.opt.ImageBaseURL, "/") + "/" + strings.TrimLeft(src, "/")
}

func isAbsoluteSrc(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "data:") ||
		strings.HasPrefix(src, "//")
}

func (r renderer) table(t iml.Table) string {
	var b strings.Builder
	b.WriteString(`<table class="iml-table">`)
	if len(t.ColWidths) > 0 {
		b.WriteString("<colgroup>")
		for _, w := range t.ColWidths {
			fmt.Fprintf(&b, `<col style="width:%d%%">`, w)
		}
		b.WriteString("</colgroup>")
	}
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row.Cells {
			b.WriteString(r.cell(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func (r renderer) cell(c iml.TableCell) string {
	var attrs strings.Builder
	if c.ColSpan > 1 {
		fmt.Fprintf(&attrs, ` colspan="%d"`, c.ColSpan)
	}
	if c.RowSpan > 1 {
		fmt.Fprintf(&attrs, ` rowspan="%d"`, c.RowSpan)
	}
	var styles []string
	if c.WidthPct > 0 {
		styles = append(styles, fmt.Sprintf("width:%d%%", c.WidthPct))
	}
	if c.HeightPct > 0 {
		styles = append(styles, fmt.Sprintf("height:%d%%", c.HeightPct))
	}
	if c.VAlign != "" {
		styles = append(styles, "vertical-align:"+c.VAlign)
	}
	if c.Background != "" {
		styles = append(styles, "background-color:"+c.Background)
	}
	styles = append(styles, borderStyleDirectives(c.Borders)...)
	if len(styles) > 0 {
		fmt.Fprintf(&attrs, ` style="%s"`, strings.Join(styles, "; "))
	}
	return "<td" + attrs.String() + ">" + r.blocks(c.Blocks) + "</td>"
}

func borderStyleDirectives(bs iml.BorderSet) []string {
	if bs.Empty() {
		return nil
	}
	var out []string
	edge := func(name, style string) {
		if style != "" {
			out = append(out, fmt.Sprintf("border-%s:1px %s", name, style))
		}
	}
	edge("top", bs.Top)
	edge("right", bs.Right)
	edge("bottom", bs.Bottom)
	edge("left", bs.Left)
	return out
}

// exampleBox renders the titled container; border:none only when the
// source explicitly disabled it (bordered is the default).
func (r renderer) exampleBox(box iml.ExampleBox) string {
	var styles []string
	if box.NoBorder {
		styles = append(styles, "border:none")
	}
	style := ""
	if len(styles) > 0 {
		style = fmt.Sprintf(` style="%s"`, strings.Join(styles, "; "))
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="example-box"%s>`, style)
	if box.Title != "" {
		titleStyle := ""
		if box.TitleAlign != "" {
			titleStyle = fmt.Sprintf(` style="text-align:%s"`, attrEscape(box.TitleAlign))
		}
		fmt.Fprintf(&b, `<div class="example-title"%s>%s</div>`, titleStyle, html.EscapeString(box.Title))
	}
	b.WriteString(r.blocks(box.Blocks))
	b.WriteString("</div>")
	return b.String()
}

// attrEscape makes a value safe inside a double-quoted attribute.
func attrEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}
