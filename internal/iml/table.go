package iml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/itemforge/imlkit/internal/markup"
)

var (
	rowTags  = []string{"tr", "row"}
	cellTags = []string{"td", "cell"}
)

// borderStyles decodes the packed 4-valued border attribute. Anything out
// of range renders as no border.
var borderStyles = map[int]string{
	0: "", // none
	1: "solid",
	2: "dashed",
	3: "double",
}

// parseTable reads a table tolerant of both tag dialects (tr/td and
// row/cell). Column-width ratios may be declared on the table element as a
// comma-separated percentage list.
func parseTable(el *etree.Element, blankSeq *int) Table {
	t := Table{ColWidths: parseColWidths(el)}
	for _, rowEl := range markup.Children(el, rowTags...) {
		var row TableRow
		for _, cellEl := range markup.Children(rowEl, cellTags...) {
			row.Cells = append(row.Cells, parseCell(cellEl, blankSeq))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func parseColWidths(el *etree.Element) []int {
	raw, ok := markup.Attr(el, "colWidths", "widths")
	if !ok {
		return nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func parseCell(el *etree.Element, blankSeq *int) TableCell {
	c := TableCell{
		Blocks:    parseBlocks(el, blankSeq),
		WidthPct:  markup.IntAttr(el, 0, "widthPercent", "wper", "width"),
		HeightPct: markup.IntAttr(el, 0, "heightPercent", "hper", "height"),
		VAlign:    strings.ToLower(markup.AttrDefault(el, "", "valign", "verticalAlign")),
	}
	c.ColSpan, c.RowSpan = reconcileSpan(el)
	c.Background = decodeBackground(el)
	c.Borders = decodeBorders(el)
	return c
}

// reconcileSpan accepts either the combined count attribute ("cols,rows")
// or discrete colspan/rowspan attributes. A span of 1 means unset and is
// normalized to 1 either way.
func reconcileSpan(el *etree.Element) (colSpan, rowSpan int) {
	colSpan, rowSpan = 1, 1
	if raw, ok := markup.Attr(el, "count"); ok {
		cols, rows := markup.SplitPacked(raw, ",")
		if n, err := strconv.Atoi(cols); err == nil && n > 1 {
			colSpan = n
		}
		if n, err := strconv.Atoi(rows); err == nil && n > 1 {
			rowSpan = n
		}
		return colSpan, rowSpan
	}
	if n := markup.IntAttr(el, 1, "colspan"); n > 1 {
		colSpan = n
	}
	if n := markup.IntAttr(el, 1, "rowspan"); n > 1 {
		rowSpan = n
	}
	return colSpan, rowSpan
}

// decodeBackground turns the packed RGB integer attribute into a "#RRGGBB"
// display color. Negative and absent values mean no background.
func decodeBackground(el *etree.Element) string {
	raw, ok := markup.Attr(el, "bgColor", "background")
	if !ok {
		return ""
	}
	// tolerate an already-decoded color
	if strings.HasPrefix(raw, "#") {
		return raw
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return ""
	}
	return fmt.Sprintf("#%06X", n&0xFFFFFF)
}

// decodeBorders expands the packed 4-valued border attribute
// ("top,right,bottom,left" style codes) into per-edge styles. A short list
// repeats its last value across the remaining edges.
func decodeBorders(el *etree.Element) BorderSet {
	raw, ok := markup.Attr(el, "border", "borders")
	if !ok {
		return BorderSet{}
	}
	parts := strings.Split(raw, ",")
	styles := make([]string, 4)
	last := ""
	for i := 0; i < 4; i++ {
		if i < len(parts) {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[i])); err == nil {
				last = borderStyles[n]
			} else {
				last = ""
			}
		}
		styles[i] = last
	}
	return BorderSet{Top: styles[0], Right: styles[1], Bottom: styles[2], Left: styles[3]}
}
