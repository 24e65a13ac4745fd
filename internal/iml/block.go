package iml

// Block is the closed set of rich-content block kinds shared by question
// bodies, choice labels, explanations, sample answers and table cells.
type Block interface {
	blockKind() string
}

// Paragraph is an ordered run of inline content. Align is preserved from
// the source but deliberately ignored when serializing.
type Paragraph struct {
	Inlines []Inline
	Align   string
}

// ImageBlock is a standalone image. Width/Height are display pixels after
// geometry reconciliation.
type ImageBlock struct {
	Path   string
	Alt    string
	Width  int
	Height int
	Align  string // "", "left", "center", "right"
}

// MathBlock is a formula. The LaTeX source is kept verbatim; normalization
// happens at serialization time.
type MathBlock struct {
	Latex   string
	Display bool // block-level when true
}

// Table is a grid of cells with optional captured column-width ratios.
type Table struct {
	Rows      []TableRow
	ColWidths []int // percentage ratios; empty when not captured
}

// TableRow holds one row's cells in order.
type TableRow struct {
	Cells []TableCell
}

// TableCell holds nested block content plus presentation metadata.
type TableCell struct {
	Blocks     []Block
	ColSpan    int // 1 = unset
	RowSpan    int // 1 = unset
	WidthPct   int
	HeightPct  int
	VAlign     string // "", "top", "middle", "bottom"
	Background string // "#RRGGBB"; empty when unset
	Borders    BorderSet
}

// BorderSet holds the decoded per-edge border styles of a cell.
type BorderSet struct {
	Top    string
	Right  string
	Bottom string
	Left   string
}

// Empty reports whether no edge carries a style.
func (b BorderSet) Empty() bool {
	return b.Top == "" && b.Right == "" && b.Bottom == "" && b.Left == ""
}

// ExampleBox is a titled container of nested blocks ("보기" box).
type ExampleBox struct {
	Title      string
	Blocks     []Block
	NoBorder   bool   // source explicitly disabled the border
	TitleAlign string // optional
}

func (Paragraph) blockKind() string  { return "paragraph" }
func (ImageBlock) blockKind() string { return "image" }
func (MathBlock) blockKind() string  { return "math" }
func (Table) blockKind() string      { return "table" }
func (ExampleBox) blockKind() string { return "example" }

// Inline is the closed set of inline content kinds inside a paragraph.
type Inline interface {
	inlineKind() string
}

// TextRun is a plain text span.
type TextRun struct {
	Text string
}

// InlineMath is a formula flowing with text.
type InlineMath struct {
	Latex string
}

// InlineImage is an image flowing with text.
type InlineImage struct {
	Path   string
	Width  int
	Height int
}

// BlankMarker marks a fill-in blank position inside a paragraph. Size is a
// dialect width hint (character count scale), 0 when absent.
type BlankMarker struct {
	ID   string
	Size int
}

func (TextRun) inlineKind() string     { return "text" }
func (InlineMath) inlineKind() string  { return "math" }
func (InlineImage) inlineKind() string { return "image" }
func (BlankMarker) inlineKind() string { return "blank" }

// BlankMarkers walks blocks recursively and returns every blank marker in
// document order. Used to reconcile declared blanks against markers found
// in the question body.
func BlankMarkers(blocks []Block) []BlankMarker {
	var out []BlankMarker
	for _, b := range blocks {
		switch v := b.(type) {
		case Paragraph:
			for _, in := range v.Inlines {
				if m, ok := in.(BlankMarker); ok {
					out = append(out, m)
				}
			}
		case Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					out = append(out, BlankMarkers(cell.Blocks)...)
				}
			}
		case ExampleBox:
			out = append(out, BlankMarkers(v.Blocks)...)
		}
	}
	return out
}
