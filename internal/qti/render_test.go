package qti_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itemforge/imlkit/internal/iml"
	"github.com/itemforge/imlkit/internal/qti"
)

func render(blocks []iml.Block, opt qti.Options) string {
	return qti.RenderBlocks(blocks, opt)
}

func TestParagraphAlignmentIsIgnored(t *testing.T) {
	got := render([]iml.Block{
		iml.Paragraph{Align: "center", Inlines: []iml.Inline{iml.TextRun{Text: "hello"}}},
	}, qti.Options{})
	assert.Equal(t, "<p>hello</p>", got, "stored alignment must not surface in output")
}

func TestTextIsEscaped(t *testing.T) {
	got := render([]iml.Block{
		iml.Paragraph{Inlines: []iml.Inline{iml.TextRun{Text: `a < b & "c"`}}},
	}, qti.Options{})
	assert.NotContains(t, got, `a < b`)
	assert.Contains(t, got, "&lt;")
}

func TestBlankPlaceholder(t *testing.T) {
	got := render([]iml.Block{
		iml.Paragraph{Inlines: []iml.Inline{iml.BlankMarker{ID: "b1", Size: 10}}},
	}, qti.Options{})
	assert.Contains(t, got, `class="blank-box"`)
	assert.Contains(t, got, `data-blank-id="b1"`)
	assert.Contains(t, got, "width:60px")

	got = render([]iml.Block{
		iml.Paragraph{Inlines: []iml.Inline{iml.BlankMarker{ID: "b2"}}},
	}, qti.Options{})
	assert.Contains(t, got, "width:120px", "no size hint falls back to the default width")
}

func TestMathSpanCarriesNormalizedLatex(t *testing.T) {
	got := render([]iml.Block{
		iml.Paragraph{Inlines: []iml.Inline{iml.InlineMath{Latex: "{ { x+1 } }"}}},
	}, qti.Options{})
	assert.Contains(t, got, `<span class="math" data-latex="x+1">`)
}

func TestMathAttributeQuoteEscaping(t *testing.T) {
	got := render([]iml.Block{
		iml.Paragraph{Inlines: []iml.Inline{iml.InlineMath{Latex: `\text{say "hi"}`}}},
	}, qti.Options{})
	assert.Contains(t, got, "&quot;hi&quot;")
	assert.NotContains(t, got, `data-latex="\text{say "hi"}"`)
}

func TestImageBaseURLRewrite(t *testing.T) {
	blocks := []iml.Block{iml.ImageBlock{Path: `2016\03\img.png`}}

	got := render(blocks, qti.Options{ImageBaseURL: "/api/search/images/"})
	assert.Contains(t, got, `src="/api/search/images/2016/03/img.png"`,
		"backslashes converted, no double slash")

	got = render(blocks, qti.Options{})
	assert.Contains(t, got, `src="2016/03/img.png"`, "no base URL leaves the path relative")
}

func TestImageAbsoluteSourcesAreNotRewritten(t *testing.T) {
	for _, path := range []string{
		"https://cdn.example.com/a.png",
		"http://cdn.example.com/a.png",
		"data:image/png;base64,AAAA",
	} {
		got := render([]iml.Block{iml.ImageBlock{Path: path}}, qti.Options{ImageBaseURL: "/media/"})
		assert.Contains(t, got, `src="`+path+`"`, path)
	}
}

func TestImageStyleDirectives(t *testing.T) {
	got := render([]iml.Block{iml.ImageBlock{Path: "a.png", Width: 300, Align: "center"}}, qti.Options{})
	assert.Contains(t, got, "max-width:100%")
	assert.Contains(t, got, "height:auto")
	assert.Contains(t, got, "width:300px")
	assert.Contains(t, got, "display:block")
	assert.Contains(t, got, "margin:0 auto")

	got = render([]iml.Block{iml.ImageBlock{Path: "a.png", Align: "right"}}, qti.Options{})
	assert.Contains(t, got, "margin-left:auto")
}

func TestTableSerialization(t *testing.T) {
	tbl := iml.Table{
		ColWidths: []int{30, 70},
		Rows: []iml.TableRow{{
			Cells: []iml.TableCell{{
				Blocks:     []iml.Block{iml.Paragraph{Inlines: []iml.Inline{iml.TextRun{Text: "A"}}}},
				ColSpan:    2,
				RowSpan:    1,
				WidthPct:   30,
				VAlign:     "middle",
				Background: "#FF0000",
				Borders:    iml.BorderSet{Top: "solid", Bottom: "solid"},
			}},
		}},
	}
	got := render([]iml.Block{tbl}, qti.Options{})
	assert.Contains(t, got, `<table class="iml-table">`)
	assert.Contains(t, got, `<colgroup><col style="width:30%"><col style="width:70%"></colgroup>`)
	assert.Contains(t, got, `colspan="2"`)
	assert.NotContains(t, got, `rowspan=`, "span of 1 is unset")
	assert.Contains(t, got, "vertical-align:middle")
	assert.Contains(t, got, "background-color:#FF0000")
	assert.Contains(t, got, "border-top:1px solid")
	assert.Contains(t, got, "border-bottom:1px solid")
	assert.NotContains(t, got, "border-left")
}

func TestExampleBoxBorderHandling(t *testing.T) {
	box := iml.ExampleBox{Title: "보기", Blocks: []iml.Block{
		iml.Paragraph{Inlines: []iml.Inline{iml.TextRun{Text: "x"}}},
	}}
	got := render([]iml.Block{box}, qti.Options{})
	assert.Contains(t, got, `class="example-box"`)
	assert.Contains(t, got, "보기")
	assert.False(t, strings.Contains(got, "border:none"), "border is on by default")

	box.NoBorder = true
	box.TitleAlign = "center"
	got = render([]iml.Block{box}, qti.Options{})
	assert.Contains(t, got, "border:none")
	assert.Contains(t, got, "text-align:center")
}
