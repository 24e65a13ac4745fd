package iml

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/itemforge/imlkit/internal/markup"
)

// Tag and attribute spellings accepted across corpus vintages. Ordered by
// how common each spelling is; first hit wins.
var (
	itemTags        = []string{"item", "examItem", "questionItem"}
	wrapperTags     = []string{"iml", "itemBank", "itemRecord", "record", "document"}
	questionTags    = []string{"question", "stem", "problem"}
	bodyWrapperTags = []string{"content", "body"}
	explanationTags = []string{"explanation", "commentary", "solution"}

	typeAttrs       = []string{"type"}
	variantAttrs    = []string{"itemType", "variant"}
	legacyTypeAttrs = []string{"questionType", "question_type", "examType"}
	typeElements    = []string{"typeInfo", "itemType"}

	difficultyAttrs = []string{"difficulty", "level", "grade"}
	scoreAttrs      = []string{"score", "point", "points", "weight"}

	curriculumAttrs  = []string{"curriculum", "unit", "chapter"}
	achievementAttrs = []string{"achievement", "standard", "achievementStandard"}
	citationAttrs    = []string{"source", "origin", "citation"}
)

// typeCodes maps every known item-type token to its Kind. Tokens are the
// first ":"-delimited field of the raw attribute, lower-cased.
var typeCodes = map[string]Kind{
	"choice": KindChoice, "select": KindChoice, "mc": KindChoice, "1": KindChoice,
	"truefalse": KindTrueFalse, "ox": KindTrueFalse, "tf": KindTrueFalse, "2": KindTrueFalse,
	"short": KindShortAnswer, "shortanswer": KindShortAnswer, "sa": KindShortAnswer, "3": KindShortAnswer,
	"blank": KindFillBlank, "fillblank": KindFillBlank, "fib": KindFillBlank, "4": KindFillBlank,
	"match": KindMatching, "matching": KindMatching, "5": KindMatching,
	"shortessay": KindEssayShort, "essayshort": KindEssayShort, "6": KindEssayShort,
	"essay": KindEssayLong, "essaylong": KindEssayLong, "longessay": KindEssayLong, "7": KindEssayLong,
}

// difficultyLabels maps localized and english labels to the difficulty
// scale. The numeric half of packed values maps 1/2/3 = high/medium/low.
var difficultyLabels = map[string]Difficulty{
	"상": DifficultyHigh, "중": DifficultyMedium, "하": DifficultyLow,
	"high": DifficultyHigh, "medium": DifficultyMedium, "low": DifficultyLow,
	"1": DifficultyHigh, "2": DifficultyMedium, "3": DifficultyLow,
}

// Parse converts one raw IML document into a source item.
//
// Malformed XML and an element-less document are the only fatal conditions;
// every other structural gap resolves to a documented default. The returned
// error is always a *ParseError.
func Parse(raw string) (*Item, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, &ParseError{Stage: "xml", Msg: "malformed document", Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Stage: "structure", Msg: "document has no root element"}
	}

	el := locateItem(root)
	kind := resolveKind(el)

	it := &Item{
		ID:         resolveID(el),
		Kind:       kind,
		Score:      markup.FloatAttr(el, 0, scoreAttrs...),
		Difficulty: resolveDifficulty(el),

		CurriculumUnit:      packedLabel(el, curriculumAttrs),
		AchievementStandard: packedLabel(el, achievementAttrs),
		SourceCitation:      packedLabel(el, citationAttrs),
	}

	qEl := markup.Child(el, questionTags...)
	// one blank-marker sequence per document, so id-less blanks in the
	// question and explanation never collide
	blankSeq := new(int)
	it.Question = parseQuestionBody(el, qEl, blankSeq)
	it.Explanation = parseExplanation(el, qEl, blankSeq)

	switch kind {
	case KindChoice:
		it.Detail = parseChoice(el)
	case KindTrueFalse:
		it.Detail = parseTrueFalse(el)
	case KindShortAnswer:
		it.Detail = parseShortAnswer(el)
	case KindFillBlank:
		it.Detail = parseFillBlank(el)
	case KindMatching:
		it.Detail = parseMatching(el)
	case KindEssayShort, KindEssayLong:
		it.Detail = parseEssay(el)
	}
	return it, nil
}

// locateItem accepts an item element at the root, searches up to two levels
// of known wrappers, and otherwise falls back to the root itself. Never
// fails: a missing wrapper is not an error in this corpus.
func locateItem(root *etree.Element) *etree.Element {
	for _, t := range itemTags {
		if strings.EqualFold(root.Tag, t) {
			return root
		}
	}
	for _, t := range wrapperTags {
		if strings.EqualFold(root.Tag, t) {
			if found := markup.Find(root, 2, itemTags...); found != nil {
				return found
			}
			break
		}
	}
	if found := markup.Find(root, 2, itemTags...); found != nil {
		return found
	}
	return root
}

// resolveKind tries the short-form type attribute, the variant attribute,
// the legacy long-form attributes, and finally a nested type element. Some
// short-form values ship descriptive text after a delimiter ("choice:객관식");
// only the leading token counts. Unknown codes default to Choice to keep
// ingestion of the long tail of historical items alive.
func resolveKind(el *etree.Element) Kind {
	candidates := make([]string, 0, 4)
	if v, ok := markup.Attr(el, typeAttrs...); ok {
		candidates = append(candidates, v)
	}
	if v, ok := markup.Attr(el, variantAttrs...); ok {
		candidates = append(candidates, v)
	}
	if v, ok := markup.Attr(el, legacyTypeAttrs...); ok {
		candidates = append(candidates, v)
	}
	if te := markup.Child(el, typeElements...); te != nil {
		candidates = append(candidates, markup.DeepText(te))
	}
	for _, raw := range candidates {
		code, _ := markup.SplitPacked(raw, ":", ",")
		if k, ok := typeCodes[strings.ToLower(code)]; ok {
			return k
		}
	}
	return KindChoice
}

// resolveID prefers the id attribute and synthesizes a UUID when the source
// omits one, so batch bookkeeping never sees an empty identifier.
func resolveID(el *etree.Element) string {
	if v, ok := markup.Attr(el, "id", "itemId", "identifier"); ok {
		return v
	}
	return "item-" + uuid.NewString()
}

// resolveDifficulty parses the compact difficulty attribute, which may be a
// bare label, a bare numeric code, or a packed "code:label" pair. The label
// wins when both halves are present. Default is medium.
func resolveDifficulty(el *etree.Element) Difficulty {
	raw, ok := markup.Attr(el, difficultyAttrs...)
	if !ok {
		return DifficultyMedium
	}
	code, label := markup.SplitPacked(raw, ":", ",")
	if d, ok := difficultyLabels[strings.ToLower(label)]; ok {
		return d
	}
	if d, ok := difficultyLabels[strings.ToLower(code)]; ok {
		return d
	}
	return DifficultyMedium
}

// packedLabel extracts the label half of a packed "code,label" provenance
// attribute, falling back to the whole value when unpacked.
func packedLabel(el *etree.Element, names []string) string {
	raw, ok := markup.Attr(el, names...)
	if !ok {
		return ""
	}
	code, label := markup.SplitPacked(raw, ",", ":")
	if label != "" {
		return label
	}
	return code
}

// parseQuestionBody descends into the nested body wrapper when present,
// else parses the question element's direct children; with no question
// element at all it parses the item element itself.
func parseQuestionBody(item, qEl *etree.Element, blankSeq *int) []Block {
	src := qEl
	if src == nil {
		src = item
	}
	if inner := markup.Child(src, bodyWrapperTags...); inner != nil {
		src = inner
	}
	return parseBlocks(src, blankSeq)
}

// parseExplanation checks both a top-level explanation element and one
// nested inside the question wrapper.
func parseExplanation(item, qEl *etree.Element, blankSeq *int) []Block {
	ex := markup.Child(item, explanationTags...)
	if ex == nil && qEl != nil {
		ex = markup.Child(qEl, explanationTags...)
	}
	if ex == nil {
		return nil
	}
	return parseBlocks(ex, blankSeq)
}
