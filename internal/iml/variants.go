package iml

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/itemforge/imlkit/internal/markup"
)

var (
	choiceListTags    = []string{"choices", "answers", "distractors"}
	choiceTags        = []string{"choice", "answer", "option"}
	correctAnswerTags = []string{"correctAnswer", "answerKey", "key"}
	answerTags        = []string{"answer", "value"}
	blankListTags     = []string{"blanks"}
	blankDeclTags     = []string{"blank"}
	sourceListTags    = []string{"sources", "leftItems", "left"}
	targetListTags    = []string{"targets", "rightItems", "right"}
	matchEntryTags    = []string{"matchItem", "item", "entry"}
	matchListTags     = []string{"correctMatches", "matches"}
	matchPairTags     = []string{"match", "pair"}
	sampleAnswerTags  = []string{"sampleAnswer", "modelAnswer"}
)

// parseChoice extracts the choice list plus its flags, then resolves
// correctness (see resolveChoiceCorrect).
func parseChoice(el *etree.Element) ChoiceDetail {
	list := markup.Child(el, choiceListTags...)
	holder := list
	if holder == nil {
		holder = el
	}
	d := ChoiceDetail{
		MultiAnswer: markup.BoolAttr(el, false, "multiple", "multiAnswer"),
		Shuffle:     markup.BoolAttr(el, false, "shuffle", "random"),
		Columns:     markup.IntAttr(el, 0, "columns", "cols"),
	}
	if list != nil {
		if !d.MultiAnswer {
			d.MultiAnswer = markup.BoolAttr(list, false, "multiple", "multiAnswer")
		}
		if !d.Shuffle {
			d.Shuffle = markup.BoolAttr(list, false, "shuffle", "random")
		}
		if d.Columns == 0 {
			d.Columns = markup.IntAttr(list, 0, "columns", "cols")
		}
	}
	for i, cEl := range markup.Children(holder, choiceTags...) {
		id, ok := markup.Attr(cEl, "id", "no")
		if !ok {
			id = "c" + strconv.Itoa(i+1)
		}
		d.Choices = append(d.Choices, ChoiceOption{
			ID:      id,
			Content: parseBlocks(cEl, new(int)),
			Correct: markup.BoolAttr(cEl, false, "correct", "answer", "isAnswer"),
		})
	}
	resolveChoiceCorrect(el, &d)
	return d
}

// resolveChoiceCorrect runs only when no per-choice flag was set. The
// top-level correct-answer element's text is either a bare choice id or a
// packed "index:label" string whose leading integer is a 1-based index into
// the choices in source order. An unresolvable value leaves every choice
// unflagged rather than guessing.
func resolveChoiceCorrect(el *etree.Element, d *ChoiceDetail) {
	for _, c := range d.Choices {
		if c.Correct {
			return
		}
	}
	ca := markup.Child(el, correctAnswerTags...)
	if ca == nil {
		return
	}
	txt := markup.DeepText(ca)
	if txt == "" {
		return
	}
	for i := range d.Choices {
		if d.Choices[i].ID == txt {
			d.Choices[i].Correct = true
			return
		}
	}
	if idx, ok := markup.LeadingInt(txt); ok && idx >= 1 && idx <= len(d.Choices) {
		d.Choices[idx-1].Correct = true
	}
}

func parseTrueFalse(el *etree.Element) TrueFalseDetail {
	if v, ok := markup.Attr(el, "answer", "correct"); ok {
		return TrueFalseDetail{Answer: markup.ParseBool(v, false)}
	}
	if ca := markup.Child(el, correctAnswerTags...); ca != nil {
		return TrueFalseDetail{Answer: markup.ParseBool(markup.DeepText(ca), false)}
	}
	return TrueFalseDetail{}
}

func parseShortAnswer(el *etree.Element) ShortAnswerDetail {
	d := ShortAnswerDetail{
		CaseSensitive: markup.BoolAttr(el, false, "caseSensitive", "matchCase"),
		MaxLength:     markup.IntAttr(el, 0, "maxLength", "maxLen"),
	}
	d.Answers = collectAnswerStrings(el)
	return d
}

// collectAnswerStrings gathers acceptable answers from an answers list, the
// correct-answer element, or repeated answer children, whichever the
// dialect used.
func collectAnswerStrings(el *etree.Element) []string {
	var out []string
	appendText := func(e *etree.Element) {
		if txt := markup.DeepText(e); txt != "" {
			out = append(out, txt)
		}
	}
	if list := markup.Child(el, choiceListTags...); list != nil {
		for _, a := range markup.Children(list, answerTags...) {
			appendText(a)
		}
		if len(out) > 0 {
			return out
		}
		appendText(list)
		return out
	}
	if ca := markup.Child(el, correctAnswerTags...); ca != nil {
		children := markup.Children(ca, answerTags...)
		if len(children) == 0 {
			appendText(ca)
			return out
		}
		for _, a := range children {
			appendText(a)
		}
		return out
	}
	for _, a := range markup.Children(el, answerTags...) {
		appendText(a)
	}
	return out
}

func parseFillBlank(el *etree.Element) FillBlankDetail {
	var d FillBlankDetail
	holder := markup.Child(el, blankListTags...)
	if holder == nil {
		holder = el
	}
	for i, bEl := range markup.Children(holder, blankDeclTags...) {
		id, ok := markup.Attr(bEl, "id", "no")
		if !ok {
			id = "blank-" + strconv.Itoa(i+1)
		}
		decl := BlankDecl{ID: id}
		for _, a := range markup.Children(bEl, answerTags...) {
			if txt := markup.DeepText(a); txt != "" {
				decl.Answers = append(decl.Answers, txt)
			}
		}
		if len(decl.Answers) == 0 {
			if txt := markup.Text(bEl); txt != "" {
				decl.Answers = append(decl.Answers, txt)
			}
		}
		d.Blanks = append(d.Blanks, decl)
	}
	return d
}

func parseMatching(el *etree.Element) MatchingDetail {
	var d MatchingDetail
	d.Sources = parseMatchEntries(markup.Child(el, sourceListTags...), "s")
	d.Targets = parseMatchEntries(markup.Child(el, targetListTags...), "t")

	valid := func(entries []MatchEntry, id string) bool {
		for _, e := range entries {
			if e.ID == id {
				return true
			}
		}
		return false
	}
	if list := markup.Child(el, matchListTags...); list != nil {
		for _, pEl := range markup.Children(list, matchPairTags...) {
			src := markup.AttrDefault(pEl, "", "source", "from", "left")
			tgt := markup.AttrDefault(pEl, "", "target", "to", "right")
			// drop pairs that reference a missing entry on either side
			if valid(d.Sources, src) && valid(d.Targets, tgt) {
				d.Pairs = append(d.Pairs, MatchPair{SourceID: src, TargetID: tgt})
			}
		}
	}
	return d
}

func parseMatchEntries(list *etree.Element, prefix string) []MatchEntry {
	if list == nil {
		return nil
	}
	var out []MatchEntry
	for i, e := range markup.Children(list, matchEntryTags...) {
		id, ok := markup.Attr(e, "id", "no")
		if !ok {
			id = prefix + strconv.Itoa(i+1)
		}
		out = append(out, MatchEntry{ID: id, Content: parseBlocks(e, new(int))})
	}
	return out
}

func parseEssay(el *etree.Element) EssayDetail {
	d := EssayDetail{
		MinLength: markup.IntAttr(el, 0, "minLength", "minLen"),
		MaxLength: markup.IntAttr(el, 0, "maxLength", "maxLen"),
	}
	if sa := markup.Child(el, sampleAnswerTags...); sa != nil {
		d.SampleAnswer = parseBlocks(sa, new(int))
	}
	return d
}
