package qti

import (
	"strconv"

	"github.com/itemforge/imlkit/internal/iml"
)

// Convert maps a parsed source item into the canonical assessment model.
// It is total: any item that parsed must convert. Options are captured per
// call, never package state.
func Convert(it *iml.Item, opt Options) AssessmentItem {
	out := AssessmentItem{
		Identifier: it.ID,
		Title:      it.ID,
		BodyHTML:   RenderBlocks(it.Question, opt),
		OutcomeDecls: []OutcomeDecl{
			{Identifier: OutcomeScore, BaseType: "float", Default: 0},
			{Identifier: OutcomeMaxScore, BaseType: "float", Default: maxScoreFor(it)},
		},
	}

	switch d := it.Detail.(type) {
	case iml.ChoiceDetail:
		convertChoice(&out, d, opt)
	case iml.TrueFalseDetail:
		convertTrueFalse(&out, d)
	case iml.ShortAnswerDetail:
		convertShortAnswer(&out, d)
	case iml.FillBlankDetail:
		convertFillBlank(&out, it, d, opt)
	case iml.MatchingDetail:
		convertMatching(&out, d, opt)
	case iml.EssayDetail:
		convertEssay(&out, it.Kind)
	default:
		// detail-less item (defensive): open-ended extended text
		convertEssay(&out, KindFallback)
	}

	if len(it.Explanation) > 0 {
		out.Feedback = append(out.Feedback, FeedbackBlock{
			OutcomeID:   OutcomeFeedback,
			Identifier:  FeedbackExplanation,
			ShowHide:    "hide",
			ContentHTML: RenderBlocks(it.Explanation, opt),
		})
	}
	if d, ok := it.Detail.(iml.EssayDetail); ok && len(d.SampleAnswer) > 0 {
		// rendered after any explanation-derived block
		out.Feedback = append(out.Feedback, FeedbackBlock{
			OutcomeID:   OutcomeFeedback,
			Identifier:  FeedbackSampleAnswer,
			ShowHide:    "hide",
			ContentHTML: RenderBlocks(d.SampleAnswer, opt),
		})
	}
	return out
}

// KindFallback labels the defensive no-detail conversion arm.
const KindFallback = iml.Kind("fallback")

func maxScoreFor(it *iml.Item) float64 {
	if it.Score > 0 {
		return it.Score
	}
	return 1
}

func convertChoice(out *AssessmentItem, d iml.ChoiceDetail, opt Options) {
	var correct []string
	choices := make([]Option, 0, len(d.Choices))
	for _, c := range d.Choices {
		choices = append(choices, Option{
			Identifier:  c.ID,
			ContentHTML: RenderBlocks(c.Content, opt),
		})
		if c.Correct {
			correct = append(correct, c.ID)
		}
	}
	card := CardinalitySingle
	maxChoices := 1
	if len(correct) > 1 {
		card = CardinalityMultiple
		maxChoices = len(d.Choices)
	}
	out.ResponseDecls = append(out.ResponseDecls, ResponseDecl{
		Identifier:  ResponseID,
		Cardinality: card,
		BaseType:    BaseTypeIdentifier,
		Correct:     correct,
	})
	out.Interactions = append(out.Interactions, Interaction{
		Type:       InteractionChoice,
		ResponseID: ResponseID,
		Choices:    choices,
		MaxChoices: maxChoices,
		Shuffle:    d.Shuffle,
		Columns:    d.Columns,
	})
}

func convertTrueFalse(out *AssessmentItem, d iml.TrueFalseDetail) {
	out.ResponseDecls = append(out.ResponseDecls, ResponseDecl{
		Identifier:  ResponseID,
		Cardinality: CardinalitySingle,
		BaseType:    BaseTypeBoolean,
		Correct:     []string{strconv.FormatBool(d.Answer)},
	})
	out.Interactions = append(out.Interactions, Interaction{
		Type:       InteractionChoice,
		ResponseID: ResponseID,
		MaxChoices: 1,
		Choices: []Option{
			{Identifier: "true", ContentHTML: "<p>True</p>"},
			{Identifier: "false", ContentHTML: "<p>False</p>"},
		},
	})
}

func convertShortAnswer(out *AssessmentItem, d iml.ShortAnswerDetail) {
	out.ResponseDecls = append(out.ResponseDecls, ResponseDecl{
		Identifier:  ResponseID,
		Cardinality: CardinalitySingle,
		BaseType:    BaseTypeString,
		Correct:     append([]string(nil), d.Answers...),
	})
	out.Interactions = append(out.Interactions, Interaction{
		Type:           InteractionTextEntry,
		ResponseID:     ResponseID,
		ExpectedLength: d.MaxLength,
	})
}

// convertFillBlank synthesizes one gap choice per declared blank, keyed on
// its first acceptable answer. Blank markers found in the body but missing
// from the declarations still become gaps (with no gap choice), so a
// declaration/marker divergence never drops a blank from either side.
func convertFillBlank(out *AssessmentItem, it *iml.Item, d iml.FillBlankDetail, opt Options) {
	declared := make(map[string]bool, len(d.Blanks))
	var correct []string
	var gapChoices []Option
	var gaps []string
	for _, b := range d.Blanks {
		declared[b.ID] = true
		gaps = append(gaps, b.ID)
		if len(b.Answers) == 0 {
			continue
		}
		gapChoices = append(gapChoices, Option{
			Identifier:  b.Answers[0],
			ContentHTML: b.Answers[0],
		})
		correct = append(correct, b.Answers[0]+" "+b.ID)
	}
	for _, m := range iml.BlankMarkers(it.Question) {
		if !declared[m.ID] {
			gaps = append(gaps, m.ID)
		}
	}
	out.ResponseDecls = append(out.ResponseDecls, ResponseDecl{
		Identifier:  ResponseID,
		Cardinality: CardinalityMultiple,
		BaseType:    BaseTypeDirectedPair,
		Correct:     correct,
	})
	out.Interactions = append(out.Interactions, Interaction{
		Type:       InteractionGapMatch,
		ResponseID: ResponseID,
		GapChoices: gapChoices,
		Gaps:       gaps,
	})
}

// convertMatching declares the correct pairs as an ordered sequence of
// "source target" values, one per declared pair in declaration order.
func convertMatching(out *AssessmentItem, d iml.MatchingDetail, opt Options) {
	toOptions := func(entries []iml.MatchEntry) []Option {
		var opts []Option
		for _, e := range entries {
			opts = append(opts, Option{Identifier: e.ID, ContentHTML: RenderBlocks(e.Content, opt)})
		}
		return opts
	}
	var correct []string
	for _, p := range d.Pairs {
		correct = append(correct, p.SourceID+" "+p.TargetID)
	}
	out.ResponseDecls = append(out.ResponseDecls, ResponseDecl{
		Identifier:  ResponseID,
		Cardinality: CardinalityOrdered,
		BaseType:    BaseTypeDirectedPair,
		Correct:     correct,
	})
	out.Interactions = append(out.Interactions, Interaction{
		Type:       InteractionMatch,
		ResponseID: ResponseID,
		SourceSet:  toOptions(d.Sources),
		TargetSet:  toOptions(d.Targets),
	})
}

// convertEssay declares no correct response: essays are open-ended and the
// scoring engine treats them as manual. Expected line counts are fixed per
// sub-type, not derived from content.
func convertEssay(out *AssessmentItem, kind iml.Kind) {
	lines := essayLongLines
	if kind == iml.KindEssayShort {
		lines = essayShortLines
	}
	out.ResponseDecls = append(out.ResponseDecls, ResponseDecl{
		Identifier:  ResponseID,
		Cardinality: CardinalitySingle,
		BaseType:    BaseTypeString,
	})
	out.Interactions = append(out.Interactions, Interaction{
		Type:          InteractionExtendedText,
		ResponseID:    ResponseID,
		ExpectedLines: lines,
	})
}
