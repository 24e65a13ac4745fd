package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemforge/imlkit/internal/iml"
	"github.com/itemforge/imlkit/internal/qti"
	"github.com/itemforge/imlkit/internal/scoring"
)

func singleDecl(correct ...string) qti.AssessmentItem {
	return qti.AssessmentItem{
		Identifier: "item",
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalitySingle,
			BaseType:    qti.BaseTypeString,
			Correct:     correct,
		}},
	}
}

func respond(v any) []scoring.Response {
	return []scoring.Response{{ID: qti.ResponseID, Value: v}}
}

func TestSingleCardinalityMatchesAnySynonym(t *testing.T) {
	item := singleDecl("Seoul", "서울")

	res := scoring.Score(item, respond("서울"), scoring.Options{})
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, 1.0, res.MaxScore)

	res = scoring.Score(item, respond("Busan"), scoring.Options{})
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.Score)
}

func TestCaseAndWhitespaceNormalization(t *testing.T) {
	item := singleDecl("Seoul")

	res := scoring.Score(item, respond(" seoul "), scoring.Options{})
	assert.True(t, res.IsCorrect, "default options casefold and trim")

	res = scoring.Score(item, respond(" seoul "), scoring.Options{CaseSensitive: true})
	assert.False(t, res.IsCorrect)

	res = scoring.Score(singleDecl("New York"), respond("new  york"), scoring.Options{})
	assert.True(t, res.IsCorrect, "interior whitespace runs collapse")

	off := false
	res = scoring.Score(singleDecl("New York"), respond("new  york"), scoring.Options{NormalizeWhitespace: &off})
	assert.False(t, res.IsCorrect, "disabling whitespace normalization keeps the run")
}

func TestMultipleCardinalityIsExactSetEquality(t *testing.T) {
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalityMultiple,
			BaseType:    qti.BaseTypeIdentifier,
			Correct:     []string{"A", "B"},
		}},
	}
	tests := []struct {
		name      string
		candidate []string
		correct   bool
	}{
		{"exact set", []string{"A", "B"}, true},
		{"order does not matter", []string{"B", "A"}, true},
		{"strict subset", []string{"A"}, false},
		{"strict superset", []string{"A", "B", "C"}, false},
		{"disjoint", []string{"C"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoring.Score(item, respond(tt.candidate), scoring.Options{})
			assert.Equal(t, tt.correct, res.IsCorrect)
			if !tt.correct {
				assert.False(t, res.PartiallyCorrect, "subset/superset is incorrect, not partial")
			}
		})
	}
}

func TestOrderedCardinalityIsOrderSensitive(t *testing.T) {
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalityOrdered,
			BaseType:    qti.BaseTypeDirectedPair,
			Correct:     []string{"s1 t1", "s2 t2"},
		}},
	}
	assert.True(t, scoring.Score(item, respond([]string{"s1 t1", "s2 t2"}), scoring.Options{}).IsCorrect)
	assert.False(t, scoring.Score(item, respond([]string{"s2 t1", "s1 t2"}), scoring.Options{}).IsCorrect,
		"same pair set in the wrong positions is incorrect")
	assert.False(t, scoring.Score(item, respond([]string{"s1 t1"}), scoring.Options{}).IsCorrect,
		"length mismatch is incorrect")
}

func TestUnknownCardinalityIsIncorrect(t *testing.T) {
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.Cardinality("record"),
			Correct:     []string{"x"},
		}},
	}
	res := scoring.Score(item, respond("x"), scoring.Options{})
	assert.False(t, res.IsCorrect, "unsupported cardinality degrades to incorrect, never panics")
	assert.Equal(t, 1.0, res.MaxScore)
}

func TestMappedScoringClampsToBounds(t *testing.T) {
	lower, upper := 0.0, 2.0
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalityMultiple,
			Mapping: &qti.Mapping{
				DefaultValue: 0,
				LowerBound:   &lower,
				UpperBound:   &upper,
				Entries: []qti.MapEntry{
					{Key: "A", Value: 1},
					{Key: "B", Value: 1},
				},
			},
		}},
	}
	res := scoring.Score(item, respond([]string{"A", "B", "A"}), scoring.Options{})
	assert.Equal(t, 2.0, res.Score, "raw sum 3 clamps to the upper bound")
	assert.Equal(t, 2.0, res.MaxScore)
	assert.True(t, res.IsCorrect, "clamped total reaching max counts as correct")
}

func TestMappedScoringEntryCaseOverride(t *testing.T) {
	cs := true
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalityMultiple,
			Mapping: &qti.Mapping{
				Entries: []qti.MapEntry{
					{Key: "Alpha", Value: 1, CaseSensitive: &cs},
					{Key: "Beta", Value: 1},
				},
			},
		}},
	}
	res := scoring.Score(item, respond([]string{"alpha", "beta"}), scoring.Options{})
	assert.Equal(t, 1.0, res.Score, "entry-level case sensitivity overrides the global option")
}

func TestMappedScoringNilCandidateShortCircuits(t *testing.T) {
	upper := 5.0
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalityMultiple,
			Mapping:     &qti.Mapping{DefaultValue: 3, UpperBound: &upper},
		}},
	}
	res := scoring.Score(item, nil, scoring.Options{})
	assert.Equal(t, 0.0, res.Score, "mapping is not consulted for an absent response")
	assert.Equal(t, 1.0, res.MaxScore)
	assert.False(t, res.IsCorrect)
}

func TestMissingResponsesAreSafelyScored(t *testing.T) {
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{
			{Identifier: "R1", Cardinality: qti.CardinalitySingle, Correct: []string{"a"}},
			{Identifier: "R2", Cardinality: qti.CardinalityMultiple, Correct: []string{"b"}},
		},
	}
	res := scoring.Score(item, nil, scoring.Options{})
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 2.0, res.MaxScore)
	assert.False(t, res.IsCorrect)
	require.Len(t, res.Details, 2)
	for _, d := range res.Details {
		assert.False(t, d.IsCorrect)
	}
}

func TestPartiallyCorrectFlag(t *testing.T) {
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{
			{Identifier: "R1", Cardinality: qti.CardinalitySingle, Correct: []string{"a"}},
			{Identifier: "R2", Cardinality: qti.CardinalitySingle, Correct: []string{"b"}},
		},
	}
	res := scoring.Score(item, []scoring.Response{{ID: "R1", Value: "a"}}, scoring.Options{})
	assert.False(t, res.IsCorrect)
	assert.True(t, res.PartiallyCorrect)
	assert.Equal(t, 1.0, res.Score)
}

func TestFeedbackVisibilityPolicy(t *testing.T) {
	item := singleDecl("a")
	item.Feedback = []qti.FeedbackBlock{
		{OutcomeID: qti.OutcomeFeedback, Identifier: qti.FeedbackCorrect, ShowHide: "show"},
		{OutcomeID: qti.OutcomeFeedback, Identifier: qti.FeedbackIncorrect, ShowHide: "show"},
		{OutcomeID: qti.OutcomeFeedback, Identifier: qti.FeedbackExplanation, ShowHide: "show"},
		{OutcomeID: qti.OutcomeFeedback, Identifier: qti.FeedbackCorrect, ShowHide: "hide"},
	}

	res := scoring.Score(item, respond("a"), scoring.Options{})
	require.Len(t, res.Feedback, 4)
	assert.True(t, res.Feedback[0].Visible, "CORRECT shows on a correct attempt")
	assert.False(t, res.Feedback[1].Visible)
	assert.False(t, res.Feedback[2].Visible, "explanation blocks are never auto-shown")
	assert.False(t, res.Feedback[3].Visible, "hide policy wins even for CORRECT")

	res = scoring.Score(item, respond("z"), scoring.Options{})
	assert.False(t, res.Feedback[0].Visible)
	assert.True(t, res.Feedback[1].Visible, "INCORRECT shows on a failed attempt")
}

func TestBooleanResponseCoercion(t *testing.T) {
	item := qti.AssessmentItem{
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  qti.ResponseID,
			Cardinality: qti.CardinalitySingle,
			BaseType:    qti.BaseTypeBoolean,
			Correct:     []string{"true"},
		}},
	}
	assert.True(t, scoring.Score(item, respond(true), scoring.Options{}).IsCorrect)
	assert.False(t, scoring.Score(item, respond(false), scoring.Options{}).IsCorrect)
}

func TestPartialCreditIgnoresExtras(t *testing.T) {
	assert.Equal(t, 0.5, scoring.PartialCredit([]string{"A", "B"}, []string{"A", "C"}))
	assert.Equal(t, 1.0, scoring.PartialCredit([]string{"A", "B"}, []string{"A", "B", "C"}),
		"extras are ignored, unlike multiple-cardinality exact match")
	assert.Equal(t, 0.0, scoring.PartialCredit(nil, []string{"A"}))
}

// End-to-end: parse → convert → score, per the choice round-trip contract.
func TestEndToEndChoiceRoundTrip(t *testing.T) {
	it, err := iml.Parse(`<item id="q1" type="choice">
  <question><p>2+2=?</p></question>
  <choices>
    <choice id="a"><p>3</p></choice>
    <choice id="b" correct="true"><p>4</p></choice>
  </choices>
</item>`)
	require.NoError(t, err)

	item := qti.Convert(it, qti.Options{})
	require.Len(t, item.Interactions, 1)
	assert.Equal(t, qti.InteractionChoice, item.Interactions[0].Type)
	assert.Equal(t, []string{"b"}, item.ResponseDecls[0].Correct)

	res := scoring.Score(item, respond("b"), scoring.Options{})
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, 1.0, res.MaxScore)
	assert.True(t, res.IsCorrect)

	res = scoring.Score(item, respond("a"), scoring.Options{})
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 1.0, res.MaxScore)
	assert.False(t, res.IsCorrect)
}

// Round-trip identity: the exact correct set for a multi-answer choice item
// must score full marks.
func TestEndToEndMultiChoiceRoundTrip(t *testing.T) {
	it, err := iml.Parse(`<item id="q2" type="choice" multiple="true">
  <choices>
    <choice id="a" correct="true"><p>1</p></choice>
    <choice id="b" correct="true"><p>2</p></choice>
    <choice id="c"><p>3</p></choice>
  </choices>
</item>`)
	require.NoError(t, err)

	item := qti.Convert(it, qti.Options{})
	correct := item.ResponseDecls[0].Correct
	res := scoring.Score(item, respond(correct), scoring.Options{})
	assert.True(t, res.IsCorrect)
	assert.Equal(t, res.MaxScore, res.Score)
}
