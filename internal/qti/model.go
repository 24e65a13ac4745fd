// Package qti holds the canonical assessment-item model and the converter
// that derives it from a parsed IML source item. The model is shaped after
// QTI 2.x: response/outcome declarations plus an item body of interactions,
// but it is not a validating implementation of the standard.
package qti

// Cardinality describes the shape of a response value.
type Cardinality string

const (
	CardinalitySingle   Cardinality = "single"
	CardinalityMultiple Cardinality = "multiple"
	CardinalityOrdered  Cardinality = "ordered"
)

// BaseType is the declared value type of a response.
type BaseType string

const (
	BaseTypeIdentifier   BaseType = "identifier"
	BaseTypeString       BaseType = "string"
	BaseTypeBoolean      BaseType = "boolean"
	BaseTypeDirectedPair BaseType = "directedPair"
)

// InteractionType enumerates the candidate-answerable unit kinds.
type InteractionType string

const (
	InteractionChoice       InteractionType = "choice"
	InteractionTextEntry    InteractionType = "textEntry"
	InteractionExtendedText InteractionType = "extendedText"
	InteractionMatch        InteractionType = "match"
	InteractionGapMatch     InteractionType = "gapMatch"
)

// Well-known identifiers used across conversion and scoring.
const (
	ResponseID = "RESPONSE"

	OutcomeScore    = "SCORE"
	OutcomeMaxScore = "MAXSCORE"
	OutcomeFeedback = "FEEDBACK"

	FeedbackCorrect      = "CORRECT"
	FeedbackIncorrect    = "INCORRECT"
	FeedbackExplanation  = "EXPLANATION"
	FeedbackSampleAnswer = "SAMPLE_ANSWER"
)

// AssessmentItem is the canonical item. Derived once per Convert call and
// immutable afterwards.
type AssessmentItem struct {
	Identifier string
	Title      string

	ResponseDecls []ResponseDecl
	OutcomeDecls  []OutcomeDecl

	BodyHTML     string
	Interactions []Interaction
	Feedback     []FeedbackBlock
}

// ResponseDecl records an interaction's expected answer shape and correct
// values. Correct is nil for open-ended interactions.
type ResponseDecl struct {
	Identifier  string
	Cardinality Cardinality
	BaseType    BaseType
	Correct     []string
	Mapping     *Mapping
}

// OutcomeDecl declares a scored outcome variable.
type OutcomeDecl struct {
	Identifier string
	BaseType   string
	Default    float64
}

// Mapping is the partial-credit lookup table: per-value contributions
// summed then clamped to the optional bounds.
type Mapping struct {
	DefaultValue float64
	LowerBound   *float64
	UpperBound   *float64
	Entries      []MapEntry
}

// MapEntry translates one candidate value into a weighted contribution.
// CaseSensitive, when set, overrides the scoring option for this entry.
type MapEntry struct {
	Key           string
	Value         float64
	CaseSensitive *bool
}

// Interaction is one candidate-answerable unit. Fields beyond Type and
// ResponseID are populated per interaction kind.
type Interaction struct {
	Type       InteractionType
	ResponseID string

	// choice
	Choices    []Option
	MaxChoices int
	Shuffle    bool
	Columns    int

	// textEntry
	ExpectedLength int

	// extendedText
	ExpectedLines int

	// match
	SourceSet []Option
	TargetSet []Option

	// gapMatch
	GapChoices []Option
	Gaps       []string
}

// Option is one selectable/associable element within an interaction.
type Option struct {
	Identifier  string
	ContentHTML string
}

// FeedbackBlock is conditional content attached to an item. Only the
// CORRECT/INCORRECT identifiers are auto-shown by the scoring engine;
// any other identifier is a UI concern.
type FeedbackBlock struct {
	OutcomeID   string
	Identifier  string
	ShowHide    string // "show" | "hide"
	ContentHTML string
}
