// Package iml parses the IML exam-item markup dialect into a normalized
// source model. The corpus it was built for is large and historically
// inconsistent, so the parser is tolerant by policy: malformed XML is the
// only fatal condition, everything else degrades to a documented default.
package iml

// Kind identifies one of the seven item variants.
type Kind string

const (
	KindChoice      Kind = "choice"
	KindTrueFalse   Kind = "truefalse"
	KindShortAnswer Kind = "shortanswer"
	KindFillBlank   Kind = "fillblank"
	KindMatching    Kind = "matching"
	KindEssayShort  Kind = "essay_short"
	KindEssayLong   Kind = "essay_long"
)

// Difficulty is the three-level difficulty scale carried by item metadata.
type Difficulty string

const (
	DifficultyHigh   Difficulty = "high"
	DifficultyMedium Difficulty = "medium"
	DifficultyLow    Difficulty = "low"
)

// Item is a parsed source item. Instances are created once per Parse call
// and are immutable afterwards.
type Item struct {
	ID          string
	Kind        Kind
	Question    []Block
	Explanation []Block
	Score       float64 // 0 = unset; converter falls back to 1 point
	Difficulty  Difficulty

	// Provenance metadata; labels only, packed codes are stripped.
	CurriculumUnit      string
	AchievementStandard string
	SourceCitation      string

	Detail Detail
}

// Detail is the closed set of per-variant payloads. Exactly one
// implementation exists per Kind; dispatch over it should be exhaustive.
type Detail interface {
	detailKind() Kind
}

// ChoiceDetail backs KindChoice.
type ChoiceDetail struct {
	Choices     []ChoiceOption
	MultiAnswer bool
	Shuffle     bool
	Columns     int // 0 = renderer default
}

// ChoiceOption is one selectable answer.
type ChoiceOption struct {
	ID      string
	Content []Block
	Correct bool
}

// TrueFalseDetail backs KindTrueFalse.
type TrueFalseDetail struct {
	Answer bool
}

// ShortAnswerDetail backs KindShortAnswer. Answers are acceptable synonyms.
type ShortAnswerDetail struct {
	Answers       []string
	CaseSensitive bool
	MaxLength     int // 0 = unlimited
}

// FillBlankDetail backs KindFillBlank.
type FillBlankDetail struct {
	Blanks []BlankDecl
}

// BlankDecl declares one blank and its acceptable answers.
type BlankDecl struct {
	ID      string
	Answers []string
}

// MatchingDetail backs KindMatching.
type MatchingDetail struct {
	Sources []MatchEntry
	Targets []MatchEntry
	Pairs   []MatchPair
}

// MatchEntry is one matchable element on either side.
type MatchEntry struct {
	ID      string
	Content []Block
}

// MatchPair is a declared correct (source, target) association.
type MatchPair struct {
	SourceID string
	TargetID string
}

// EssayDetail backs both essay kinds; the Item.Kind distinguishes them.
type EssayDetail struct {
	SampleAnswer []Block
	MinLength    int
	MaxLength    int
}

func (ChoiceDetail) detailKind() Kind      { return KindChoice }
func (TrueFalseDetail) detailKind() Kind   { return KindTrueFalse }
func (ShortAnswerDetail) detailKind() Kind { return KindShortAnswer }
func (FillBlankDetail) detailKind() Kind   { return KindFillBlank }
func (MatchingDetail) detailKind() Kind    { return KindMatching }
func (EssayDetail) detailKind() Kind       { return KindEssayShort }

// ParseError is the single fatal error kind the parser produces. It is
// scoped to one item: callers batching many documents decide whether to
// skip or abort.
type ParseError struct {
	Stage string // "xml", "structure"
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "iml: " + e.Stage + ": " + e.Msg + ": " + e.Err.Error()
	}
	return "iml: " + e.Stage + ": " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }
