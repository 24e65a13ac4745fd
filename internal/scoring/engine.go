// Package scoring evaluates candidate responses against a canonical item's
// declarations. Scoring is total: malformed declarations and missing
// responses degrade to "incorrect", never to an error, so one bad item can
// never take down a batch.
package scoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/itemforge/imlkit/internal/qti"
)

// Response is one candidate answer for a declared interaction. Value may be
// a string, []string, bool, []any of strings, or nil.
type Response struct {
	ID    string
	Value any
	At    time.Time
}

// Options tunes normalization for exact-match scoring.
type Options struct {
	CaseSensitive bool
	// NormalizeWhitespace defaults to on; only an explicit false disables
	// the collapse-and-trim pass.
	NormalizeWhitespace *bool
}

func (o Options) normalizeWhitespace() bool {
	return o.NormalizeWhitespace == nil || *o.NormalizeWhitespace
}

// Detail is the per-response scoring record.
type Detail struct {
	ResponseID string
	Value      any
	Correct    []string
	IsCorrect  bool
	Score      float64
	MaxScore   float64
}

// OutcomeValue is one computed outcome variable.
type OutcomeValue struct {
	ID    string
	Value float64
}

// FeedbackVisibility records whether a declared feedback block should show.
type FeedbackVisibility struct {
	OutcomeID  string
	Identifier string
	Visible    bool
}

// Result aggregates scoring across every response declaration of an item.
type Result struct {
	Score            float64
	MaxScore         float64
	IsCorrect        bool
	PartiallyCorrect bool
	Outcomes         []OutcomeValue
	Feedback         []FeedbackVisibility
	Details          []Detail
}

// Score evaluates responses against the item's declarations. Declarations
// without a matching response are scored as incorrect zero-score answers.
func Score(item qti.AssessmentItem, responses []Response, opt Options) Result {
	byID := make(map[string]Response, len(responses))
	for _, r := range responses {
		byID[r.ID] = r
	}

	res := Result{IsCorrect: true}
	for _, decl := range item.ResponseDecls {
		var value any
		if r, ok := byID[decl.Identifier]; ok {
			value = r.Value
		}
		var d Detail
		if decl.Mapping != nil {
			d = scoreMapped(decl, value, opt)
		} else {
			d = scoreExact(decl, value, opt)
		}
		res.Score += d.Score
		res.MaxScore += d.MaxScore
		if !d.IsCorrect {
			res.IsCorrect = false
		}
		res.Details = append(res.Details, d)
	}
	if len(item.ResponseDecls) == 0 {
		res.IsCorrect = false
	}
	res.PartiallyCorrect = !res.IsCorrect && res.Score > 0

	res.Outcomes = []OutcomeValue{
		{ID: qti.OutcomeScore, Value: res.Score},
		{ID: qti.OutcomeMaxScore, Value: res.MaxScore},
	}
	res.Feedback = feedbackVisibility(item, res.IsCorrect)
	return res
}

// scoreExact compares normalized candidate and correct values per the
// declared cardinality. Max score is fixed at 1 per response.
func scoreExact(decl qti.ResponseDecl, value any, opt Options) Detail {
	d := Detail{
		ResponseID: decl.Identifier,
		Value:      value,
		Correct:    decl.Correct,
		MaxScore:   1,
	}
	if value == nil || len(decl.Correct) == 0 {
		return d
	}
	norm := func(s string) string { return normalize(s, opt) }
	switch decl.Cardinality {
	case qti.CardinalitySingle:
		cand := norm(coerceString(value))
		for _, c := range decl.Correct {
			if cand == norm(c) {
				d.IsCorrect = true
				break
			}
		}
	case qti.CardinalityMultiple:
		cand := toSet(coerceStrings(value), norm)
		correct := toSet(decl.Correct, norm)
		d.IsCorrect = setsEqual(cand, correct)
	case qti.CardinalityOrdered:
		cand := coerceStrings(value)
		if len(cand) == len(decl.Correct) {
			d.IsCorrect = true
			for i := range cand {
				if norm(cand[i]) != norm(decl.Correct[i]) {
					d.IsCorrect = false
					break
				}
			}
		}
	default:
		// unsupported cardinality: incorrect, not an error
	}
	if d.IsCorrect {
		d.Score = 1
	}
	return d
}

// scoreMapped applies the partial-credit mapping: sum matched entry values
// over the candidate list, clamping the running total to the bounds. A nil
// candidate short-circuits without consulting the mapping.
func scoreMapped(decl qti.ResponseDecl, value any, opt Options) Detail {
	m := decl.Mapping
	max := 1.0
	if m.UpperBound != nil {
		max = *m.UpperBound
	}
	d := Detail{
		ResponseID: decl.Identifier,
		Value:      value,
		Correct:    decl.Correct,
		MaxScore:   max,
	}
	if value == nil {
		d.MaxScore = 1
		return d
	}
	total := m.DefaultValue
	for _, cand := range coerceStrings(value) {
		for _, e := range m.Entries {
			if mapKeyMatches(e, cand, opt) {
				total += e.Value
				break
			}
		}
		total = clamp(total, m.LowerBound, m.UpperBound)
	}
	d.Score = total
	d.IsCorrect = total >= max
	return d
}

func mapKeyMatches(e qti.MapEntry, cand string, opt Options) bool {
	cs := opt.CaseSensitive
	if e.CaseSensitive != nil {
		cs = *e.CaseSensitive
	}
	if cs {
		return strings.TrimSpace(cand) == strings.TrimSpace(e.Key)
	}
	return strings.EqualFold(strings.TrimSpace(cand), strings.TrimSpace(e.Key))
}

func clamp(v float64, lower, upper *float64) float64 {
	if lower != nil && v < *lower {
		v = *lower
	}
	if upper != nil && v > *upper {
		v = *upper
	}
	return v
}

// feedbackVisibility applies the fixed CORRECT/INCORRECT policy; any other
// feedback identifier is never auto-shown by the engine.
func feedbackVisibility(item qti.AssessmentItem, isCorrect bool) []FeedbackVisibility {
	var out []FeedbackVisibility
	for _, fb := range item.Feedback {
		visible := false
		if fb.ShowHide == "show" {
			switch {
			case strings.EqualFold(fb.Identifier, qti.FeedbackCorrect):
				visible = isCorrect
			case strings.EqualFold(fb.Identifier, qti.FeedbackIncorrect):
				visible = !isCorrect
			}
		}
		out = append(out, FeedbackVisibility{
			OutcomeID:  fb.OutcomeID,
			Identifier: fb.Identifier,
			Visible:    visible,
		})
	}
	return out
}

// normalize casefolds unless the case-sensitive option is set, and
// collapses interior whitespace runs unless explicitly disabled.
func normalize(s string, opt Options) string {
	if opt.normalizeWhitespace() {
		s = strings.Join(strings.Fields(s), " ")
	}
	if !opt.CaseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case []any:
		if len(t) > 0 {
			return coerceString(t[0])
		}
	}
	return ""
}

func coerceStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, coerceString(e))
		}
		return out
	case string:
		return []string{t}
	case bool:
		return []string{strconv.FormatBool(t)}
	}
	return nil
}

func toSet(values []string, norm func(string) string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[norm(v)] = struct{}{}
	}
	return m
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
