package scoring

// PartialCredit returns the fraction of the correct set present in the
// candidate set, ignoring extra candidate values. This is a deliberately
// looser metric than multiple-cardinality exact matching (which demands
// set equality) and exists for callers that want lenient progress scoring;
// the main Score path never uses it.
func PartialCredit(correct, candidate []string) float64 {
	if len(correct) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(candidate))
	for _, c := range candidate {
		have[c] = struct{}{}
	}
	hit := 0
	for _, c := range correct {
		if _, ok := have[c]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(correct))
}
