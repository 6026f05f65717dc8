package search

// NormalizeLexical scales raw BM25 scores into [0,1] by dividing by the
// maximum. An all-zero score vector uses divisor 1.0 so the output stays
// all zeros instead of NaN.
func NormalizeLexical(scores []float64) []float64 {
	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		maxScore = 1.0
	}

	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / maxScore
	}
	return out
}

// Fuse combines normalized lexical and semantic score vectors with a
// linear blend: weight*lexical + (1-weight)*semantic.
func Fuse(lexical, semantic []float64, weight float64) []float64 {
	out := make([]float64, len(lexical))
	for i := range lexical {
		out[i] = weight*lexical[i] + (1-weight)*semantic[i]
	}
	return out
}
