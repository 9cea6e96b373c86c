// Package scoring defines the Scoring product and the calculator that
// derives it from a pair of embeddings and a similarity metric,
// mirroring the source's interference/scoring.py.
package scoring

import "github.com/latticerun/interference/pkg/vector"

// DefaultMatchThreshold is the score at/above which a Scoring is
// considered a match when the caller does not supply its own
// ScoringOptions.
const DefaultMatchThreshold = 0.5

// SimilarityFunc computes a similarity score between two embeddings of
// equal dimensionality. Higher is more similar. The engine's default
// is vector.NanToNumSimilarity, matching nan_to_num(1-cosine(a,b), 0).
type SimilarityFunc func(a, b []float64) float64

// Scoring is the result of comparing one embedding against another:
// the raw similarity score, whether it clears the match threshold, and
// (when produced via a cluster lookup) which tag it was scored
// against.
type Scoring struct {
	SimilarityScore   float64
	IsSimilarityMatch bool
	ScoredTag         string
	HasScoredTag      bool
}

// IsMatch reports whether this Scoring counts as a match.
func (s Scoring) IsMatch() bool { return s.IsSimilarityMatch }

// Score returns the raw similarity score.
func (s Scoring) Score() float64 { return s.SimilarityScore }

// Options configures a Calculator. ScoreToBeMatch is the minimum
// similarity score required for IsSimilarityMatch to be true.
type Options struct {
	ScoreToBeMatch float64
}

// DefaultOptions returns Options using DefaultMatchThreshold.
func DefaultOptions() Options {
	return Options{ScoreToBeMatch: DefaultMatchThreshold}
}

// Calculator computes Scoring values using a SimilarityFunc and
// Options, mirroring ScoringCalculator.__call__.
type Calculator struct {
	Similarity SimilarityFunc
	Options    Options
}

// NewCalculator returns a Calculator. If similarity is nil, it
// defaults to vector.NanToNumSimilarity.
func NewCalculator(similarity SimilarityFunc, opts Options) Calculator {
	if similarity == nil {
		similarity = vector.NanToNumSimilarity
	}
	return Calculator{Similarity: similarity, Options: opts}
}

// Score compares a against b and returns the resulting Scoring.
func (c Calculator) Score(a, b []float64) Scoring {
	s := c.Similarity(a, b)
	return Scoring{
		SimilarityScore:   s,
		IsSimilarityMatch: s >= c.Options.ScoreToBeMatch,
	}
}

// ScoreWithTag is Score with ScoredTag set, used when the comparison
// is against a specific other tag's embedding (e.g. a cluster
// member).
func (c Calculator) ScoreWithTag(a, b []float64, tag string) Scoring {
	s := c.Score(a, b)
	s.ScoredTag = tag
	s.HasScoredTag = true
	return s
}
