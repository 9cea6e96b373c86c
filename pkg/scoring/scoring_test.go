package scoring

import "testing"

func TestDefaultCalculatorUsesNanToNumSimilarity(t *testing.T) {
	c := NewCalculator(nil, DefaultOptions())
	s := c.Score([]float64{1, 0}, []float64{1, 0})
	if s.Score() != 1 {
		t.Fatalf("Score = %v, want 1 for identical vectors", s.Score())
	}
	if !s.IsMatch() {
		t.Fatalf("expected identical-vector score to clear the match threshold")
	}
}

func TestCalculatorRespectsThreshold(t *testing.T) {
	c := NewCalculator(func(a, b []float64) float64 { return 0.6 }, Options{ScoreToBeMatch: 0.5})
	s := c.Score([]float64{0}, []float64{0})
	if !s.IsMatch() {
		t.Fatalf("expected score 0.6 to clear threshold 0.5")
	}
}

func TestScoreWithTagSetsScoredTag(t *testing.T) {
	c := NewCalculator(nil, DefaultOptions())
	s := c.ScoreWithTag([]float64{1, 0}, []float64{0, 1}, "other")
	if s.ScoredTag != "other" || !s.HasScoredTag {
		t.Fatalf("expected ScoredTag to be set, got %+v", s)
	}
}
