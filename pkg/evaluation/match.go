package evaluation

import (
	"github.com/latticerun/interference/pkg/scoring"
	"github.com/latticerun/interference/pkg/stats"
)

// InstanceMatchReport is one tag's entry in a MatchReport, mirroring
// the per-instance dict built by eval_matches.
type InstanceMatchReport struct {
	Value             string
	NumMatches        int
	NumPotential      int
	AverageScore      float64
	AverageMatchScore float64
	Matches           []scoring.Scoring
}

// MatchReport summarizes match quality across every scored instance,
// mirroring evaluation/match.py's eval_matches.
type MatchReport struct {
	NumMatches             stats.NumericStats
	NumPotential           stats.NumericStats
	ScoreDistribution      stats.Distribution
	MatchScoreDist         stats.Distribution
	PercentAtLeastOneMatch float64
	ByInstance             []InstanceMatchReport
}

// EvaluateMatches builds a MatchReport from values, a map of tag to
// the Scoring list computed for it (e.g. via an engine facade's
// GetScoringsFor).
func EvaluateMatches(values map[string][]scoring.Scoring) (MatchReport, error) {
	numMatches := stats.NewCounter[int]()
	numPotential := stats.NewCounter[int]()
	scoreBuckets := stats.NewCounter[string]()
	matchScoreBuckets := stats.NewCounter[string]()

	byInstance := make([]InstanceMatchReport, 0, len(values))
	var withAtLeastOne int

	for tag, scorings := range values {
		var matches []scoring.Scoring
		var allScores []float64
		var matchScores []float64
		for _, s := range scorings {
			allScores = append(allScores, s.Score())
			scoreBuckets.Add(stats.ToRange(s.Score(), 5))
			if s.IsMatch() {
				matches = append(matches, s)
				matchScores = append(matchScores, s.Score())
				matchScoreBuckets.Add(stats.ToRange(s.Score(), 5))
			}
		}

		numMatches.Add(len(matches))
		numPotential.Add(len(scorings))
		if len(matches) > 0 {
			withAtLeastOne++
		}

		avgScore, _, _, err := stats.FromFloat64Slice(allScores)
		if err != nil {
			return MatchReport{}, err
		}
		avgMatchScore, _, _, err := stats.FromFloat64Slice(matchScores)
		if err != nil {
			return MatchReport{}, err
		}

		byInstance = append(byInstance, InstanceMatchReport{
			Value:             tag,
			NumMatches:        len(matches),
			NumPotential:      len(scorings),
			AverageScore:      avgScore,
			AverageMatchScore: avgMatchScore,
			Matches:           matches,
		})
	}

	numMatchesStats, err := stats.FromIntCounter(numMatches)
	if err != nil {
		return MatchReport{}, err
	}
	numPotentialStats, err := stats.FromIntCounter(numPotential)
	if err != nil {
		return MatchReport{}, err
	}

	var pctAtLeastOne float64
	if len(values) > 0 {
		pctAtLeastOne = float64(withAtLeastOne) / float64(len(values))
	}

	return MatchReport{
		NumMatches:             numMatchesStats,
		NumPotential:           numPotentialStats,
		ScoreDistribution:      stats.FromStringCounter(scoreBuckets),
		MatchScoreDist:         stats.FromStringCounter(matchScoreBuckets),
		PercentAtLeastOneMatch: pctAtLeastOne,
		ByInstance:             byInstance,
	}, nil
}
