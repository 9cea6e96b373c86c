package evaluation

import (
	"testing"

	"github.com/latticerun/interference/pkg/ecm"
	"github.com/latticerun/interference/pkg/scoring"
	"github.com/stretchr/testify/require"
)

func TestEvaluateClustersTwoTightGroups(t *testing.T) {
	proc, err := ecm.New(1.0)
	require.NoError(t, err)

	instances := map[string][]float64{
		"a1": {0, 0},
		"a2": {0.1, 0},
		"b1": {10, 10},
		"b2": {10.1, 10},
	}
	for _, tag := range []string{"a1", "a2", "b1", "b2"} {
		require.NoError(t, proc.Process(tag, instances[tag]))
	}

	report, err := EvaluateClusters(instances, proc)
	require.NoError(t, err)
	require.Equal(t, 2, report.NumClusters)
	require.Equal(t, 4, report.NumInstances)
	require.Greater(t, report.SilhouetteScore, 0.5)
}

func TestEvaluateClustersFallsBackWithOneCluster(t *testing.T) {
	proc, err := ecm.New(100.0)
	require.NoError(t, err)
	instances := map[string][]float64{"a": {0, 0}, "b": {1, 1}}
	for tag, v := range instances {
		require.NoError(t, proc.Process(tag, v))
	}
	report, err := EvaluateClusters(instances, proc)
	require.NoError(t, err)
	require.Equal(t, -1.0, report.SilhouetteScore)
}

func TestComputeClusterScoreSingleMember(t *testing.T) {
	score, err := computeClusterScore([][]float64{{1, 0}})
	require.NoError(t, err)
	require.Equal(t, 0.0, score)
}

func TestEvaluateMatchesBasic(t *testing.T) {
	values := map[string][]scoring.Scoring{
		"q1": {
			{SimilarityScore: 0.9, IsSimilarityMatch: true, ScoredTag: "t1", HasScoredTag: true},
			{SimilarityScore: 0.2, IsSimilarityMatch: false, ScoredTag: "t2", HasScoredTag: true},
		},
		"q2": {
			{SimilarityScore: 0.1, IsSimilarityMatch: false, ScoredTag: "t1", HasScoredTag: true},
		},
	}
	report, err := EvaluateMatches(values)
	require.NoError(t, err)
	require.Len(t, report.ByInstance, 2)
	require.InDelta(t, 0.5, report.PercentAtLeastOneMatch, 1e-9)
}

func TestEvaluateMatchesEmpty(t *testing.T) {
	report, err := EvaluateMatches(map[string][]scoring.Scoring{})
	require.NoError(t, err)
	require.Equal(t, 0.0, report.PercentAtLeastOneMatch)
	require.Empty(t, report.ByInstance)
}
