// Package evaluation computes cluster-quality and match-quality
// reports over a processor's current state, mirroring the source's
// evaluation/cluster.py and evaluation/match.py.
package evaluation

import (
	"math"

	"github.com/latticerun/interference/pkg/processor"
	"github.com/latticerun/interference/pkg/stats"
	"github.com/latticerun/interference/pkg/vector"
)

// dispersionScale is sqrt(5)/5, the normalizing constant the source
// divides the dispersion delta by before squaring it.
var dispersionScale = math.Sqrt(5) / 5

// ClusterReport summarizes the current clustering quality of a
// processor over a tag->embedding instance map.
type ClusterReport struct {
	SilhouetteScore     float64
	ClusterScore        float64
	NumClusters         int
	NumInstances        int
	InstancesPerCluster stats.NumericStats
}

// EvaluateClusters builds a ClusterReport from instances (the
// facade's tag->embedding map) and the processor currently holding
// them.
func EvaluateClusters(instances map[string][]float64, proc processor.Processor) (ClusterReport, error) {
	labels := make(map[string]string, len(instances))
	byCluster := make(map[string][]string)
	for tag := range instances {
		cid, err := proc.GetClusterByTag(tag)
		if err != nil {
			continue
		}
		labels[tag] = cid
		byCluster[cid] = append(byCluster[cid], tag)
	}

	counter := stats.NewCounter[int]()
	for _, tags := range byCluster {
		counter.Add(len(tags))
	}
	sizeStats, err := stats.FromIntCounter(counter)
	if err != nil {
		return ClusterReport{}, err
	}

	var clusterScore float64
	for _, tags := range byCluster {
		embeddings := make([][]float64, len(tags))
		for i, tag := range tags {
			embeddings[i] = instances[tag]
		}
		score, err := computeClusterScore(embeddings)
		if err != nil {
			return ClusterReport{}, err
		}
		clusterScore += score
	}

	ss, err := silhouetteScore(instances, labels)
	if err != nil {
		return ClusterReport{}, err
	}

	return ClusterReport{
		SilhouetteScore:     ss,
		ClusterScore:        clusterScore,
		NumClusters:         len(byCluster),
		NumInstances:        len(instances),
		InstancesPerCluster: sizeStats,
	}, nil
}

// computeClusterScore scores a single cluster's internal cohesion:
// the pairwise similarity coefficient of variation ("node
// dispersion") is normalized, squared, exponentiated and weighted by
// ln(n), mirroring compute_cluster_score exactly. Pairwise similarity
// uses the same default metric as Scoring (vector.NanToNumSimilarity).
func computeClusterScore(embeddings [][]float64) (float64, error) {
	n := len(embeddings)
	if n == 0 {
		return 0, nil
	}

	var sims []float64
	if n == 1 {
		sims = []float64{1.0}
	} else {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				sims = append(sims, vector.NanToNumSimilarity(embeddings[i], embeddings[j]))
			}
		}
	}

	simMean, simStd, err := stats.FromFloat64SliceMeanStd(sims)
	if err != nil {
		return 0, err
	}

	var dispersion float64
	if simMean != 0 {
		dispersion = simStd / simMean
	}
	delta := (dispersion - 1) / dispersionScale
	nodeDelta := delta * delta
	return math.Exp(-nodeDelta) * math.Log(float64(n)), nil
}

// silhouetteScore computes the mean silhouette coefficient over
// instances using Euclidean distance, falling back to -1.0 when fewer
// than two instances or two distinct clusters exist (the source
// wraps sklearn's silhouette_score in a try/except returning -1.0 for
// exactly these degenerate inputs).
func silhouetteScore(instances map[string][]float64, labels map[string]string) (float64, error) {
	if len(instances) < 2 {
		return -1.0, nil
	}
	clusterTags := make(map[string][]string)
	for tag, cid := range labels {
		clusterTags[cid] = append(clusterTags[cid], tag)
	}
	if len(clusterTags) < 2 {
		return -1.0, nil
	}

	var total float64
	var count int
	for tag, cid := range labels {
		a, err := meanDistanceTo(instances, tag, clusterTags[cid], true)
		if err != nil {
			return 0, err
		}
		var b float64
		first := true
		for otherCID, tags := range clusterTags {
			if otherCID == cid {
				continue
			}
			d, err := meanDistanceTo(instances, tag, tags, false)
			if err != nil {
				return 0, err
			}
			if first || d < b {
				b = d
				first = false
			}
		}
		var s float64
		m := math.Max(a, b)
		if m > 0 {
			s = (b - a) / m
		}
		total += s
		count++
	}
	if count == 0 {
		return -1.0, nil
	}
	return total / float64(count), nil
}

// meanDistanceTo returns the mean Euclidean distance from instances[tag]
// to every tag in group. When excludeSelf is true, tag is skipped
// within its own group; a singleton group with excludeSelf returns 0
// (sklearn's convention for a(i) on a cluster of size 1).
func meanDistanceTo(instances map[string][]float64, tag string, group []string, excludeSelf bool) (float64, error) {
	v := instances[tag]
	var sum float64
	var count int
	for _, other := range group {
		if excludeSelf && other == tag {
			continue
		}
		d, err := vector.Euclidean(v, instances[other])
		if err != nil {
			return 0, err
		}
		sum += d
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}
