// Package covariance implements the Covariance clustering processor:
// clusters track a running mean, covariance matrix and standard
// deviation, and assignment uses Mahalanobis distance against the
// cluster's own std as the acceptance radius.
package covariance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticerun/interference/pkg/processor"
	"github.com/latticerun/interference/pkg/vector"
)

// ClusterNode is a single covariance cluster. initialStd seeds the
// acceptance radius before at least two observations have been
// accumulated (a single-point sample has no meaningful std), mirroring
// the source constructor's initial_std parameter.
type ClusterNode struct {
	ID         string
	Stats      *vector.RunningStats
	Tags       map[string]struct{}
	initialStd float64
}

func newClusterNode(id string, embedding []float64, initialStd float64) *ClusterNode {
	return &ClusterNode{
		ID:         id,
		Stats:      vector.NewRunningStats(embedding),
		Tags:       make(map[string]struct{}),
		initialStd: initialStd,
	}
}

// Mean returns the cluster's current running mean.
func (c *ClusterNode) Mean() []float64 { return c.Stats.Mean() }

// Std returns the cluster's current running standard deviation norm,
// falling back to the seeded initialStd until at least two
// observations have been accumulated.
func (c *ClusterNode) Std() float64 {
	if c.Stats.Count() < 2 {
		return c.initialStd
	}
	return c.Stats.Std()
}

// Covariance is an incremental clustering processor using running
// mean/covariance/std per cluster and Mahalanobis-distance assignment.
//
// Remove is a documented true no-op: it neither clears the
// tag→cluster bookkeeping nor the cluster's tag membership, mirroring
// the source's remove_from_cluster, which is an intentional pass (see
// DESIGN.md).
type Covariance struct {
	initialStd   float64
	clusters     map[string]*ClusterNode
	tagToCluster map[string]string
	nextIndex    int
}

// New returns an empty Covariance processor. initialStd is the
// acceptance radius used for a cluster's first observation, before a
// real standard deviation can be computed from at least two points.
func New(initialStd float64) (*Covariance, error) {
	if initialStd <= 0 {
		return nil, fmt.Errorf("covariance: %w: initialStd must be positive", processor.ErrInvalidParameter)
	}
	return &Covariance{
		initialStd:   initialStd,
		clusters:     make(map[string]*ClusterNode),
		tagToCluster: make(map[string]string),
	}, nil
}

func (cv *Covariance) createNode(embedding []float64) *ClusterNode {
	id := strconv.Itoa(cv.nextIndex)
	cv.nextIndex++
	node := newClusterNode(id, embedding, cv.initialStd)
	cv.clusters[id] = node
	return node
}

// bruteSearch returns the id of the cluster whose mean minimizes
// Mahalanobis distance to embedding, and that distance.
func (cv *Covariance) bruteSearch(embedding []float64) (id string, dist float64, ok bool) {
	best := -1.0
	bestID := ""
	for cid, node := range cv.clusters {
		d, err := node.Stats.Distance(embedding)
		if err != nil {
			continue
		}
		if best < 0 || d < best {
			best = d
			bestID = cid
		}
	}
	if bestID == "" {
		return "", 0, false
	}
	return bestID, best, true
}

// Process assigns tag/embedding to an existing cluster if its
// Mahalanobis distance to that cluster's mean is within the cluster's
// own standard deviation; otherwise it creates a new cluster.
func (cv *Covariance) Process(tag string, embedding []float64) error {
	if len(cv.clusters) == 0 {
		node := cv.createNode(embedding)
		node.Tags[tag] = struct{}{}
		cv.tagToCluster[tag] = node.ID
		return nil
	}

	id, dist, ok := cv.bruteSearch(embedding)
	if ok && dist < cv.clusters[id].Std() {
		node := cv.clusters[id]
		if err := node.Stats.Add(embedding); err != nil {
			return fmt.Errorf("covariance: process %q: %w", tag, err)
		}
		node.Tags[tag] = struct{}{}
		cv.tagToCluster[tag] = id
		return nil
	}

	node := cv.createNode(embedding)
	node.Tags[tag] = struct{}{}
	cv.tagToCluster[tag] = node.ID
	return nil
}

// Update re-processes tag with a new embedding. Since Remove is a
// no-op on cluster contents, the tag's prior observation is never
// retracted from its old cluster's running statistics.
func (cv *Covariance) Update(tag string, embedding []float64) error {
	_ = cv.Remove(tag)
	return cv.Process(tag, embedding)
}

// Remove is a true no-op on cluster state beyond reporting whether tag
// is known: it neither deletes the tag→cluster mapping nor the
// cluster's tag membership, mirroring the source's remove_from_cluster
// exactly (a bare pass; see DESIGN.md).
func (cv *Covariance) Remove(tag string) error {
	if _, exists := cv.tagToCluster[tag]; !exists {
		return processor.ErrUnknownTag
	}
	return nil
}

// GetClusterByTag returns the cluster id holding tag.
func (cv *Covariance) GetClusterByTag(tag string) (string, error) {
	id, ok := cv.tagToCluster[tag]
	if !ok {
		return "", processor.ErrUnknownTag
	}
	return id, nil
}

// GetTagsInCluster returns every tag currently assigned to clusterID.
func (cv *Covariance) GetTagsInCluster(clusterID string) ([]string, error) {
	node, ok := cv.clusters[clusterID]
	if !ok {
		return nil, fmt.Errorf("covariance: cluster %q: %w", clusterID, processor.ErrUnknownTag)
	}
	tags := make([]string, 0, len(node.Tags))
	for t := range node.Tags {
		tags = append(tags, t)
	}
	return tags, nil
}

// GetClusterIDs returns every cluster id currently held.
func (cv *Covariance) GetClusterIDs() []string {
	ids := make([]string, 0, len(cv.clusters))
	for id := range cv.clusters {
		ids = append(ids, id)
	}
	return ids
}

// Predict returns the id of the cluster whose mean is Mahalanobis-
// nearest to embedding.
func (cv *Covariance) Predict(embedding []float64) (string, error) {
	id, _, ok := cv.bruteSearch(embedding)
	if !ok {
		return "", processor.ErrEmpty
	}
	return id, nil
}

// Describe returns a short human-readable summary of processor state.
func (cv *Covariance) Describe() string {
	return fmt.Sprintf("Covariance(clusters=%d, tags=%d)", len(cv.clusters), len(cv.tagToCluster))
}

// SafeFileName returns a filesystem-safe name for this processor.
func (cv *Covariance) SafeFileName() string {
	return strings.ToLower("covariance")
}

var _ processor.Processor = (*Covariance)(nil)
