// Package ecm implements the Evolving Clustering Method processor: a
// one-pass, hyper-sphere clustering algorithm with an adaptive center
// and radius per cluster.
package ecm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticerun/interference/pkg/processor"
	"github.com/latticerun/interference/pkg/vector"
)

// searchResultType classifies where a query embedding falls relative
// to the existing clusters, following the source's three-way
// RADIUS/THRESHOLD/OUTSIDE split.
type searchResultType int

const (
	resultRadius searchResultType = iota
	resultThreshold
	resultOutside
)

// Cluster is a single hyper-sphere cluster: a center, a radius and the
// set of tags currently assigned to it.
type Cluster struct {
	ID     string
	Center []float64
	Radius float64
	Tags   map[string]struct{}
}

func newCluster(id string, center []float64) *Cluster {
	cp := make([]float64, len(center))
	copy(cp, center)
	return &Cluster{ID: id, Center: cp, Radius: 0, Tags: make(map[string]struct{})}
}

// adapt recenters and grows the cluster to just cover embedding,
// mirroring the source's Cluster._adapt: move the center half the
// distance toward the new edge, and grow the radius to match.
func (c *Cluster) adapt(embedding []float64, dist float64) {
	oldRadius := c.Radius
	newRadius := (dist + oldRadius) / 2
	if len(c.Center) == 0 {
		return
	}
	direction := vector.Sub(embedding, c.Center)
	norm := vector.Norm(direction)
	if norm == 0 {
		c.Radius = newRadius
		return
	}
	scale := (dist - oldRadius) / 2 / norm
	c.Center = vector.Add(c.Center, vector.Scale(direction, scale))
	c.Radius = newRadius
}

type searchCache struct {
	valid   bool
	ids     []string
	centers [][]float64
	radii   []float64
}

// ECM is an incremental hyper-sphere clustering processor.
type ECM struct {
	distanceThreshold float64
	clusters          map[string]*Cluster
	tagToCluster      map[string]string
	nextIndex         int
	cache             searchCache
}

// New returns an ECM processor with the given distance threshold.
// distanceThreshold must be positive.
func New(distanceThreshold float64) (*ECM, error) {
	if distanceThreshold <= 0 {
		return nil, fmt.Errorf("ecm: %w: distanceThreshold must be positive", processor.ErrInvalidParameter)
	}
	return &ECM{
		distanceThreshold: distanceThreshold,
		clusters:          make(map[string]*Cluster),
		tagToCluster:      make(map[string]string),
	}, nil
}

func (e *ECM) invalidateCache() { e.cache.valid = false }

func (e *ECM) ensureCache() {
	if e.cache.valid {
		return
	}
	ids := make([]string, 0, len(e.clusters))
	centers := make([][]float64, 0, len(e.clusters))
	radii := make([]float64, 0, len(e.clusters))
	for id, c := range e.clusters {
		ids = append(ids, id)
		centers = append(centers, c.Center)
		radii = append(radii, c.Radius)
	}
	e.cache = searchCache{valid: true, ids: ids, centers: centers, radii: radii}
}

func (e *ECM) createCluster(embedding []float64) *Cluster {
	id := strconv.Itoa(e.nextIndex)
	e.nextIndex++
	c := newCluster(id, embedding)
	e.clusters[id] = c
	e.invalidateCache()
	return c
}

// searchIndexAndDistance finds the closest cluster to embedding and
// classifies the result, mirroring the source's
// _search_index_and_distance: compute diffs = distance - radius per
// cluster, prefer the RADIUS branch (diffs <= 0) by minimum distance,
// else pick the candidate minimizing distance+radius
// (np.argmin(distances_plus_radiuses)) and classify THRESHOLD/OUTSIDE
// by that sum vs 2*distanceThreshold.
func (e *ECM) searchIndexAndDistance(embedding []float64) (id string, dist float64, kind searchResultType, ok bool) {
	e.ensureCache()
	if len(e.cache.ids) == 0 {
		return "", 0, resultOutside, false
	}

	bestRadiusIdx := -1
	bestRadiusDist := 0.0
	bestOverallIdx := 0
	bestOverallDist := 0.0
	bestOverallSum := -1.0

	for i, center := range e.cache.centers {
		d, err := vector.Euclidean(embedding, center)
		if err != nil {
			continue
		}
		diff := d - e.cache.radii[i]
		if diff <= 0 && (bestRadiusIdx == -1 || d < bestRadiusDist) {
			bestRadiusIdx = i
			bestRadiusDist = d
		}
		sum := d + e.cache.radii[i]
		if bestOverallSum < 0 || sum < bestOverallSum {
			bestOverallSum = sum
			bestOverallDist = d
			bestOverallIdx = i
		}
	}

	if bestRadiusIdx != -1 {
		return e.cache.ids[bestRadiusIdx], bestRadiusDist, resultRadius, true
	}

	idx := bestOverallIdx
	d := bestOverallDist
	if bestOverallSum <= 2*e.distanceThreshold {
		return e.cache.ids[idx], d, resultThreshold, true
	}
	return e.cache.ids[idx], d, resultOutside, true
}

// Process assigns tag/embedding to the nearest cluster (adapting it)
// or creates a new cluster when embedding lies outside every
// existing cluster's threshold.
func (e *ECM) Process(tag string, embedding []float64) error {
	id, dist, kind, ok := e.searchIndexAndDistance(embedding)
	if !ok {
		c := e.createCluster(embedding)
		c.Tags[tag] = struct{}{}
		e.tagToCluster[tag] = c.ID
		return nil
	}

	switch kind {
	case resultRadius:
		// A RADIUS hit only appends the tag to the cluster it already
		// falls within; the center/radius are left untouched.
		c := e.clusters[id]
		if prev, exists := e.tagToCluster[tag]; exists && prev != id {
			e.removeFromCluster(prev, tag)
		}
		c.Tags[tag] = struct{}{}
		e.tagToCluster[tag] = id
		return nil
	case resultThreshold:
		c := e.clusters[id]
		if prev, exists := e.tagToCluster[tag]; exists && prev == id {
			c.adapt(embedding, dist)
			e.invalidateCache()
			return nil
		}
		if prev, exists := e.tagToCluster[tag]; exists {
			e.removeFromCluster(prev, tag)
		}
		c.adapt(embedding, dist)
		c.Tags[tag] = struct{}{}
		e.tagToCluster[tag] = id
		e.invalidateCache()
		return nil
	default: // resultOutside
		if prev, exists := e.tagToCluster[tag]; exists {
			e.removeFromCluster(prev, tag)
		}
		c := e.createCluster(embedding)
		c.Tags[tag] = struct{}{}
		e.tagToCluster[tag] = c.ID
		return nil
	}
}

func (e *ECM) removeFromCluster(clusterID, tag string) {
	c, ok := e.clusters[clusterID]
	if !ok {
		return
	}
	delete(c.Tags, tag)
	if len(c.Tags) == 0 {
		delete(e.clusters, clusterID)
		e.invalidateCache()
	}
}

// Update removes tag (if known) then re-processes it.
func (e *ECM) Update(tag string, embedding []float64) error {
	if _, exists := e.tagToCluster[tag]; exists {
		_ = e.Remove(tag)
	}
	return e.Process(tag, embedding)
}

// Remove deletes tag's membership, discarding its cluster if it was
// the last tag assigned there.
func (e *ECM) Remove(tag string) error {
	clusterID, exists := e.tagToCluster[tag]
	if !exists {
		return processor.ErrUnknownTag
	}
	e.removeFromCluster(clusterID, tag)
	delete(e.tagToCluster, tag)
	return nil
}

// GetClusterByTag returns the cluster id holding tag.
func (e *ECM) GetClusterByTag(tag string) (string, error) {
	id, ok := e.tagToCluster[tag]
	if !ok {
		return "", processor.ErrUnknownTag
	}
	return id, nil
}

// GetTagsInCluster returns every tag assigned to clusterID.
func (e *ECM) GetTagsInCluster(clusterID string) ([]string, error) {
	c, ok := e.clusters[clusterID]
	if !ok {
		return nil, fmt.Errorf("ecm: cluster %q: %w", clusterID, processor.ErrUnknownTag)
	}
	tags := make([]string, 0, len(c.Tags))
	for t := range c.Tags {
		tags = append(tags, t)
	}
	return tags, nil
}

// GetClusterIDs returns every cluster id currently held.
func (e *ECM) GetClusterIDs() []string {
	ids := make([]string, 0, len(e.clusters))
	for id := range e.clusters {
		ids = append(ids, id)
	}
	return ids
}

// Predict returns the closest cluster to embedding. Under an OUTSIDE
// result this is a hint only, not a guaranteed future assignment
// (see DESIGN.md).
func (e *ECM) Predict(embedding []float64) (string, error) {
	id, _, _, ok := e.searchIndexAndDistance(embedding)
	if !ok {
		return "", processor.ErrEmpty
	}
	return id, nil
}

// Describe returns a short human-readable summary of processor state.
func (e *ECM) Describe() string {
	return fmt.Sprintf("ECM(threshold=%.4f, clusters=%d, tags=%d)",
		e.distanceThreshold, len(e.clusters), len(e.tagToCluster))
}

// SafeFileName returns a filesystem-safe name for this processor.
func (e *ECM) SafeFileName() string {
	return strings.ReplaceAll(fmt.Sprintf("ecm_%.4f", e.distanceThreshold), ".", "_")
}

var _ processor.Processor = (*ECM)(nil)
