// Package gturbo implements the GTurbo processor: a growing
// neural-gas variant with topological edges, per-node accumulated
// error, periodic node insertion ("Increase"), edge aging, and an ANN
// index for nearest-prototype lookup.
package gturbo

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/latticerun/interference/pkg/annindex"
	"github.com/latticerun/interference/pkg/processor"
	"github.com/latticerun/interference/pkg/vector"
)

// Params configures a GTurbo processor. All fields are required;
// Validate reports the first invalid field found.
type Params struct {
	Dimensions int     // embedding dimensionality
	Lambda     int     // steps between Increase insertions
	EpsilonB   float64 // winner-node learning rate
	EpsilonN   float64 // neighbor-node learning rate
	Alpha      float64 // error decrease factor applied at Increase
	Beta       float64 // per-cycle error decay factor
	MaxAge     int     // edge age limit before pruning
	R0         float64 // initial radius assigned to newly created nodes
	RandomSeed int64   // seeds the two initial unlinked nodes ("0", "1")
}

// Validate checks Params for the constraints the processor relies on.
func (p Params) Validate() error {
	switch {
	case p.Dimensions <= 0:
		return fmt.Errorf("gturbo: %w: Dimensions must be positive", processor.ErrInvalidParameter)
	case p.Lambda <= 0:
		return fmt.Errorf("gturbo: %w: Lambda must be positive", processor.ErrInvalidParameter)
	case p.Beta <= 0 || p.Beta > 1:
		return fmt.Errorf("gturbo: %w: Beta must be in (0, 1]", processor.ErrInvalidParameter)
	case p.Alpha <= 0 || p.Alpha > 1:
		return fmt.Errorf("gturbo: %w: Alpha must be in (0, 1]", processor.ErrInvalidParameter)
	case p.MaxAge <= 0:
		return fmt.Errorf("gturbo: %w: MaxAge must be positive", processor.ErrInvalidParameter)
	case p.R0 <= 0:
		return fmt.Errorf("gturbo: %w: R0 must be positive", processor.ErrInvalidParameter)
	}
	return nil
}

// node is a single graph vertex: a prototype vector with accumulated
// error and a set of topological neighbors, mirroring the source's
// Node/Link split (gturbo.py).
type node struct {
	id         string
	prototype  []float64
	radius     float64
	errorVal   float64
	errorCycle int
	neighbors  map[string]*link
	tags       map[string]struct{}
	heapIndex  int
}

// link is a topological edge between two nodes, aged on every adapt
// step whose winner is one of its endpoints (the winner/runner-up link
// is reset to age 0 instead) and pruned once its age exceeds MaxAge.
type link struct {
	a, b string
	age  int
}

func linkKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// errorHeap is a container/heap max-heap ordered by node error,
// generalized from the teacher's min-heap-by-prune-score `minHeap`
// (pkg/memory/engine/engine.go) into a max-heap-by-error with a
// stored heap index per node for O(log n) Fix/Remove.
type errorHeap []*node

func (h errorHeap) Len() int            { return len(h) }
func (h errorHeap) Less(i, j int) bool  { return h[i].errorVal > h[j].errorVal }
func (h errorHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *errorHeap) Push(x any) {
	n := x.(*node)
	n.heapIndex = len(*h)
	*h = append(*h, n)
}
func (h *errorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.heapIndex = -1
	*h = old[:n-1]
	return item
}

// GTurbo is an incremental growing-neural-gas-style clustering
// processor.
type GTurbo struct {
	params    Params
	index     *annindex.Index
	nodes     map[string]*node
	links     map[string]*link
	heap      errorHeap
	tagToNode map[string]string
	nextID    int
	step      int
	cycle     int
}

// New returns a GTurbo processor configured by params, seeded with two
// random unlinked nodes ("0" and "1") per the source's Graph
// constructor.
func New(params Params) (*GTurbo, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g := &GTurbo{
		params:    params,
		index:     annindex.New(params.Dimensions),
		nodes:     make(map[string]*node),
		links:     make(map[string]*link),
		tagToNode: make(map[string]string),
	}
	rng := rand.New(rand.NewSource(params.RandomSeed))
	for i := 0; i < 2; i++ {
		prototype := make([]float64, params.Dimensions)
		for d := range prototype {
			prototype[d] = rng.Float64()
		}
		if _, err := g.createNode(prototype, params.R0); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *GTurbo) createNode(embedding []float64, radius float64) (*node, error) {
	id := strconv.Itoa(g.nextID)
	g.nextID++
	cp := make([]float64, len(embedding))
	copy(cp, embedding)
	n := &node{
		id:         id,
		prototype:  cp,
		radius:     radius,
		errorCycle: g.cycle,
		neighbors:  make(map[string]*link),
		tags:       make(map[string]struct{}),
	}
	g.nodes[id] = n
	heap.Push(&g.heap, n)
	if err := g.index.Add(id, cp); err != nil {
		return nil, err
	}
	return n, nil
}

func (g *GTurbo) createLink(a, b *node) *link {
	key := linkKey(a.id, b.id)
	if existing, ok := g.links[key]; ok {
		existing.age = 0
		return existing
	}
	l := &link{a: a.id, b: b.id, age: 0}
	g.links[key] = l
	a.neighbors[b.id] = l
	b.neighbors[a.id] = l
	return l
}

func (g *GTurbo) removeLink(key string) {
	l, ok := g.links[key]
	if !ok {
		return
	}
	if a, ok := g.nodes[l.a]; ok {
		delete(a.neighbors, l.b)
	}
	if b, ok := g.nodes[l.b]; ok {
		delete(b.neighbors, l.a)
	}
	delete(g.links, key)
}

func (g *GTurbo) ageLinks(n *node) {
	for _, l := range n.neighbors {
		l.age++
	}
}

func (g *GTurbo) updateEdges() {
	for key, l := range g.links {
		if l.age > g.params.MaxAge {
			g.removeLink(key)
		}
	}
}

// updateNodes garbage-collects nodes with no neighbors and no
// assigned tags, mirroring the source's update_nodes.
func (g *GTurbo) updateNodes() {
	for id, n := range g.nodes {
		if len(n.neighbors) == 0 && len(n.tags) == 0 {
			g.deleteNode(id)
		}
	}
}

func (g *GTurbo) deleteNode(id string) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for neighborID := range n.neighbors {
		g.removeLink(linkKey(id, neighborID))
	}
	if n.heapIndex >= 0 && n.heapIndex < len(g.heap) {
		heap.Remove(&g.heap, n.heapIndex)
	}
	_ = g.index.Remove(id)
	delete(g.nodes, id)
}

func (g *GTurbo) fixError(n *node) {
	elapsed := g.cycle - n.errorCycle
	if elapsed > 0 {
		n.errorVal *= math.Pow(g.params.Beta, float64(g.params.Lambda*elapsed))
		n.errorCycle = g.cycle
	}
}

func (g *GTurbo) incrementError(n *node, value float64) {
	g.fixError(n)
	n.errorVal = n.errorVal*math.Pow(g.params.Beta, float64(g.params.Lambda-g.step)) + value
	if n.heapIndex >= 0 {
		heap.Fix(&g.heap, n.heapIndex)
	}
}

func (g *GTurbo) decreaseError(n *node, alpha float64) {
	n.errorVal *= alpha
	if n.heapIndex >= 0 {
		heap.Fix(&g.heap, n.heapIndex)
	}
}

func (g *GTurbo) updatePrototype(n *node, instance []float64, scale float64) error {
	_ = g.index.Remove(n.id)
	n.prototype = vector.Add(n.prototype, vector.Scale(vector.Sub(instance, n.prototype), scale))
	return g.index.Add(n.id, n.prototype)
}

// getBestMatch returns the two nodes whose prototypes are closest to
// embedding (winner v, runner-up u), mirroring get_best_match's
// faiss k=2 search.
func (g *GTurbo) getBestMatch(embedding []float64) (v, u *node, err error) {
	results, err := g.index.Search(embedding, 2)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, processor.ErrEmpty
	}
	v = g.nodes[results[0].ID]
	if len(results) > 1 {
		u = g.nodes[results[1].ID]
	}
	return v, u, nil
}

func (g *GTurbo) turboAdapt(tag string, embedding []float64) error {
	v, u, err := g.getBestMatch(embedding)
	if err != nil {
		return err
	}
	dist, err := vector.Euclidean(embedding, v.prototype)
	if err != nil {
		return err
	}

	if dist <= v.radius {
		v.tags[tag] = struct{}{}
		g.tagToNode[tag] = v.id
		g.incrementError(v, dist*dist)
		if err := g.updatePrototype(v, embedding, g.params.EpsilonB); err != nil {
			return err
		}
		for neighborID := range v.neighbors {
			if neighbor, ok := g.nodes[neighborID]; ok {
				if err := g.updatePrototype(neighbor, embedding, g.params.EpsilonN); err != nil {
					return err
				}
			}
		}
		g.ageLinks(v)
		if u != nil {
			g.createLink(v, u)
		}
		g.updateEdges()
		g.updateNodes()
		return nil
	}

	n, err := g.createNode(embedding, g.params.R0)
	if err != nil {
		return err
	}
	n.tags[tag] = struct{}{}
	g.tagToNode[tag] = n.id
	g.createLink(n, v)
	return nil
}

// turboIncrease inserts a midpoint node between the highest-error node
// and its highest-error neighbor, mirroring the source's
// turbo_increase.
func (g *GTurbo) turboIncrease() error {
	if len(g.heap) == 0 {
		return nil
	}
	q := g.heap[0]
	if len(q.neighbors) == 0 {
		return nil
	}
	var f *node
	for neighborID := range q.neighbors {
		candidate := g.nodes[neighborID]
		if candidate == nil {
			continue
		}
		if f == nil || candidate.errorVal > f.errorVal {
			f = candidate
		}
	}
	if f == nil {
		return nil
	}

	midpoint := vector.Scale(vector.Add(q.prototype, f.prototype), 0.5)
	r, err := g.createNode(midpoint, (q.radius+f.radius)/2)
	if err != nil {
		return err
	}

	g.removeLink(linkKey(q.id, f.id))
	g.createLink(q, r)
	g.createLink(f, r)

	g.decreaseError(q, g.params.Alpha)
	g.decreaseError(f, g.params.Alpha)
	r.errorVal = 0.5 * (q.errorVal + f.errorVal)
	if r.heapIndex >= 0 {
		heap.Fix(&g.heap, r.heapIndex)
	}
	return nil
}

// Process ingests tag/embedding, running the full turbo_step: adapt
// against the two-node (or larger) graph seeded at construction, then
// every Lambda-th step, Increase.
func (g *GTurbo) Process(tag string, embedding []float64) error {
	if err := vector.CheckDimension(len(embedding), g.params.Dimensions); err != nil {
		return fmt.Errorf("gturbo: process %q: %w", tag, err)
	}

	if err := g.turboAdapt(tag, embedding); err != nil {
		return err
	}
	g.step++
	if g.step == g.params.Lambda {
		if err := g.turboIncrease(); err != nil {
			return err
		}
		g.step = 0
		g.cycle++
	}
	return nil
}

// Update removes tag (if known) then re-processes it. No guarantee is
// made that tag lands in the same or "closest" node afterward — the
// graph may have changed shape between removal and reinsertion.
func (g *GTurbo) Update(tag string, embedding []float64) error {
	if _, exists := g.tagToNode[tag]; exists {
		_ = g.Remove(tag)
	}
	return g.Process(tag, embedding)
}

// Remove deletes tag's membership with a single map deletion. The
// source implementation looked the node up with pop() and then called
// del on the same key, a latent double-delete bug; this corrects it
// per the documented fix (see DESIGN.md).
func (g *GTurbo) Remove(tag string) error {
	nodeID, exists := g.tagToNode[tag]
	if !exists {
		return processor.ErrUnknownTag
	}
	if n, ok := g.nodes[nodeID]; ok {
		delete(n.tags, tag)
	}
	delete(g.tagToNode, tag)
	return nil
}

// GetClusterByTag returns the id of the node currently holding tag.
func (g *GTurbo) GetClusterByTag(tag string) (string, error) {
	id, ok := g.tagToNode[tag]
	if !ok {
		return "", processor.ErrUnknownTag
	}
	return id, nil
}

// GetTagsInCluster returns every tag assigned to the node clusterID.
func (g *GTurbo) GetTagsInCluster(clusterID string) ([]string, error) {
	n, ok := g.nodes[clusterID]
	if !ok {
		return nil, fmt.Errorf("gturbo: cluster %q: %w", clusterID, processor.ErrUnknownTag)
	}
	tags := make([]string, 0, len(n.tags))
	for t := range n.tags {
		tags = append(tags, t)
	}
	return tags, nil
}

// GetClusterIDs returns every node id currently in the graph.
func (g *GTurbo) GetClusterIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Predict returns the id of the node whose prototype is nearest to
// embedding, without mutating graph state.
func (g *GTurbo) Predict(embedding []float64) (string, error) {
	if len(g.nodes) == 0 {
		return "", processor.ErrEmpty
	}
	results, err := g.index.Search(embedding, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", processor.ErrEmpty
	}
	return results[0].ID, nil
}

// Describe returns a short human-readable summary of processor state.
func (g *GTurbo) Describe() string {
	return fmt.Sprintf("GTurbo(nodes=%d, links=%d, cycle=%d)", len(g.nodes), len(g.links), g.cycle)
}

// SafeFileName returns a filesystem-safe name for this processor.
func (g *GTurbo) SafeFileName() string {
	return fmt.Sprintf("gturbo_dim%d", g.params.Dimensions)
}

var _ processor.Processor = (*GTurbo)(nil)
