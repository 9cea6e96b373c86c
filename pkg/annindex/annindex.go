// Package annindex provides the nearest-prototype lookup index used
// by the GTurbo processor. It is a flat, exact-search, ID-keyed index
// (Add/Remove/Search), the same contract shape as an approximate index
// would expose, so a real ANN implementation could be substituted
// later without changing callers.
package annindex

import (
	"errors"
	"fmt"
	"sort"

	"github.com/latticerun/interference/pkg/vector"
)

// ErrNotFound is returned by Remove when id is not present in the
// index.
var ErrNotFound = errors.New("annindex: id not found")

// Index is a brute-force nearest-neighbor index over Euclidean
// distance, keyed by caller-supplied string ids.
//
// Not safe for concurrent use.
type Index struct {
	dim     int
	ids     []string
	vectors map[string][]float64
}

// New returns an empty Index fixed to dim dimensions.
func New(dim int) *Index {
	return &Index{dim: dim, vectors: make(map[string][]float64)}
}

// Add inserts or replaces the vector stored under id.
func (ix *Index) Add(id string, v []float64) error {
	if err := vector.CheckDimension(len(v), ix.dim); err != nil {
		return fmt.Errorf("annindex: add %q: %w", id, err)
	}
	if _, exists := ix.vectors[id]; !exists {
		ix.ids = append(ix.ids, id)
	}
	cp := make([]float64, len(v))
	copy(cp, v)
	ix.vectors[id] = cp
	return nil
}

// Remove deletes id from the index. Returns ErrNotFound if id was
// never added.
func (ix *Index) Remove(id string) error {
	if _, exists := ix.vectors[id]; !exists {
		return ErrNotFound
	}
	delete(ix.vectors, id)
	for i, candidate := range ix.ids {
		if candidate == id {
			ix.ids = append(ix.ids[:i], ix.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of vectors currently stored.
func (ix *Index) Len() int { return len(ix.ids) }

// SearchResult is one hit returned by Search, ordered by ascending
// distance.
type SearchResult struct {
	ID       string
	Distance float64
}

// Search returns up to k nearest neighbors of query, ascending by
// Euclidean distance. Ties are broken by insertion order.
func (ix *Index) Search(query []float64, k int) ([]SearchResult, error) {
	if err := vector.CheckDimension(len(query), ix.dim); err != nil {
		return nil, fmt.Errorf("annindex: search: %w", err)
	}
	if k <= 0 || len(ix.ids) == 0 {
		return nil, nil
	}
	results := make([]SearchResult, 0, len(ix.ids))
	for _, id := range ix.ids {
		d, err := vector.Euclidean(query, ix.vectors[id])
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{ID: id, Distance: d})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Vector returns the vector stored under id, if any.
func (ix *Index) Vector(id string) ([]float64, bool) {
	v, ok := ix.vectors[id]
	return v, ok
}
