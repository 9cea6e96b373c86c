// Package vector provides the distance and similarity primitives
// shared by every clustering processor: Euclidean distance, cosine
// similarity, and running mean/covariance/standard-deviation
// statistics. The covariance matrix and the Mahalanobis distance use
// gonum; mean and standard deviation are computed directly.
package vector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrDimensionMismatch is returned whenever two vectors (or a vector
// and a processor's expected dimensionality) disagree in length.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// ErrEmptyVector is returned by operations given a zero-length vector.
var ErrEmptyVector = errors.New("vector: empty vector")

// CheckDimension returns ErrDimensionMismatch wrapped with context if
// got != want.
func CheckDimension(got, want int) error {
	if got != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, got, want)
	}
	return nil
}

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// EuclideanSquared returns the squared L2 distance between a and b,
// avoiding a sqrt when only relative ordering matters.
func EuclideanSquared(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}

// CosineSimilarity returns the cosine similarity between a and b in
// [-1, 1]. Mirrors the teacher's CosineSimilarity signature.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	if len(a) == 0 {
		return 0, ErrEmptyVector
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// NanToNumSimilarity mirrors the external system's default similarity
// metric: nan_to_num(1 - cosine(a, b), 0), where cosine(a, b) is the
// cosine distance (1 - cosine similarity). The result is therefore the
// cosine similarity of a and b: 1 for identical directions, 0 when
// either vector is zero or the value is not finite. Used as the
// engine's default when no custom similarity function is supplied.
func NanToNumSimilarity(a, b []float64) float64 {
	cos, err := CosineSimilarity(a, b)
	if err != nil {
		return 0
	}
	v := cos
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Add returns the element-wise sum of a and b.
func Add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Scale returns a copy of v scaled by s.
func Scale(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Sub returns the element-wise difference a - b.
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Norm returns the Euclidean (L2) norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// RunningStats accumulates observations of a fixed dimensionality and
// derives the sample mean, covariance matrix and per-dimension
// standard deviation on demand, mirroring the source's
// ClusterNode.add_embedding (np.cov/np.mean/np.std over the
// accumulated observation matrix).
type RunningStats struct {
	dim          int
	observations [][]float64
}

// NewRunningStats returns a RunningStats seeded with a single initial
// observation, analogous to constructing a ClusterNode from its first
// embedding.
func NewRunningStats(initial []float64) *RunningStats {
	cp := make([]float64, len(initial))
	copy(cp, initial)
	return &RunningStats{dim: len(initial), observations: [][]float64{cp}}
}

// Add appends a new observation. Returns ErrDimensionMismatch if
// embedding's length does not match the dimensionality fixed at
// construction.
func (r *RunningStats) Add(embedding []float64) error {
	if len(embedding) != r.dim {
		return ErrDimensionMismatch
	}
	cp := make([]float64, len(embedding))
	copy(cp, embedding)
	r.observations = append(r.observations, cp)
	return nil
}

// Count returns the number of accumulated observations.
func (r *RunningStats) Count() int { return len(r.observations) }

// Mean returns the per-dimension sample mean.
func (r *RunningStats) Mean() []float64 {
	mean := make([]float64, r.dim)
	n := float64(len(r.observations))
	for _, obs := range r.observations {
		for i, v := range obs {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

// Std returns the Euclidean norm of the per-dimension population
// standard deviation (sum of squares divided by n), mirroring
// norm(np.std(instances, axis=0)) in the source. Returns 0 below two
// observations.
func (r *RunningStats) Std() float64 {
	n := len(r.observations)
	if n < 2 {
		return 0
	}
	mean := r.Mean()
	sumSq := make([]float64, r.dim)
	for _, obs := range r.observations {
		for i, v := range obs {
			d := v - mean[i]
			sumSq[i] += d * d
		}
	}
	var norm float64
	for i := range sumSq {
		std := math.Sqrt(sumSq[i] / float64(n))
		norm += std * std
	}
	return math.Sqrt(norm)
}

// Covariance returns the dim x dim sample covariance matrix over the
// accumulated observations, using gonum/stat column-wise.
func (r *RunningStats) Covariance() *mat.SymDense {
	n := len(r.observations)
	data := mat.NewDense(n, r.dim, nil)
	for i, obs := range r.observations {
		data.SetRow(i, obs)
	}
	cov := stat.CovarianceMatrix(nil, data, nil)
	return cov
}

// Distance returns the Mahalanobis distance from embedding to the
// running mean once at least two observations have been accumulated
// (a single point has no meaningful covariance); before that it
// returns the plain Euclidean distance to the mean, avoiding building
// a singular covariance matrix.
func (r *RunningStats) Distance(embedding []float64) (float64, error) {
	if r.Count() < 2 {
		d, err := Euclidean(embedding, r.Mean())
		return d, err
	}
	cov := r.Covariance()
	return Mahalanobis(embedding, r.Mean(), cov)
}

// Mahalanobis returns the Mahalanobis distance between embedding and
// the running mean, using the accumulated covariance matrix. When the
// covariance matrix is singular (e.g. a single observation), it falls
// back to Euclidean distance against the mean, matching the source's
// behavior of seeding cov_matrix with the identity matrix.
func Mahalanobis(embedding, mean []float64, cov *mat.SymDense) (float64, error) {
	if len(embedding) != len(mean) {
		return 0, ErrDimensionMismatch
	}
	n := len(embedding)
	delta := mat.NewVecDense(n, Sub(embedding, mean))

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return Norm(Sub(embedding, mean)), nil
	}
	var y mat.VecDense
	if err := chol.SolveVecTo(&y, delta); err != nil {
		return Norm(Sub(embedding, mean)), nil
	}
	d := mat.Dot(delta, &y)
	if d < 0 {
		d = 0
	}
	return math.Sqrt(d), nil
}
