// Package processor defines the contract shared by all incremental
// clustering processors (ECM, GTurbo, Covariance).
package processor

import "errors"

// ErrUnknownTag is returned by Remove and GetClusterByTag when a tag
// has never been processed, and (wrapped) by GetTagsInCluster for an
// unknown cluster id.
var ErrUnknownTag = errors.New("processor: unknown tag")

// ErrEmpty is returned by operations that require at least one cluster
// to exist (e.g. Predict on a processor with no clusters yet).
var ErrEmpty = errors.New("processor: no clusters")

// ErrInvalidParameter is returned by processor constructors when a
// configuration value is out of range (e.g. a non-positive threshold).
var ErrInvalidParameter = errors.New("processor: invalid parameter")

// Processor is the shared incremental-clustering contract. Every
// concrete processor (ECM, GTurbo, Covariance) processes one tagged
// embedding at a time, synchronously, with no suspension points.
//
// Implementations are not safe for concurrent use; callers own
// serialization (see spec §5 concurrency model).
type Processor interface {
	// Process assigns or creates a cluster for a new tag/embedding
	// pair. Re-processing an already-known tag is implementation
	// defined: ECM moves the tag out of its previous cluster, while
	// GTurbo and Covariance record the new assignment but leave the
	// tag in the previous cluster's tag set.
	Process(tag string, embedding []float64) error

	// Update removes tag (if known) then processes it again with the
	// supplied embedding. No processor guarantees the tag lands back
	// in the same cluster it started in.
	Update(tag string, embedding []float64) error

	// Remove deletes tag's membership, when the processor's semantics
	// allow it. Covariance's Remove is a documented no-op on cluster
	// contents (see DESIGN.md); it still returns nil for a known tag.
	// Returns ErrUnknownTag if tag was never processed.
	Remove(tag string) error

	// GetClusterByTag returns the id of the cluster currently holding
	// tag. Returns ErrUnknownTag if tag was never processed.
	GetClusterByTag(tag string) (string, error)

	// GetTagsInCluster returns every tag currently assigned to
	// clusterID, in no defined order; the order may differ between
	// calls.
	GetTagsInCluster(clusterID string) ([]string, error)

	// GetClusterIDs returns the ids of every cluster currently held by
	// the processor, in no defined order; the order may differ between
	// calls.
	GetClusterIDs() []string

	// Predict returns the id of the cluster embedding is closest to,
	// without mutating processor state. Returns ErrEmpty if the
	// processor holds no clusters yet.
	Predict(embedding []float64) (string, error)

	// Describe returns a short human-readable summary of processor
	// state, suitable for logging or debugging.
	Describe() string

	// SafeFileName returns a filesystem-safe name derived from the
	// processor's identity, mirroring the source implementation's
	// naming helper (used by callers that persist state out of band;
	// persistence itself is out of scope here).
	SafeFileName() string
}
