package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownTransformer is returned when Add/Update is called with a
// transformer key the engine was never configured with, mirroring
// try_get_transformer_for_key returning None and the caller treating
// that as a failed add/update.
var ErrUnknownTransformer = errors.New("engine: unknown transformer key")

// ErrUnsupportedValue is returned by a built-in Transformer when the
// supplied value does not have the shape that transformer expects.
var ErrUnsupportedValue = errors.New("engine: unsupported value for transformer")

// Instance is a value paired with its embedding, mirroring the
// source's Instance[T] dataclass (transformer_pipeline.py).
type Instance struct {
	Value     any
	Embedding []float64
}

// Transformer turns an opaque caller-supplied value into an Instance
// carrying its embedding. The engine treats every Transformer as a
// caller-supplied black box: this package only ships the trivial
// built-ins below (identity, raw vector); computing an embedding from
// e.g. text or an image is explicitly out of scope (see SPEC_FULL.md).
//
// Generalized from the teacher's pkg/memory/embeeding.go Embedder
// one-method-interface idiom.
type Transformer interface {
	Transform(value any) (Instance, error)
}

// IdentityTransformer passes an already-built Instance straight
// through, mirroring IdentityPipeline.
type IdentityTransformer struct{}

// Transform returns value unchanged if it is already an Instance.
func (IdentityTransformer) Transform(value any) (Instance, error) {
	inst, ok := value.(Instance)
	if !ok {
		return Instance{}, fmt.Errorf("%w: IdentityTransformer expects an Instance, got %T", ErrUnsupportedValue, value)
	}
	return inst, nil
}

// VectorTransformer wraps a raw []float64 embedding as an Instance,
// mirroring NumpyToInstancePipeline for the case where the caller
// already has a native vector.
type VectorTransformer struct{}

// Transform returns an Instance whose Value and Embedding are both
// the supplied vector.
func (VectorTransformer) Transform(value any) (Instance, error) {
	v, ok := value.([]float64)
	if !ok {
		return Instance{}, fmt.Errorf("%w: VectorTransformer expects []float64, got %T", ErrUnsupportedValue, value)
	}
	return Instance{Value: v, Embedding: v}, nil
}
