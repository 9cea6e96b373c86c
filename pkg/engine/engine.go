// Package engine implements the Interface facade: it owns the
// tag->embedding map, routes Add/Update/Remove to the configured
// clustering processor, and drives scoring and evaluation, mirroring
// the source's interference/interface.py Interface class.
package engine

import (
	"errors"
	"fmt"

	"github.com/latticerun/interference/pkg/evaluation"
	"github.com/latticerun/interference/pkg/processor"
	"github.com/latticerun/interference/pkg/scoring"
)

// ErrUnknownTag is returned by facade operations given a tag the
// engine has never stored an embedding for.
var ErrUnknownTag = errors.New("engine: unknown tag")

// Engine is the clustering facade: one processor (ECM, GTurbo or
// Covariance), a tag->embedding map, a scoring calculator, and the
// transformers used to turn opaque values into embeddings.
//
// Not safe for concurrent use — concurrent mutation from multiple
// writers is an explicit non-goal (see SPEC_FULL.md §5).
type Engine struct {
	processor    processor.Processor
	instances    map[string][]float64
	transformers map[string]Transformer
	calculator   scoring.Calculator
	metrics      Metrics
	opts         Options
}

// New returns an Engine driving proc, configured by opts.
func New(proc processor.Processor, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		processor:    proc,
		instances:    make(map[string][]float64),
		transformers: make(map[string]Transformer),
		calculator:   scoring.NewCalculator(opts.Similarity, opts.Scoring),
		opts:         opts,
	}
}

// RegisterTransformer associates key with t, so Add/Update callers can
// pass opaque values under that key instead of a raw embedding.
func (e *Engine) RegisterTransformer(key string, t Transformer) {
	e.transformers[key] = t
}

func (e *Engine) tryGetTransformer(key string) (Transformer, bool) {
	t, ok := e.transformers[key]
	return t, ok
}

// Add transforms value via the transformer registered under
// transformerKey, stores its embedding under tag, and feeds it to the
// processor. Returns ErrUnknownTransformer if transformerKey was
// never registered.
func (e *Engine) Add(tag, transformerKey string, value any) error {
	instance, err := e.resolveInstance(transformerKey, value)
	if err != nil {
		e.metrics.IncErrors()
		e.logf("add %q: %v", tag, err)
		return err
	}
	e.instances[tag] = instance.Embedding
	if err := e.processor.Process(tag, instance.Embedding); err != nil {
		e.metrics.IncErrors()
		return fmt.Errorf("engine: add %q: %w", tag, err)
	}
	e.metrics.IncAdded()
	return nil
}

// AddEmbedding is Add's shortcut for callers that already have a raw
// embedding and do not need a Transformer.
func (e *Engine) AddEmbedding(tag string, embedding []float64) error {
	e.instances[tag] = embedding
	if err := e.processor.Process(tag, embedding); err != nil {
		e.metrics.IncErrors()
		return fmt.Errorf("engine: add %q: %w", tag, err)
	}
	e.metrics.IncAdded()
	return nil
}

// Update transforms value and re-processes tag with the result.
func (e *Engine) Update(tag, transformerKey string, value any) error {
	instance, err := e.resolveInstance(transformerKey, value)
	if err != nil {
		e.metrics.IncErrors()
		e.logf("update %q: %v", tag, err)
		return err
	}
	e.instances[tag] = instance.Embedding
	if err := e.processor.Update(tag, instance.Embedding); err != nil {
		e.metrics.IncErrors()
		return fmt.Errorf("engine: update %q: %w", tag, err)
	}
	e.metrics.IncUpdated()
	return nil
}

// UpdateEmbedding is Update's shortcut for a raw embedding value.
func (e *Engine) UpdateEmbedding(tag string, embedding []float64) error {
	e.instances[tag] = embedding
	if err := e.processor.Update(tag, embedding); err != nil {
		e.metrics.IncErrors()
		return fmt.Errorf("engine: update %q: %w", tag, err)
	}
	e.metrics.IncUpdated()
	return nil
}

func (e *Engine) resolveInstance(transformerKey string, value any) (Instance, error) {
	transformer, ok := e.tryGetTransformer(transformerKey)
	if !ok {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownTransformer, transformerKey)
	}
	return transformer.Transform(value)
}

// Remove deletes tag from the facade's instance map and from the
// processor. Returns ErrUnknownTag if tag was never added.
//
// Note: for a Covariance processor, removing a tag from the processor
// is a documented no-op on cluster contents (see DESIGN.md) — only the
// facade's own bookkeeping (this instances map) is guaranteed to drop
// tag.
func (e *Engine) Remove(tag string) error {
	if _, ok := e.instances[tag]; !ok {
		return ErrUnknownTag
	}
	delete(e.instances, tag)
	if err := e.processor.Remove(tag); err != nil && !errors.Is(err, processor.ErrUnknownTag) {
		e.metrics.IncErrors()
		return fmt.Errorf("engine: remove %q: %w", tag, err)
	}
	e.metrics.IncRemoved()
	return nil
}

// GetEmbeddingByTag returns the embedding stored for tag, if any.
func (e *Engine) GetEmbeddingByTag(tag string) ([]float64, bool) {
	v, ok := e.instances[tag]
	return v, ok
}

// GetScoringsFor returns a Scoring for every other tag that shares
// tag's predicted cluster, ordered as returned by the processor's
// GetTagsInCluster. Returns an empty slice if the engine holds no
// instances yet.
func (e *Engine) GetScoringsFor(tag string) ([]scoring.Scoring, error) {
	if len(e.instances) == 0 {
		return nil, nil
	}
	embedding, ok := e.instances[tag]
	if !ok {
		return nil, ErrUnknownTag
	}
	clusterID, err := e.processor.Predict(embedding)
	if err != nil {
		return nil, fmt.Errorf("engine: get scorings for %q: %w", tag, err)
	}
	tags, err := e.processor.GetTagsInCluster(clusterID)
	if err != nil {
		return nil, fmt.Errorf("engine: get scorings for %q: %w", tag, err)
	}

	scorings := make([]scoring.Scoring, 0, len(tags))
	for _, other := range tags {
		if other == tag {
			continue
		}
		otherEmbedding, ok := e.instances[other]
		if !ok {
			continue
		}
		scorings = append(scorings, e.calculator.ScoreWithTag(embedding, otherEmbedding, other))
	}
	e.metrics.IncPredicted()
	return scorings, nil
}

// GetMatchesFor returns the subset of GetScoringsFor(tag) that clear
// the match threshold.
func (e *Engine) GetMatchesFor(tag string) ([]scoring.Scoring, error) {
	scorings, err := e.GetScoringsFor(tag)
	if err != nil {
		return nil, err
	}
	matches := make([]scoring.Scoring, 0, len(scorings))
	for _, s := range scorings {
		if s.IsMatch() {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

// CalculateScoringBetweenInstances scores tagA against tagB directly,
// bypassing cluster membership.
func (e *Engine) CalculateScoringBetweenInstances(tagA, tagB string) (scoring.Scoring, error) {
	a, ok := e.instances[tagA]
	if !ok {
		return scoring.Scoring{}, fmt.Errorf("%w: %q", ErrUnknownTag, tagA)
	}
	b, ok := e.instances[tagB]
	if !ok {
		return scoring.Scoring{}, fmt.Errorf("%w: %q", ErrUnknownTag, tagB)
	}
	return e.calculator.ScoreWithTag(a, b, tagB), nil
}

// CalculateScoringBetweenEmbeddings scores two raw embeddings
// directly, independent of any stored tag.
func (e *Engine) CalculateScoringBetweenEmbeddings(a, b []float64) scoring.Scoring {
	return e.calculator.Score(a, b)
}

// EvaluateClusters builds a cluster-quality report over the facade's
// current instances and processor state.
func (e *Engine) EvaluateClusters() (evaluation.ClusterReport, error) {
	report, err := evaluation.EvaluateClusters(e.instances, e.processor)
	if err != nil {
		e.metrics.IncErrors()
		return evaluation.ClusterReport{}, fmt.Errorf("engine: evaluate clusters: %w", err)
	}
	e.metrics.IncEvaluations()
	return report, nil
}

// EvaluateMatches builds a match-quality report by computing
// GetScoringsFor every currently-stored tag.
func (e *Engine) EvaluateMatches() (evaluation.MatchReport, error) {
	values := make(map[string][]scoring.Scoring, len(e.instances))
	for tag := range e.instances {
		scorings, err := e.GetScoringsFor(tag)
		if err != nil {
			e.logf("evaluate matches %q: %v", tag, err)
			continue
		}
		values[tag] = scorings
	}
	report, err := evaluation.EvaluateMatches(values)
	if err != nil {
		e.metrics.IncErrors()
		return evaluation.MatchReport{}, fmt.Errorf("engine: evaluate matches: %w", err)
	}
	e.metrics.IncEvaluations()
	return report, nil
}

// Metrics returns a snapshot of the facade's operation counters.
func (e *Engine) Metrics() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// Describe returns a short human-readable summary of facade state.
func (e *Engine) Describe() string {
	return fmt.Sprintf("Engine(instances=%d, processor=%s)", len(e.instances), e.processor.Describe())
}

func (e *Engine) logf(format string, args ...any) {
	if e.opts.Logger == nil {
		return
	}
	e.opts.Logger.Printf(format, args...)
}
