// Package operations implements the Operation tagged union and its
// dispatcher, routing a single Operation value to the appropriate
// engine facade method, mirroring trigger/operations.py's
// OperationType enum and interference/interface.py's on_operation*
// dispatch methods.
//
// Go has no algebraic sum types, so Operation is the idiomatic
// generalization: a Kind discriminant plus one populated payload
// field per kind, the same shape the teacher itself uses for
// per-call option structs (see pkg/memory/engine/options.go).
package operations

import (
	"errors"
	"fmt"

	"github.com/latticerun/interference/pkg/engine"
	"github.com/latticerun/interference/pkg/evaluation"
	"github.com/latticerun/interference/pkg/scoring"
)

// Kind discriminates an Operation's payload.
type Kind int

const (
	KindAdd Kind = iota
	KindUpdate
	KindRemove
	KindCalculateScores
	KindCalculateMatches
	KindEvaluateClusters
	KindEvaluateMatches
	KindEvaluateClustersAndMatches
)

// ErrUnknownKind is returned by Dispatch for an Operation whose Kind
// has no registered handler.
var ErrUnknownKind = errors.New("operations: unknown operation kind")

// AddInfo is the payload for KindAdd and KindUpdate.
type AddInfo struct {
	Tag            string
	TransformerKey string
	Value          any
}

// RemoveInfo is the payload for KindRemove.
type RemoveInfo struct {
	Tag string
}

// ScoringInfo is the payload for KindCalculateScores and
// KindCalculateMatches.
type ScoringInfo struct {
	Tag string
}

// EvaluateMatchesInfo is the payload for KindEvaluateMatches and
// KindEvaluateClustersAndMatches. Values restricts evaluation to the
// listed tags; a nil/empty Values evaluates every tag currently held
// by the engine.
type EvaluateMatchesInfo struct {
	Values []string
}

// Operation is a tagged union: exactly the field matching Kind is
// populated.
type Operation struct {
	Kind            Kind
	Add             *AddInfo
	Remove          *RemoveInfo
	Scoring         *ScoringInfo
	EvaluateMatches *EvaluateMatchesInfo
}

// NewAdd returns a KindAdd Operation.
func NewAdd(tag, transformerKey string, value any) Operation {
	return Operation{Kind: KindAdd, Add: &AddInfo{Tag: tag, TransformerKey: transformerKey, Value: value}}
}

// NewUpdate returns a KindUpdate Operation.
func NewUpdate(tag, transformerKey string, value any) Operation {
	return Operation{Kind: KindUpdate, Add: &AddInfo{Tag: tag, TransformerKey: transformerKey, Value: value}}
}

// NewRemove returns a KindRemove Operation.
func NewRemove(tag string) Operation {
	return Operation{Kind: KindRemove, Remove: &RemoveInfo{Tag: tag}}
}

// NewCalculateScores returns a KindCalculateScores Operation.
func NewCalculateScores(tag string) Operation {
	return Operation{Kind: KindCalculateScores, Scoring: &ScoringInfo{Tag: tag}}
}

// NewCalculateMatches returns a KindCalculateMatches Operation.
func NewCalculateMatches(tag string) Operation {
	return Operation{Kind: KindCalculateMatches, Scoring: &ScoringInfo{Tag: tag}}
}

// NewEvaluateClusters returns a KindEvaluateClusters Operation.
func NewEvaluateClusters() Operation {
	return Operation{Kind: KindEvaluateClusters}
}

// NewEvaluateMatches returns a KindEvaluateMatches Operation over the
// given tags (or every tag, if values is empty).
func NewEvaluateMatches(values ...string) Operation {
	return Operation{Kind: KindEvaluateMatches, EvaluateMatches: &EvaluateMatchesInfo{Values: values}}
}

// NewEvaluateClustersAndMatches returns a KindEvaluateClustersAndMatches
// Operation over the given tags (or every tag, if values is empty).
func NewEvaluateClustersAndMatches(values ...string) Operation {
	return Operation{Kind: KindEvaluateClustersAndMatches, EvaluateMatches: &EvaluateMatchesInfo{Values: values}}
}

// Result carries whichever outputs Dispatch's Operation produced; only
// the fields relevant to the dispatched Kind are populated.
type Result struct {
	Scorings     []scoring.Scoring
	ClusterReport *evaluation.ClusterReport
	MatchReport   *evaluation.MatchReport
}

// Dispatch routes op to the matching method on e, mirroring
// Interface.on_operation's type-based branch.
func Dispatch(e *engine.Engine, op Operation) (Result, error) {
	switch op.Kind {
	case KindAdd:
		if op.Add == nil {
			return Result{}, fmt.Errorf("%w: KindAdd missing payload", ErrUnknownKind)
		}
		return Result{}, e.Add(op.Add.Tag, op.Add.TransformerKey, op.Add.Value)

	case KindUpdate:
		if op.Add == nil {
			return Result{}, fmt.Errorf("%w: KindUpdate missing payload", ErrUnknownKind)
		}
		return Result{}, e.Update(op.Add.Tag, op.Add.TransformerKey, op.Add.Value)

	case KindRemove:
		if op.Remove == nil {
			return Result{}, fmt.Errorf("%w: KindRemove missing payload", ErrUnknownKind)
		}
		return Result{}, e.Remove(op.Remove.Tag)

	case KindCalculateScores:
		if op.Scoring == nil {
			return Result{}, fmt.Errorf("%w: KindCalculateScores missing payload", ErrUnknownKind)
		}
		scorings, err := e.GetScoringsFor(op.Scoring.Tag)
		return Result{Scorings: scorings}, err

	case KindCalculateMatches:
		if op.Scoring == nil {
			return Result{}, fmt.Errorf("%w: KindCalculateMatches missing payload", ErrUnknownKind)
		}
		scorings, err := e.GetMatchesFor(op.Scoring.Tag)
		return Result{Scorings: scorings}, err

	case KindEvaluateClusters:
		report, err := e.EvaluateClusters()
		if err != nil {
			return Result{}, err
		}
		return Result{ClusterReport: &report}, nil

	case KindEvaluateMatches:
		report, err := evaluateMatchesFor(e, op.EvaluateMatches)
		if err != nil {
			return Result{}, err
		}
		return Result{MatchReport: &report}, nil

	case KindEvaluateClustersAndMatches:
		clusterReport, err := e.EvaluateClusters()
		if err != nil {
			return Result{}, err
		}
		matchReport, err := evaluateMatchesFor(e, op.EvaluateMatches)
		if err != nil {
			return Result{}, err
		}
		return Result{ClusterReport: &clusterReport, MatchReport: &matchReport}, nil

	default:
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownKind, op.Kind)
	}
}

func evaluateMatchesFor(e *engine.Engine, info *EvaluateMatchesInfo) (evaluation.MatchReport, error) {
	if info == nil || len(info.Values) == 0 {
		return e.EvaluateMatches()
	}
	values := make(map[string][]scoring.Scoring, len(info.Values))
	for _, tag := range info.Values {
		scorings, err := e.GetScoringsFor(tag)
		if err != nil {
			continue
		}
		values[tag] = scorings
	}
	return evaluation.EvaluateMatches(values)
}
