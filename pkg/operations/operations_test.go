package operations

import (
	"testing"

	"github.com/latticerun/interference/pkg/ecm"
	"github.com/latticerun/interference/pkg/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	proc, err := ecm.New(1.0)
	if err != nil {
		t.Fatalf("ecm.New: %v", err)
	}
	e := engine.New(proc, engine.DefaultOptions())
	e.RegisterTransformer("vector", engine.VectorTransformer{})
	return e
}

func TestDispatchAdd(t *testing.T) {
	e := newTestEngine(t)
	if _, err := Dispatch(e, NewAdd("a", "vector", []float64{1, 0})); err != nil {
		t.Fatalf("Dispatch add: %v", err)
	}
	if _, ok := e.GetEmbeddingByTag("a"); !ok {
		t.Fatalf("expected tag a to be stored")
	}
}

func TestDispatchAddUnknownTransformer(t *testing.T) {
	e := newTestEngine(t)
	if _, err := Dispatch(e, NewAdd("a", "missing", []float64{1, 0})); err == nil {
		t.Fatalf("expected error for unknown transformer")
	}
}

func TestDispatchRemove(t *testing.T) {
	e := newTestEngine(t)
	_, _ = Dispatch(e, NewAdd("a", "vector", []float64{1, 0}))
	if _, err := Dispatch(e, NewRemove("a")); err != nil {
		t.Fatalf("Dispatch remove: %v", err)
	}
	if _, ok := e.GetEmbeddingByTag("a"); ok {
		t.Fatalf("expected tag a to be removed")
	}
}

func TestDispatchRemoveUnknownTag(t *testing.T) {
	e := newTestEngine(t)
	if _, err := Dispatch(e, NewRemove("missing")); err == nil {
		t.Fatalf("expected error removing unknown tag")
	}
}

func TestDispatchCalculateScores(t *testing.T) {
	e := newTestEngine(t)
	_, _ = Dispatch(e, NewAdd("a", "vector", []float64{0, 0}))
	_, _ = Dispatch(e, NewAdd("b", "vector", []float64{0.1, 0}))

	result, err := Dispatch(e, NewCalculateScores("a"))
	if err != nil {
		t.Fatalf("Dispatch calculate scores: %v", err)
	}
	if result.Scorings == nil {
		t.Fatalf("expected non-nil scorings")
	}
}

func TestDispatchEvaluateClusters(t *testing.T) {
	e := newTestEngine(t)
	_, _ = Dispatch(e, NewAdd("a", "vector", []float64{0, 0}))

	result, err := Dispatch(e, NewEvaluateClusters())
	if err != nil {
		t.Fatalf("Dispatch evaluate clusters: %v", err)
	}
	if result.ClusterReport == nil {
		t.Fatalf("expected a ClusterReport")
	}
}

func TestDispatchEvaluateClustersAndMatches(t *testing.T) {
	e := newTestEngine(t)
	_, _ = Dispatch(e, NewAdd("a", "vector", []float64{0, 0}))
	_, _ = Dispatch(e, NewAdd("b", "vector", []float64{0.1, 0}))

	result, err := Dispatch(e, NewEvaluateClustersAndMatches())
	if err != nil {
		t.Fatalf("Dispatch evaluate clusters and matches: %v", err)
	}
	if result.ClusterReport == nil || result.MatchReport == nil {
		t.Fatalf("expected both ClusterReport and MatchReport, got %+v", result)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	e := newTestEngine(t)
	if _, err := Dispatch(e, Operation{Kind: Kind(99)}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
