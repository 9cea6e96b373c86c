package gturbo

import "testing"

func validParams() Params {
	return Params{
		Dimensions: 2,
		Lambda:     5,
		EpsilonB:   0.2,
		EpsilonN:   0.02,
		Alpha:      0.5,
		Beta:       0.99,
		MaxAge:     10,
		R0:         1.0,
		RandomSeed: 42,
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	bad := validParams()
	bad.Lambda = 0
	if _, err := New(bad); err == nil {
		t.Fatalf("expected error for Lambda=0")
	}
	bad = validParams()
	bad.Beta = 0
	if _, err := New(bad); err == nil {
		t.Fatalf("expected error for Beta=0")
	}
}

func TestNewSeedsTwoUnlinkedNodes(t *testing.T) {
	g, err := New(validParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ids := g.GetClusterIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 seed nodes, got %d", len(ids))
	}
	if len(g.links) != 0 {
		t.Fatalf("expected no link between the seed nodes, got %d", len(g.links))
	}
	for _, id := range ids {
		if len(g.nodes[id].neighbors) != 0 {
			t.Fatalf("seed node %q has neighbors, want none", id)
		}
	}
}

func TestSameSeedProducesSamePrototypes(t *testing.T) {
	a, _ := New(validParams())
	b, _ := New(validParams())
	for _, id := range []string{"0", "1"} {
		pa, pb := a.nodes[id].prototype, b.nodes[id].prototype
		for i := range pa {
			if pa[i] != pb[i] {
				t.Fatalf("node %q prototype diverged across identical seeds: %v vs %v", id, pa, pb)
			}
		}
	}
}

func TestProcessFirstTagIsAssignedToANode(t *testing.T) {
	g, err := New(validParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Process("a", []float64{0, 0}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := g.GetClusterByTag("a"); err != nil {
		t.Fatalf("GetClusterByTag: %v", err)
	}
	// Process always runs turboAdapt against the two seeded nodes, so
	// the graph grows by at most one node per call.
	if n := len(g.GetClusterIDs()); n != 2 && n != 3 {
		t.Fatalf("expected 2 or 3 nodes after first Process, got %d", n)
	}
}

func TestProcessDimensionMismatch(t *testing.T) {
	g, _ := New(validParams())
	if err := g.Process("a", []float64{0, 0, 0}); err == nil {
		t.Fatalf("expected dimension error")
	}
}

func TestRemoveUnknownTag(t *testing.T) {
	g, _ := New(validParams())
	if err := g.Remove("missing"); err == nil {
		t.Fatalf("expected error removing unknown tag")
	}
}

func TestRemoveThenReAddSameTag(t *testing.T) {
	g, _ := New(validParams())
	_ = g.Process("a", []float64{0, 0})
	if err := g.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := g.GetClusterByTag("a"); err == nil {
		t.Fatalf("expected tag to be gone after Remove")
	}
	if err := g.Process("a", []float64{0, 0}); err != nil {
		t.Fatalf("re-Process after Remove: %v", err)
	}
}

func TestPredictReturnsSeedNode(t *testing.T) {
	g, _ := New(validParams())
	id, err := g.Predict([]float64{0, 0})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if id != "0" && id != "1" {
		t.Fatalf("expected Predict to return a seed node id, got %q", id)
	}
}

func TestManyInsertionsTriggerIncrease(t *testing.T) {
	g, _ := New(validParams())
	points := [][]float64{
		{0, 0}, {10, 10}, {0.1, 0}, {10.1, 10}, {0.2, 0},
		{10.2, 10}, {0.3, 0}, {10.3, 10}, {0.4, 0}, {10.4, 10},
		{0.5, 0}, {10.5, 10},
	}
	for i, p := range points {
		tag := string(rune('a' + i))
		if err := g.Process(tag, p); err != nil {
			t.Fatalf("Process %d: %v", i, err)
		}
	}
	if len(g.GetClusterIDs()) == 0 {
		t.Fatalf("expected at least one node after many insertions")
	}
	// 12 steps with Lambda=5 complete two cycles, so Increase ran twice.
	if g.cycle != 2 {
		t.Fatalf("cycle = %d after %d insertions with Lambda=5, want 2", g.cycle, len(points))
	}
}

func TestUpdateMovesTagAcrossNodes(t *testing.T) {
	g, _ := New(validParams())
	_ = g.Process("a", []float64{0, 0})
	before, _ := g.GetClusterByTag("a")
	if err := g.Update("a", []float64{50, 50}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _ := g.GetClusterByTag("a")
	if after == before {
		t.Fatalf("expected Update to move tag far away to a different node")
	}
}
