package ecm

import "testing"

func TestNewRejectsNonPositiveThreshold(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatalf("expected error for zero threshold")
	}
	if _, err := New(-1); err == nil {
		t.Fatalf("expected error for negative threshold")
	}
}

func TestProcessFirstTagCreatesCluster(t *testing.T) {
	e, err := New(1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Process("a", []float64{0, 0}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(e.GetClusterIDs()) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(e.GetClusterIDs()))
	}
	cid, err := e.GetClusterByTag("a")
	if err != nil {
		t.Fatalf("GetClusterByTag: %v", err)
	}
	tags, err := e.GetTagsInCluster(cid)
	if err != nil {
		t.Fatalf("GetTagsInCluster: %v", err)
	}
	if len(tags) != 1 || tags[0] != "a" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}

func TestProcessNearbyTagJoinsSameCluster(t *testing.T) {
	e, _ := New(2.0)
	_ = e.Process("a", []float64{0, 0})
	_ = e.Process("b", []float64{0.1, 0})
	if len(e.GetClusterIDs()) != 1 {
		t.Fatalf("expected nearby tag to join existing cluster, got %d clusters", len(e.GetClusterIDs()))
	}
}

func TestProcessFarTagCreatesNewCluster(t *testing.T) {
	e, _ := New(0.5)
	_ = e.Process("a", []float64{0, 0})
	_ = e.Process("b", []float64{100, 100})
	if len(e.GetClusterIDs()) != 2 {
		t.Fatalf("expected far tag to create a new cluster, got %d clusters", len(e.GetClusterIDs()))
	}
}

func TestRemoveUnknownTag(t *testing.T) {
	e, _ := New(1.0)
	if err := e.Remove("missing"); err == nil {
		t.Fatalf("expected error removing unknown tag")
	}
}

func TestRemoveLastTagDeletesCluster(t *testing.T) {
	e, _ := New(1.0)
	_ = e.Process("a", []float64{0, 0})
	cid, _ := e.GetClusterByTag("a")
	if err := e.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := e.GetTagsInCluster(cid); err == nil {
		t.Fatalf("expected cluster to be gone after removing its only tag")
	}
}

func TestPredictOnEmptyProcessor(t *testing.T) {
	e, _ := New(1.0)
	if _, err := e.Predict([]float64{0, 0}); err == nil {
		t.Fatalf("expected error predicting with no clusters")
	}
}

func TestPredictReturnsNearestCluster(t *testing.T) {
	e, _ := New(1.0)
	_ = e.Process("a", []float64{0, 0})
	_ = e.Process("b", []float64{10, 10})
	id, err := e.Predict([]float64{0.2, 0.1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	cidA, _ := e.GetClusterByTag("a")
	if id != cidA {
		t.Fatalf("Predict returned %q, want cluster of tag a (%q)", id, cidA)
	}
}

func TestRadiusHitLeavesClusterGeometryUnchanged(t *testing.T) {
	e, _ := New(5.0)
	_ = e.Process("a", []float64{0, 0})
	cid, _ := e.GetClusterByTag("a")
	// Grow the cluster's radius past the next point's distance so the
	// second tag lands in the RADIUS branch (diff <= 0).
	e.clusters[cid].Radius = 3.0
	centerBefore := append([]float64(nil), e.clusters[cid].Center...)

	if err := e.Process("b", []float64{1, 0}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if e.clusters[cid].Radius != 3.0 {
		t.Fatalf("RADIUS hit changed radius: got %v, want unchanged 3.0", e.clusters[cid].Radius)
	}
	for i := range centerBefore {
		if e.clusters[cid].Center[i] != centerBefore[i] {
			t.Fatalf("RADIUS hit changed center: got %v, want unchanged %v", e.clusters[cid].Center, centerBefore)
		}
	}
}

func TestThresholdAdaptPlacesPointOnNewBoundary(t *testing.T) {
	e, _ := New(5.0)
	_ = e.Process("a", []float64{0, 0})
	cid, _ := e.GetClusterByTag("a")
	// Seed a nonzero radius so old radius participates in the new
	// radius/center computation.
	e.clusters[cid].Radius = 1.0

	if err := e.Process("b", []float64{4, 0}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	c := e.clusters[cid]
	// The triggering point must lie on the post-adaptation boundary:
	// distance from the new center to {4,0} equals the new radius.
	dx := 4 - c.Center[0]
	dy := 0 - c.Center[1]
	dist := dx*dx + dy*dy
	want := c.Radius * c.Radius
	if diff := dist - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("triggering point not on boundary: dist^2=%v, radius^2=%v", dist, want)
	}
}

func TestUpdateMovesTagToNewCluster(t *testing.T) {
	e, _ := New(0.5)
	_ = e.Process("a", []float64{0, 0})
	cidBefore, _ := e.GetClusterByTag("a")
	if err := e.Update("a", []float64{100, 100}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	cidAfter, _ := e.GetClusterByTag("a")
	if cidAfter == cidBefore {
		t.Fatalf("expected Update to move tag to a different cluster")
	}
	if _, err := e.GetTagsInCluster(cidBefore); err == nil {
		t.Fatalf("expected old cluster to be cleaned up")
	}
}
