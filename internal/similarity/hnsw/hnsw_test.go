package hnsw

import "testing"

func TestNearest(t *testing.T) {
	idx := New(3)
	if err := idx.Add("a", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := idx.Add("b", []float64{0.9, 0.1, 0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := idx.Add("c", []float64{0, 0, 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len = %d", idx.Len())
	}

	ids, err := idx.Nearest([]float64{1, 0, 0}, 2, 0.5)
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("Nearest = %v, want [a b]", ids)
	}
}

func TestDimensionMismatch(t *testing.T) {
	idx := New(2)
	if err := idx.Add("a", []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error adding wrong dimension")
	}
	if _, err := idx.Nearest([]float64{1}, 1, 0); err == nil {
		t.Fatal("expected error querying wrong dimension")
	}
}

func TestThresholdFiltersNeighbors(t *testing.T) {
	idx := New(2)
	idx.Add("near", []float64{1, 0})
	idx.Add("far", []float64{0, 1})

	ids, err := idx.Nearest([]float64{1, 0}, 5, 0.9)
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "near" {
		t.Fatalf("Nearest = %v, want [near]", ids)
	}
}
