package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{2, 0}

	// Orthogonal vectors -> similarity 0
	if sim, err := CosineSimilarity(a, b); err != nil || math.Abs(sim) > 1e-6 {
		t.Fatalf("CosineSimilarity(a,b) = %v, %v; want 0, nil", sim, err)
	}

	// Parallel vectors -> similarity 1 regardless of magnitude
	if sim, err := CosineSimilarity(a, c); err != nil || math.Abs(sim-1) > 1e-6 {
		t.Fatalf("CosineSimilarity(a,c) = %v, %v; want 1, nil", sim, err)
	}

	// Zero-magnitude vector -> error
	if _, err := CosineSimilarity(a, []float32{0, 0}); err == nil {
		t.Fatalf("expected error for zero-magnitude vector")
	}

	// Dimension mismatch -> error
	if _, err := CosineSimilarity(a, []float32{1, 2, 3}); err == nil {
		t.Fatalf("expected error for dimension mismatch")
	}
}

func TestCosineSimilarityWithMagnitude(t *testing.T) {
	a := []float32{3, 4}
	b := []float32{4, 3}
	ma := Magnitude(a)
	mb := Magnitude(b)

	// Must agree with the magnitude-computing variant on every platform.
	want, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	got := CosineSimilarityWithMagnitude(a, b, ma, mb)
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("CosineSimilarityWithMagnitude = %v, want %v", got, want)
	}
	// (3,4)·(4,3) / (5*5) = 24/25
	if math.Abs(got-0.96) > 1e-6 {
		t.Fatalf("CosineSimilarityWithMagnitude = %v, want 0.96", got)
	}
}

func TestL2Distance(t *testing.T) {
	d, err := L2Distance([]float32{0, 0}, []float32{3, 4})
	if err != nil {
		t.Fatalf("L2Distance failed: %v", err)
	}
	if math.Abs(d-5) > 1e-6 {
		t.Fatalf("L2Distance(0,0)-(3,4) = %v, want 5", d)
	}
}

func TestNormalized(t *testing.T) {
	v := []float32{3, 4}
	n := Normalized(v)
	if v[0] != 3 || v[1] != 4 {
		t.Fatalf("Normalized mutated its input: %v", v)
	}
	if !IsNormalized(n) {
		t.Fatalf("Normalized(%v) = %v, not unit length", v, n)
	}
	if math.Abs(float64(n[0])-0.6) > 1e-6 || math.Abs(float64(n[1])-0.8) > 1e-6 {
		t.Fatalf("Normalized(%v) = %v, want [0.6 0.8]", v, n)
	}

	// Normalizing a unit vector keeps it unchanged.
	again := Normalized(n)
	for i := range n {
		if math.Abs(float64(again[i]-n[i])) > 1e-6 {
			t.Fatalf("Normalized not idempotent: %v vs %v", again, n)
		}
	}

	// Zero vector stays zero.
	z := Normalized([]float32{0, 0})
	if z[0] != 0 || z[1] != 0 {
		t.Fatalf("Normalized zero vector = %v, want zeros", z)
	}
}
