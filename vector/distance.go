package vector

import (
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// Magnitude returns the Euclidean (L2) norm of the vector.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// Normalized returns a unit-length copy of v. A zero-magnitude vector is
// returned unchanged (as a copy) since it has no direction to preserve.
func Normalized(v []float32) []float32 {
	out := append([]float32(nil), v...)
	m := Magnitude(out)
	if m == 0 {
		return out
	}
	inv := 1 / m
	for i := range out {
		out[i] *= inv
	}
	return out
}

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths or if either vector
// has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on empty vectors")
	}
	ma := Magnitude(a)
	mb := Magnitude(b)
	if ma == 0 || mb == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with zero-magnitude vector")
	}
	return CosineSimilarityWithMagnitude(a, b, ma, mb), nil
}

// CosineSimilarityWithMagnitude computes cosine similarity reusing
// precomputed magnitudes. It is the hot-path variant used by the indexes,
// which cache magnitudes at build time.
func CosineSimilarityWithMagnitude(a, b []float32, ma, mb float32) float64 {
	return float64(1 - cosineDistanceWithMagnitude(a, b, ma, mb))
}

// L2Distance computes the Euclidean distance between two vectors. It returns
// an error if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return float64(search.Float32s(a).EuclideanDistance(b)), nil
}

// IsNormalized reports whether v is unit-length within a small tolerance.
func IsNormalized(v []float32) bool {
	m := float64(Magnitude(v))
	return math.Abs(m-1) < 1e-4
}
