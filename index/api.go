package index

import "fmt"

// Kind selects the index construction discipline.
type Kind string

const (
	// KindFlat is the exact index: no training, every query scans all
	// vectors. The default below the size where brute force stops being fast
	// enough.
	KindFlat Kind = "flat"
	// KindIVF is the approximate index: k-means partitions are trained once
	// over the full vector set, then queries probe only the closest
	// partitions.
	KindIVF Kind = "ivf"
)

// ParseKind maps a user-facing name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFlat, KindIVF:
		return Kind(s), nil
	}
	return "", fmt.Errorf("index: unknown index kind %q (want flat or ivf)", s)
}

// Index answers kNN queries over slot positions 0..N-1 assigned at build
// time. Implementations are immutable once built and safe for concurrent
// queries.
type Index interface {
	// Build constructs the index from vectors; slot i corresponds to
	// vectors[i]. All vectors must share one dimensionality.
	Build(vectors [][]float32) error

	// Search returns up to k slots ordered by decreasing cosine similarity,
	// ties broken by ascending slot, as parallel slices.
	Search(query []float32, k int) (slots []int, scores []float64, err error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the vector dimensionality, 0 before Build.
	Dim() int

	// MarshalBinary serializes the index structure.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
