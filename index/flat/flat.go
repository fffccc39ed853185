package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/viant/semindex/vector"
)

// Index is the exact (brute-force) cosine index. Vectors are kept flattened
// with precomputed magnitudes; slot i is the i-th vector passed to Build.
type Index struct {
	dim  int
	n    int
	vecs []float32 // n*dim, row-major
	mags []float32
}

// New returns an empty exact index.
func New() *Index { return &Index{} }

// Build loads the vectors and precomputes magnitudes.
func (i *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		i.dim, i.n, i.vecs, i.mags = 0, 0, nil, nil
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("flat: empty vectors")
	}
	vecs := make([]float32, 0, len(vectors)*dim)
	mags := make([]float32, len(vectors))
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("flat: inconsistent vector dims %d vs %d at slot %d", len(vectors[j]), dim, j)
		}
		vecs = append(vecs, vectors[j]...)
		mags[j] = vector.Magnitude(vectors[j])
	}
	i.dim = dim
	i.n = len(vectors)
	i.vecs = vecs
	i.mags = mags
	return nil
}

// Search scores all vectors and returns the top k slots by cosine
// similarity, ties broken by ascending slot.
func (i *Index) Search(query []float32, k int) ([]int, []float64, error) {
	if i.n == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("flat: query dim %d != index dim %d", len(query), i.dim)
	}
	qm := vector.Magnitude(query)
	if qm == 0 {
		return nil, nil, nil
	}

	type scored struct {
		slot  int
		score float64
	}
	scoreds := make([]scored, 0, i.n)
	for j := 0; j < i.n; j++ {
		if i.mags[j] == 0 {
			continue
		}
		s := vector.CosineSimilarityWithMagnitude(query, i.vecs[j*i.dim:(j+1)*i.dim], qm, i.mags[j])
		if math.IsNaN(s) {
			continue
		}
		scoreds = append(scoreds, scored{slot: j, score: s})
	}
	sort.Slice(scoreds, func(a, b int) bool {
		if scoreds[a].score != scoreds[b].score {
			return scoreds[a].score > scoreds[b].score
		}
		return scoreds[a].slot < scoreds[b].slot
	})
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}
	slots := make([]int, k)
	scores := make([]float64, k)
	for n := 0; n < k; n++ {
		slots[n] = scoreds[n].slot
		scores[n] = scoreds[n].score
	}
	return slots, scores, nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return i.n }

// Dim returns the vector dimensionality.
func (i *Index) Dim() int { return i.dim }

// MarshalBinary stores: dim(uint32), n(uint32), vectors (n*dim float32 LE).
// Magnitudes are recomputed on load.
func (i *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8, 8+4*len(i.vecs))
	binary.LittleEndian.PutUint32(out[0:4], uint32(i.dim))
	binary.LittleEndian.PutUint32(out[4:8], uint32(i.n))
	var buf [4]byte
	for _, v := range i.vecs {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		out = append(out, buf[:]...)
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("flat: truncated header")
	}
	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	n := int(binary.LittleEndian.Uint32(data[4:8]))
	if dim < 0 || n < 0 || len(data) != 8+4*n*dim {
		return fmt.Errorf("flat: payload length %d does not match %d vectors of dim %d", len(data), n, dim)
	}
	vectors := make([][]float32, n)
	off := 8
	for j := 0; j < n; j++ {
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[j] = vec
	}
	return i.Build(vectors)
}
