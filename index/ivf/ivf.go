package ivf

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/viant/semindex/internal/kmeans"
	"github.com/viant/semindex/vector"
)

const (
	// DefaultPartitions is the default number of k-means partitions.
	DefaultPartitions = 16
	// DefaultProbes is the default number of partitions scanned per query.
	DefaultProbes = 4

	defaultMaxIterations = 25
	defaultSeed          = 1
)

// Option customizes an IVF index.
type Option func(*Index)

// WithPartitions sets the number of k-means partitions trained at build time.
func WithPartitions(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.nlist = n
		}
	}
}

// WithProbes sets how many partitions each query scans. More probes trade
// speed for recall; probes >= partitions degenerates to an exact scan.
func WithProbes(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.nprobe = n
		}
	}
}

// WithSeed fixes the training initialization seed for reproducible builds.
func WithSeed(seed int64) Option {
	return func(i *Index) { i.seed = seed }
}

// WithMaxIterations bounds the k-means training loop.
func WithMaxIterations(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.maxIter = n
		}
	}
}

// Index is the trained, partitioned cosine index.
type Index struct {
	dim     int
	n       int
	nlist   int
	nprobe  int
	maxIter int
	seed    int64

	trained   bool
	centroids []float32 // nlist*dim
	lists     [][]int32 // slots per partition
	vecs      []float32 // n*dim, row-major by slot
	mags      []float32
}

// New returns an untrained IVF index with the given options.
func New(opts ...Option) *Index {
	i := &Index{
		nlist:   DefaultPartitions,
		nprobe:  DefaultProbes,
		maxIter: defaultMaxIterations,
		seed:    defaultSeed,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Partitions returns the configured partition count.
func (i *Index) Partitions() int { return i.nlist }

// Trained reports whether the training phase has completed.
func (i *Index) Trained() bool { return i.trained }

// Build runs the training phase over the full vector set and then assigns
// every vector to its partition. It fails when fewer vectors than partitions
// are supplied; the caller enforces the larger training floor.
func (i *Index) Build(vectors [][]float32) error {
	if len(vectors) < i.nlist {
		return fmt.Errorf("ivf: %d vectors cannot train %d partitions", len(vectors), i.nlist)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("ivf: empty vectors")
	}
	flat := make([]float32, 0, len(vectors)*dim)
	mags := make([]float32, len(vectors))
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("ivf: inconsistent vector dims %d vs %d at slot %d", len(vectors[j]), dim, j)
		}
		flat = append(flat, vectors[j]...)
		mags[j] = vector.Magnitude(vectors[j])
	}

	centroids, err := kmeans.Train(flat, dim, i.nlist, i.maxIter, i.seed)
	if err != nil {
		return fmt.Errorf("ivf: training: %w", err)
	}

	lists := make([][]int32, i.nlist)
	for j := range vectors {
		p := kmeans.Assign(flat[j*dim:(j+1)*dim], centroids, dim)
		lists[p] = append(lists[p], int32(j))
	}

	i.dim = dim
	i.n = len(vectors)
	i.centroids = centroids
	i.lists = lists
	i.vecs = flat
	i.mags = mags
	i.trained = true
	return nil
}

// Search probes the nprobe closest partitions and returns up to k slots by
// decreasing cosine similarity, ties broken by ascending slot.
func (i *Index) Search(query []float32, k int) ([]int, []float64, error) {
	if !i.trained {
		return nil, nil, fmt.Errorf("ivf: search before training")
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("ivf: query dim %d != index dim %d", len(query), i.dim)
	}
	qm := vector.Magnitude(query)
	if qm == 0 {
		return nil, nil, nil
	}

	type scored struct {
		slot  int
		score float64
	}
	var scoreds []scored
	for _, p := range kmeans.Nearest(query, i.centroids, i.dim, i.nprobe) {
		for _, slot := range i.lists[p] {
			j := int(slot)
			if i.mags[j] == 0 {
				continue
			}
			s := vector.CosineSimilarityWithMagnitude(query, i.vecs[j*i.dim:(j+1)*i.dim], qm, i.mags[j])
			if math.IsNaN(s) {
				continue
			}
			scoreds = append(scoreds, scored{slot: j, score: s})
		}
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

// MarshalBinary stores: dim, nlist, nprobe, n (uint32 each), centroids
// (nlist*dim float32), per-partition slot lists (len uint32 + int32 slots),
// vectors (n*dim float32). All little-endian.
func (i *Index) MarshalBinary() ([]byte, error) {
	if !i.trained {
		return nil, fmt.Errorf("ivf: marshal before training")
	}
	size := 16 + 4*len(i.centroids) + 4*i.nlist + 4*i.n + 4*len(i.vecs)
	out := make([]byte, 0, size)
	var buf [4]byte
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		out = append(out, buf[:]...)
	}
	putF32 := func(v float32) { putU32(math.Float32bits(v)) }

	putU32(uint32(i.dim))
	putU32(uint32(i.nlist))
	putU32(uint32(i.nprobe))
	putU32(uint32(i.n))
	for _, v := range i.centroids {
		putF32(v)
	}
	for _, list := range i.lists {
		putU32(uint32(len(list)))
		for _, slot := range list {
			putU32(uint32(slot))
		}
	}
	for _, v := range i.vecs {
		putF32(v)
	}
	return out, nil
}

// UnmarshalBinary restores a trained index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return fmt.Errorf("ivf: truncated header")
	}
	off := 0
	getU32 := func() (uint32, error) {
		if off+4 > len(data) {
			return 0, fmt.Errorf("ivf: truncated at offset %d", off)
		}
		v := binary.LittleEndian.Uint32(data[off:])
		off += 4
		return v, nil
	}

	dim, _ := getU32()
	nlist, _ := getU32()
	nprobe, _ := getU32()
	n, _ := getU32()
	if dim == 0 || nlist == 0 {
		return fmt.Errorf("ivf: invalid header dim=%d nlist=%d", dim, nlist)
	}
	// Header counts are untrusted; bound every allocation by the bytes
	// actually present so a crafted payload cannot force huge allocations.
	if need := int64(nlist) * int64(dim) * 4; need > int64(len(data)-off) {
		return fmt.Errorf("ivf: header claims %d centroid floats, %d bytes left", int64(nlist)*int64(dim), len(data)-off)
	}

	centroids := make([]float32, int(nlist)*int(dim))
	for j := range centroids {
		v, err := getU32()
		if err != nil {
			return err
		}
		centroids[j] = math.Float32frombits(v)
	}

	lists := make([][]int32, nlist)
	total := 0
	for p := range lists {
		ln, err := getU32()
		if err != nil {
			return err
		}
		if int64(ln)*4 > int64(len(data)-off) {
			return fmt.Errorf("ivf: partition list of %d slots exceeds %d bytes left", ln, len(data)-off)
		}
		list := make([]int32, ln)
		for j := range list {
			v, err := getU32()
			if err != nil {
				return err
			}
			if v >= n {
				return fmt.Errorf("ivf: slot %d out of range (n=%d)", v, n)
			}
			list[j] = int32(v)
		}
		lists[p] = list
		total += int(ln)
	}
	if total != int(n) {
		return fmt.Errorf("ivf: partition lists cover %d slots, want %d", total, n)
	}

	if need := int64(n) * int64(dim) * 4; need > int64(len(data)-off) {
		return fmt.Errorf("ivf: header claims %d vector floats, %d bytes left", int64(n)*int64(dim), len(data)-off)
	}
	vecs := make([]float32, int(n)*int(dim))
	for j := range vecs {
		v, err := getU32()
		if err != nil {
			return err
		}
		vecs[j] = math.Float32frombits(v)
	}
	if off != len(data) {
		return fmt.Errorf("ivf: %d trailing bytes", len(data)-off)
	}

	mags := make([]float32, n)
	for j := 0; j < int(n); j++ {
		mags[j] = vector.Magnitude(vecs[j*int(dim) : (j+1)*int(dim)])
	}

	i.dim = int(dim)
	i.nlist = int(nlist)
	i.nprobe = int(nprobe)
	i.n = int(n)
	i.centroids = centroids
	i.lists = lists
	i.vecs = vecs
	i.mags = mags
	i.trained = true
	return nil
}
