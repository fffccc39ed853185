// Package kmeans implements Lloyd's algorithm over flattened float32
// vectors. It is the training phase of the partitioned index: centroids are
// chosen once from a full snapshot of the corpus and are immutable
// afterwards.
package kmeans

import (
	"fmt"
	"math"
	"math/rand"
)

// Train clusters n = len(vectors)/dim points into k centroids and returns
// them flattened (k*dim). Initialization samples k distinct points using the
// given seed, so training is reproducible for a fixed input.
func Train(vectors []float32, dim, k, maxIter int, seed int64) ([]float32, error) {
	if dim <= 0 || len(vectors)%dim != 0 {
		return nil, fmt.Errorf("kmeans: invalid vector buffer length %d for dim %d", len(vectors), dim)
	}
	n := len(vectors) / dim
	if k <= 0 {
		return nil, fmt.Errorf("kmeans: invalid cluster count %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("kmeans: %d vectors cannot fill %d clusters", n, k)
	}

	rnd := rand.New(rand.NewSource(seed))
	centroids := make([]float32, k*dim)
	perm := rnd.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], vectors[perm[i]*dim:(perm[i]+1)*dim])
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float32, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		for i := 0; i < n; i++ {
			best := Assign(vectors[i*dim:(i+1)*dim], centroids, dim)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			c := assignments[i]
			vec := vectors[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[c*dim+d] += vec[d]
			}
			counts[c]++
		}
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Re-seed an empty cluster from a random point.
				idx := rnd.Intn(n)
				copy(centroids[j*dim:(j+1)*dim], vectors[idx*dim:(idx+1)*dim])
				continue
			}
			scale := 1.0 / float32(counts[j])
			for d := 0; d < dim; d++ {
				centroids[j*dim+d] = sums[j*dim+d] * scale
			}
		}
	}
	return centroids, nil
}

// Assign returns the index of the centroid closest to vec by squared
// Euclidean distance. For unit-length vectors this ordering matches cosine
// similarity.
func Assign(vec, centroids []float32, dim int) int {
	k := len(centroids) / dim
	best := 0
	bestDist := float32(math.MaxFloat32)
	for j := 0; j < k; j++ {
		d := sqDist(vec, centroids[j*dim:(j+1)*dim])
		if d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

// Nearest returns the indices of the n centroids closest to vec, in order of
// increasing distance.
func Nearest(vec, centroids []float32, dim, n int) []int {
	k := len(centroids) / dim
	if n > k {
		n = k
	}
	type cd struct {
		id   int
		dist float32
	}
	dists := make([]cd, k)
	for j := 0; j < k; j++ {
		dists[j] = cd{id: j, dist: sqDist(vec, centroids[j*dim:(j+1)*dim])}
	}
	// Selection sort over k entries; k is small (<= a few hundred).
	for i := 0; i < n; i++ {
		min := i
		for j := i + 1; j < k; j++ {
			if dists[j].dist < dists[min].dist {
				min = j
			}
		}
		dists[i], dists[min] = dists[min], dists[i]
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = dists[i].id
	}
	return out
}

func sqDist(a, b []float32) float32 {
	var s float32
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
