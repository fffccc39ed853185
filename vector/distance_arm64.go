//go:build arm64

package vector

import "github.com/viant/vec/search"

// cosineDistanceWithMagnitude dispatches to the NEON/SVE kernel.
func cosineDistanceWithMagnitude(a, b []float32, ma, mb float32) float32 {
	return search.Float32s(a).CosineDistanceWithMagnitude(b, ma, mb)
}
