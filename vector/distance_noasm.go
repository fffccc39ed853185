//go:build !arm64

package vector

import "github.com/viant/vec/search"

// cosineDistanceWithMagnitude uses the scalar fallback, which the library
// exports under its arm64 name.
func cosineDistanceWithMagnitude(a, b []float32, ma, mb float32) float32 {
	return search.Float32s(a).CosineDistanceWithMagnitudesNeon(b, ma, mb)
}
