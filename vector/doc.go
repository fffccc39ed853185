// Package vector provides the embedding primitives shared by the store and
// the indexes: BLOB encoding of float32 vectors, L2 normalization, and
// similarity/distance functions backed by github.com/viant/vec SIMD kernels.
package vector
