package embed

import (
	"context"
	"fmt"
)

// Func encodes a single text into an embedding vector.
type Func func(ctx context.Context, text string) ([]float32, error)

// BatchFunc encodes a batch of texts, returning one vector per input in
// input order.
type BatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Batched lifts a single-text encoder into a BatchFunc that encodes
// sequentially.
func Batched(f Func) BatchFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vec, err := f(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embed: text %d: %w", i, err)
			}
			vectors[i] = vec
		}
		return vectors, nil
	}
}

// WithDimension wraps a BatchFunc, rejecting any vector whose length is not
// dim. It pins the model contract at the boundary so a misconfigured model
// fails here rather than deep in the store.
func WithDimension(f BatchFunc, dim int) BatchFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors, err := f(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, vec := range vectors {
			if len(vec) != dim {
				return nil, fmt.Errorf("embed: text %d encoded to dim %d, want %d", i, len(vec), dim)
			}
		}
		return vectors, nil
	}
}
