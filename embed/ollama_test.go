package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllama_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, Model: "test-model", Dimensions: 3})
	vec, err := o.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("vec = %v, want [0.1 0.2 0.3]", vec)
	}
}

func TestOllama_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float64{0.1, 0.2}})
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, Dimensions: 3})
	if _, err := o.Embed(context.Background(), "hello"); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestOllama_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, Dimensions: 3})
	if _, err := o.Embed(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestBatched(t *testing.T) {
	calls := 0
	f := Batched(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{float32(len(text))}, nil
	})
	vectors, err := f(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("Batched failed: %v", err)
	}
	if calls != 3 || len(vectors) != 3 || vectors[2][0] != 3 {
		t.Fatalf("calls=%d vectors=%v", calls, vectors)
	}
}

func TestWithDimension(t *testing.T) {
	f := WithDimension(func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = make([]float32, len(texts[i]))
		}
		return out, nil
	}, 2)

	if _, err := f(context.Background(), []string{"ab", "cd"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f(context.Background(), []string{"ab", "c"}); err == nil {
		t.Fatalf("expected error for wrong-dim vector")
	}
}
