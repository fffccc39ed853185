package flat

import (
	"math"
	"testing"
)

func TestSearch_Ranking(t *testing.T) {
	idx := New()
	// Five vectors with known cosine similarities to the query (1,0):
	// slot 0 -> 1.0, slot 1 -> ~0.894, slot 2 -> ~0.707, slot 3 -> 0, slot 4 -> -1.
	vectors := [][]float32{
		{1, 0},
		{2, 1},
		{1, 1},
		{0, 1},
		{-1, 0},
	}
	if err := idx.Build(vectors); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	slots, scores, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	wantSlots := []int{0, 1, 2}
	wantScores := []float64{1, 2 / math.Sqrt(5), 1 / math.Sqrt2}
	if len(slots) != 3 {
		t.Fatalf("Search returned %d results, want 3", len(slots))
	}
	for i := range wantSlots {
		if slots[i] != wantSlots[i] {
			t.Fatalf("slots = %v, want %v", slots, wantSlots)
		}
		if math.Abs(scores[i]-wantScores[i]) > 1e-4 {
			t.Fatalf("scores = %v, want %v", scores, wantScores)
		}
	}
}

func TestSearch_TieBreakBySlot(t *testing.T) {
	idx := New()
	// Slots 1 and 3 are identical; the lower slot must rank first.
	if err := idx.Build([][]float32{
		{0, 1},
		{1, 0},
		{0, -1},
		{1, 0},
	}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	slots, _, err := idx.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(slots) != 2 || slots[0] != 1 || slots[1] != 3 {
		t.Fatalf("slots = %v, want [1 3]", slots)
	}
}

func TestSearch_DimMismatch(t *testing.T) {
	idx := New()
	if err := idx.Build([][]float32{{1, 0}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, _, err := idx.Search([]float32{1, 0, 0}, 1); err == nil {
		t.Fatalf("expected error for query dimension mismatch")
	}
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	idx := New()
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 0.5}}
	if err := idx.Build(vectors); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	restored := New()
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if restored.Len() != 3 || restored.Dim() != 3 {
		t.Fatalf("restored len/dim = %d/%d, want 3/3", restored.Len(), restored.Dim())
	}

	slots, _, err := restored.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search on restored index failed: %v", err)
	}
	if len(slots) != 1 || slots[0] != 1 {
		t.Fatalf("restored Search slots = %v, want [1]", slots)
	}

	if err := restored.UnmarshalBinary(data[:len(data)-3]); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}
