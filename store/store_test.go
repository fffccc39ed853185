package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/viant/semindex/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := New(db)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestInsertBatch_DedupIdempotence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []Sentence{
		{Text: "the quick brown fox", SourceRef: "a.md", Vector: []float32{1, 0, 0}},
		{Text: "jumps over the lazy dog", SourceRef: "a.md", Vector: []float32{0, 1, 0}},
	}
	first, err := s.InsertBatch(ctx, batch)
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if len(first) != 2 || !first[0].WasNew || !first[1].WasNew {
		t.Fatalf("first insert results = %+v, want two new rows", first)
	}

	// Re-ingesting identical text is a no-op that returns the same row ids,
	// even with different provenance and a different vector.
	again, err := s.InsertBatch(ctx, []Sentence{
		{Text: "  the   quick brown fox ", SourceRef: "b.md", Vector: []float32{0, 0, 1}},
	})
	if err != nil {
		t.Fatalf("InsertBatch repeat failed: %v", err)
	}
	if again[0].WasNew {
		t.Fatalf("duplicate text reported WasNew=true")
	}
	if again[0].RowID != first[0].RowID {
		t.Fatalf("duplicate row id = %d, want %d", again[0].RowID, first[0].RowID)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}

	// First-seen vector and source win for duplicates.
	recs, err := s.GetByRowIDs(ctx, []int64{first[0].RowID})
	if err != nil {
		t.Fatalf("GetByRowIDs failed: %v", err)
	}
	if recs[0].SourceRef != "a.md" {
		t.Fatalf("duplicate overwrote source_ref: %q", recs[0].SourceRef)
	}
	if recs[0].Vector[0] != 1 {
		t.Fatalf("duplicate overwrote vector: %v", recs[0].Vector)
	}
}

func TestInsertBatch_InBatchDuplicates(t *testing.T) {
	s := newTestStore(t)
	res, err := s.InsertBatch(context.Background(), []Sentence{
		{Text: "same sentence", SourceRef: "a.md", Vector: []float32{1, 0}},
		{Text: "same sentence", SourceRef: "a.md", Vector: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if !res[0].WasNew || res[1].WasNew {
		t.Fatalf("in-batch duplicate results = %+v", res)
	}
	if res[0].RowID != res[1].RowID {
		t.Fatalf("in-batch duplicate row ids differ: %d vs %d", res[0].RowID, res[1].RowID)
	}
}

func TestInsertBatch_DimensionGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBatch(ctx, []Sentence{
		{Text: "first sentence", SourceRef: "a.md", Vector: []float32{1, 0, 0}},
	}); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	_, err := s.InsertBatch(ctx, []Sentence{
		{Text: "good dimensions", SourceRef: "a.md", Vector: []float32{0, 1, 0}},
		{Text: "bad dimensions", SourceRef: "a.md", Vector: []float32{0, 1}},
	})
	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("InsertBatch error = %v, want DimensionMismatchError", err)
	}
	if dimErr.Want != 3 || dimErr.Got != 2 {
		t.Fatalf("DimensionMismatchError = %+v, want {Want:3 Got:2}", dimErr)
	}

	// The whole batch is rejected; the valid item must not have been written.
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count after rejected batch = %d, want 1", n)
	}
}

func TestInsertBatch_NormalizesVectorsOnce(t *testing.T) {
	s := newTestStore(t)
	res, err := s.InsertBatch(context.Background(), []Sentence{
		{Text: "magnitude does not matter", SourceRef: "a.md", Vector: []float32{3, 4}},
	})
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	recs, err := s.GetByRowIDs(context.Background(), []int64{res[0].RowID})
	if err != nil {
		t.Fatalf("GetByRowIDs failed: %v", err)
	}
	v := recs[0].Vector
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-4 {
		t.Fatalf("stored vector %v is not unit length", v)
	}
}

func TestGetByRowIDs_OrderAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	res, err := s.InsertBatch(ctx, []Sentence{
		{Text: "sentence one", SourceRef: "a.md", Vector: []float32{1, 0}},
		{Text: "sentence two", SourceRef: "b.md", Vector: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	// Request order is preserved, not row-id order.
	recs, err := s.GetByRowIDs(ctx, []int64{res[1].RowID, res[0].RowID})
	if err != nil {
		t.Fatalf("GetByRowIDs failed: %v", err)
	}
	if recs[0].RowID != res[1].RowID || recs[1].RowID != res[0].RowID {
		t.Fatalf("GetByRowIDs order = [%d %d], want [%d %d]",
			recs[0].RowID, recs[1].RowID, res[1].RowID, res[0].RowID)
	}

	_, err = s.GetByRowIDs(ctx, []int64{res[0].RowID, 999, 1000})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("GetByRowIDs error = %v, want NotFoundError", err)
	}
	if len(nf.RowIDs) != 2 || nf.RowIDs[0] != 999 || nf.RowIDs[1] != 1000 {
		t.Fatalf("NotFoundError.RowIDs = %v, want [999 1000]", nf.RowIDs)
	}
}

func TestClear_ResetsRowIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBatch(ctx, []Sentence{
		{Text: "before clear", SourceRef: "a.md", Vector: []float32{1, 0}},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s.Dim() != 0 {
		t.Fatalf("Dim after clear = %d, want 0", s.Dim())
	}

	// The dimension pin is gone too: a different dimensionality is accepted.
	res, err := s.InsertBatch(ctx, []Sentence{
		{Text: "after clear", SourceRef: "a.md", Vector: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("InsertBatch after clear failed: %v", err)
	}
	if res[0].RowID != 1 {
		t.Fatalf("first row id after clear = %d, want 1", res[0].RowID)
	}
}

func TestSnapshot_BoundedScan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBatch(ctx, []Sentence{
		{Text: "row one", SourceRef: "a.md", Vector: []float32{1, 0}},
		{Text: "row two", SourceRef: "a.md", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Count() != 2 {
		t.Fatalf("Snapshot.Count = %d, want 2", snap.Count())
	}

	// A row inserted after the snapshot must not be observed by the scan.
	if _, err := s.InsertBatch(ctx, []Sentence{
		{Text: "row three", SourceRef: "a.md", Vector: []float32{1, 1}},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	var seen []int64
	err = snap.Vectors(ctx, func(rowID int64, vec []float32) error {
		seen = append(seen, rowID)
		if len(vec) != 2 {
			t.Fatalf("vector dim = %d, want 2", len(vec))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Vectors failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("snapshot scan row ids = %v, want [1 2]", seen)
	}

	// The scan is restartable: a second pass yields the same rows.
	var second []int64
	if err := snap.Vectors(ctx, func(rowID int64, _ []float32) error {
		second = append(second, rowID)
		return nil
	}); err != nil {
		t.Fatalf("second Vectors pass failed: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("second scan saw %d rows, want 2", len(second))
	}
}

func TestStatsInfo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.InsertBatch(ctx, []Sentence{
		{Text: "from doc a", SourceRef: "a.md", Vector: []float32{1, 0, 0}},
		{Text: "also from doc a", SourceRef: "a.md", Vector: []float32{0, 1, 0}},
		{Text: "from doc b", SourceRef: "b.md", Vector: []float32{0, 0, 1}},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	st, err := s.StatsInfo(ctx)
	if err != nil {
		t.Fatalf("StatsInfo failed: %v", err)
	}
	if st.Records != 3 {
		t.Fatalf("Stats.Records = %d, want 3", st.Records)
	}
	if st.Dim != 3 {
		t.Fatalf("Stats.Dim = %d, want 3", st.Dim)
	}
	if st.DistinctSources != 2 {
		t.Fatalf("Stats.DistinctSources = %d, want 2", st.DistinctSources)
	}
	if st.SizeBytes <= 0 {
		t.Fatalf("Stats.SizeBytes = %d, want > 0", st.SizeBytes)
	}
}

func TestContentHash_Normalization(t *testing.T) {
	if ContentHash("hello  world") != ContentHash("  hello world \n") {
		t.Fatalf("ContentHash should be invariant under whitespace normalization")
	}
	if ContentHash("hello world") == ContentHash("hello worlds") {
		t.Fatalf("distinct texts should not collide")
	}
}
