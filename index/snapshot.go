package index

import (
	"context"
	"fmt"

	"github.com/viant/semindex/index/ivf"
	"github.com/viant/semindex/store"
)

// Snapshot is an immutable built index plus the slot-to-row-id map that ties
// index positions back to store records. It is replaced wholesale by each
// build and never mutated in place, so concurrent searches need no mutual
// exclusion.
type Snapshot struct {
	kind            Kind
	dim             int
	rowIDs          []int64 // slot -> row id, in build scan order
	builtAtRowCount int
	idx             Index
}

// Kind returns the construction discipline of the underlying index.
func (s *Snapshot) Kind() Kind { return s.kind }

// Dim returns the vector dimensionality.
func (s *Snapshot) Dim() int { return s.dim }

// Len returns the number of indexed vectors.
func (s *Snapshot) Len() int { return len(s.rowIDs) }

// BuiltAtRowCount returns the store record count captured at build time; it
// is the staleness checkpoint.
func (s *Snapshot) BuiltAtRowCount() int { return s.builtAtRowCount }

// Trained reports whether the underlying index went through a training
// phase; always false for the flat index.
func (s *Snapshot) Trained() bool {
	if i, ok := s.idx.(*ivf.Index); ok {
		return i.Trained()
	}
	return false
}

// RowIDAt resolves a slot position to its stable row id.
func (s *Snapshot) RowIDAt(slot int) (int64, error) {
	if slot < 0 || slot >= len(s.rowIDs) {
		return 0, fmt.Errorf("index: slot %d out of range (len %d)", slot, len(s.rowIDs))
	}
	return s.rowIDs[slot], nil
}

// Search runs a kNN query and resolves the returned slots to row ids.
func (s *Snapshot) Search(query []float32, k int) (rowIDs []int64, scores []float64, err error) {
	slots, scores, err := s.idx.Search(query, k)
	if err != nil {
		return nil, nil, err
	}
	rowIDs = make([]int64, len(slots))
	for i, slot := range slots {
		if rowIDs[i], err = s.RowIDAt(slot); err != nil {
			return nil, nil, err
		}
	}
	return rowIDs, scores, nil
}

// Stale reports whether the store has grown past the snapshot. Records are
// immutable and append-only, so row-count drift is the only change the
// system needs to detect.
func (s *Snapshot) Stale(ctx context.Context, st *store.Store) (bool, error) {
	n, err := st.Count(ctx)
	if err != nil {
		return false, err
	}
	return n != s.builtAtRowCount, nil
}
