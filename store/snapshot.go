package store

import (
	"context"
	"fmt"

	"github.com/viant/semindex/vector"
)

// Snapshot is a consistent point-in-time view of the store used by index
// builds. It pins the maximum row id observed at creation so a scan never
// sees rows inserted after the snapshot was taken, even when ingestion
// continues in the same process.
type Snapshot struct {
	store    *Store
	count    int
	maxRowID int64
}

// Snapshot captures the current record count and row-id bound.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{store: s}
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(row_id), 0) FROM sentences`)
	if err := row.Scan(&snap.count, &snap.maxRowID); err != nil {
		return nil, fmt.Errorf("store: snapshot: %w", err)
	}
	return snap, nil
}

// Count returns the number of records covered by the snapshot.
func (s *Snapshot) Count() int { return s.count }

// Vectors streams (rowID, vector) pairs in ascending row-id order, bounded
// by the snapshot. The scan is lazy and restartable: each call re-runs the
// bounded query from the start. Iteration stops early when fn returns an
// error, which is propagated to the caller.
func (s *Snapshot) Vectors(ctx context.Context, fn func(rowID int64, vec []float32) error) error {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT row_id, vector FROM sentences WHERE row_id <= ? ORDER BY row_id`, s.maxRowID)
	if err != nil {
		return fmt.Errorf("store: snapshot scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rowID int64
		var blob []byte
		if err := rows.Scan(&rowID, &blob); err != nil {
			return fmt.Errorf("store: snapshot scan: %w", err)
		}
		vec, err := vector.Decode(blob)
		if err != nil {
			return fmt.Errorf("store: snapshot decode row %d: %w", rowID, err)
		}
		if err := fn(rowID, vec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: snapshot scan: %w", err)
	}
	return nil
}
