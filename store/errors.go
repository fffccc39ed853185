package store

import "fmt"

// DimensionMismatchError reports an insert batch whose vectors do not match
// the store's pinned dimensionality (or disagree among themselves). The
// whole batch is rejected; no partial insert occurs.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("store: vector dimension mismatch: got %d, want %d", e.Got, e.Want)
}

// NotFoundError reports row-id lookups that did not resolve. It lists every
// missing id so callers can see the full extent of the inconsistency.
type NotFoundError struct {
	RowIDs []int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: row ids not found: %v", e.RowIDs)
}
