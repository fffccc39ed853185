package index

import "fmt"

// InsufficientDataError reports an IVF build requested below the training
// floor. The caller can recover by falling back to the flat index or by
// deferring the build until the corpus grows.
type InsufficientDataError struct {
	Have       int
	Need       int
	Partitions int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("index: %d records is below the training floor of %d for %d partitions",
		e.Have, e.Need, e.Partitions)
}

// CorruptIndexError reports an index artifact that cannot be loaded as one
// consistent unit (bad header, truncation, or a slot map / payload
// mismatch). Recovery requires a rebuild from the store.
type CorruptIndexError struct {
	Path   string
	Reason string
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("index: corrupt artifact %s: %s", e.Path, e.Reason)
}
