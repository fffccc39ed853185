package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/viant/semindex/index"
	"github.com/viant/semindex/store"
	"github.com/viant/semindex/vector"
)

// Match is one search result: a store record paired with its cosine
// similarity to the query.
type Match struct {
	RowID     int64
	Text      string
	SourceRef string
	Score     float64
}

// StaleIndexError reports a snapshot whose record count no longer matches
// the store. Search refuses to serve from a stale index; rebuild and retry.
type StaleIndexError struct {
	IndexedRows int
	StoreRows   int
}

func (e *StaleIndexError) Error() string {
	return fmt.Sprintf("search: index covers %d records but store holds %d, rebuild required",
		e.IndexedRows, e.StoreRows)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the query logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine serves similarity queries over one store/snapshot pair. The
// snapshot is immutable; a rebuilt index means a new Engine (or a new
// snapshot via Reset).
type Engine struct {
	store  *store.Store
	snap   *index.Snapshot
	logger *slog.Logger
}

// New returns an Engine over the given store and snapshot.
func New(st *store.Store, snap *index.Snapshot, opts ...Option) *Engine {
	e := &Engine{store: st, snap: snap, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the snapshot the engine serves from.
func (e *Engine) Snapshot() *index.Snapshot { return e.snap }

// Reset swaps in a freshly built snapshot.
func (e *Engine) Reset(snap *index.Snapshot) { e.snap = snap }

// Search returns up to topK records most similar to query, best first, ties
// broken by ascending row id. Results scoring below minSimilarity are
// dropped, so fewer than topK matches (or none) is a valid outcome. The
// query is normalized here once; stored vectors were normalized at insert.
func (e *Engine) Search(ctx context.Context, query []float32, topK int, minSimilarity float64) ([]Match, error) {
	if e.snap == nil {
		return nil, fmt.Errorf("search: no index snapshot loaded")
	}
	if topK < 1 {
		return nil, fmt.Errorf("search: topK must be >= 1, got %d", topK)
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("search: minSimilarity must be in [0, 1], got %g", minSimilarity)
	}
	if len(query) != e.snap.Dim() {
		return nil, fmt.Errorf("search: query has dim %d, index has dim %d", len(query), e.snap.Dim())
	}

	stale, err := e.snap.Stale(ctx, e.store)
	if err != nil {
		return nil, err
	}
	if stale {
		n, err := e.store.Count(ctx)
		if err != nil {
			return nil, err
		}
		return nil, &StaleIndexError{IndexedRows: e.snap.BuiltAtRowCount(), StoreRows: n}
	}

	rowIDs, scores, err := e.snap.Search(vector.Normalized(query), topK)
	if err != nil {
		return nil, err
	}
	if len(rowIDs) == 0 {
		return nil, nil
	}

	records, err := e.store.GetByRowIDs(ctx, rowIDs)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(records))
	for i, rec := range records {
		if scores[i] < minSimilarity {
			continue
		}
		matches = append(matches, Match{
			RowID:     rec.RowID,
			Text:      rec.Text,
			SourceRef: rec.SourceRef,
			Score:     scores[i],
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].RowID < matches[j].RowID
	})

	e.logger.Debug("search served",
		"topK", topK, "minSimilarity", minSimilarity, "matches", len(matches))
	return matches, nil
}
