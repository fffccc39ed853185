package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/viant/semindex/vector"
)

// Sentence is the unit of ingestion: normalized text plus provenance and the
// embedding produced by the model.
type Sentence struct {
	Text      string
	SourceRef string
	Vector    []float32
}

// Record is a fully materialized row of the sentences table.
type Record struct {
	RowID       int64
	ContentHash string
	Text        string
	SourceRef   string
	Vector      []float32
	CreatedAt   time.Time
}

// InsertResult reports the outcome of one batch item, in input order.
type InsertResult struct {
	RowID  int64
	WasNew bool
}

// Stats summarizes the store contents.
type Stats struct {
	Records         int
	Dim             int
	DistinctSources int
	SizeBytes       int64
}

// Store is the durable sentence-embedding record store. It assumes a single
// active writer within one process; concurrent cross-process writers are
// outside its contract.
type Store struct {
	db  *sql.DB
	dim int // pinned by the first inserted record; 0 while empty
}

// New wraps the provided database, ensuring the schema exists and loading
// the pinned vector dimensionality from any existing record.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	s := &Store{db: db}
	if err := s.loadDim(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadDim() error {
	var blob []byte
	err := s.db.QueryRow(`SELECT vector FROM sentences ORDER BY row_id LIMIT 1`).Scan(&blob)
	switch {
	case err == sql.ErrNoRows:
		s.dim = 0
		return nil
	case err != nil:
		return fmt.Errorf("store: load dimension: %w", err)
	}
	vec, err := vector.Decode(blob)
	if err != nil {
		return fmt.Errorf("store: load dimension: %w", err)
	}
	s.dim = len(vec)
	return nil
}

// Dim returns the pinned vector dimensionality, or 0 for an empty store.
func (s *Store) Dim() int { return s.dim }

// NormalizeText canonicalizes sentence text before hashing: surrounding
// whitespace is trimmed and internal runs collapse to single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ContentHash returns the deduplication key for a sentence: the hex SHA-256
// of its normalized text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// InsertBatch inserts the sentences in one transaction, deduplicating by
// content hash. Re-ingesting known text is a no-op that reports the existing
// row id with WasNew=false; when the same text arrives with a different
// vector the first-seen vector wins (embeddings are assumed deterministic
// per model version). Vectors are L2-normalized here, exactly once.
//
// The batch is validated before any write: a single vector of the wrong
// dimensionality rejects the whole batch with DimensionMismatchError.
func (s *Store) InsertBatch(ctx context.Context, sentences []Sentence) ([]InsertResult, error) {
	if len(sentences) == 0 {
		return nil, nil
	}
	want := s.dim
	if want == 0 {
		want = len(sentences[0].Vector)
	}
	if want == 0 {
		return nil, fmt.Errorf("store: insert batch with empty vector")
	}
	for i := range sentences {
		if got := len(sentences[i].Vector); got != want {
			return nil, &DimensionMismatchError{Want: want, Got: got}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin insert batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lookup, err := tx.PrepareContext(ctx, `SELECT row_id FROM sentences WHERE content_hash = ?`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare lookup: %w", err)
	}
	defer lookup.Close()

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO sentences(content_hash, text, source_ref, vector) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare insert: %w", err)
	}
	defer insert.Close()

	results := make([]InsertResult, 0, len(sentences))
	seen := make(map[string]int64, len(sentences)) // dedupe within the batch itself
	for _, sent := range sentences {
		text := NormalizeText(sent.Text)
		hash := ContentHash(text)
		if rowID, ok := seen[hash]; ok {
			results = append(results, InsertResult{RowID: rowID, WasNew: false})
			continue
		}

		var rowID int64
		err := lookup.QueryRowContext(ctx, hash).Scan(&rowID)
		switch {
		case err == sql.ErrNoRows:
			blob, err := vector.Encode(vector.Normalized(sent.Vector))
			if err != nil {
				return nil, fmt.Errorf("store: encode vector: %w", err)
			}
			res, err := insert.ExecContext(ctx, hash, text, sent.SourceRef, blob)
			if err != nil {
				return nil, fmt.Errorf("store: insert sentence: %w", err)
			}
			rowID, err = res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("store: last insert id: %w", err)
			}
			seen[hash] = rowID
			results = append(results, InsertResult{RowID: rowID, WasNew: true})
		case err != nil:
			return nil, fmt.Errorf("store: lookup hash: %w", err)
		default:
			seen[hash] = rowID
			results = append(results, InsertResult{RowID: rowID, WasNew: false})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit insert batch: %w", err)
	}
	s.dim = want
	return results, nil
}

// GetByRowIDs resolves records for the given ids, returned in request order.
// When any id is absent the call fails with NotFoundError listing every
// missing id.
func (s *Store) GetByRowIDs(ctx context.Context, ids []int64) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_id, content_hash, text, source_ref, vector, created_at FROM sentences WHERE row_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("store: get by row ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Record, len(ids))
	for rows.Next() {
		var rec Record
		var blob []byte
		if err := rows.Scan(&rec.RowID, &rec.ContentHash, &rec.Text, &rec.SourceRef, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		if rec.Vector, err = vector.Decode(blob); err != nil {
			return nil, fmt.Errorf("store: decode vector for row %d: %w", rec.RowID, err)
		}
		byID[rec.RowID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get by row ids: %w", err)
	}

	out := make([]Record, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, rec)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{RowIDs: missing}
	}
	return out, nil
}

// Count returns the number of records currently in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentences`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Clear irreversibly deletes all records and restarts row-id allocation.
// Confirmation is the caller's concern.
func (s *Store) Clear(ctx context.Context) error {
	// Dropping the table also drops its sqlite_sequence entry, so the next
	// insert is assigned row_id 1 again.
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS sentences`); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	if err := EnsureSchema(s.db); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	s.dim = 0
	return nil
}

// StatsInfo reports record count, dimensionality, distinct source documents
// and the database size in bytes.
func (s *Store) StatsInfo(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source_ref) FROM sentences`)
	if err := row.Scan(&st.Records, &st.DistinctSources); err != nil {
		return Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	st.Dim = s.dim

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&pageCount); err != nil {
		return Stats{}, fmt.Errorf("store: stats page_count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&pageSize); err != nil {
		return Stats{}, fmt.Errorf("store: stats page_size: %w", err)
	}
	st.SizeBytes = pageCount * pageSize
	return st, nil
}
