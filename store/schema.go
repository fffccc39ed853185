package store

import "database/sql"

// The sentences table is append-only: rows are never updated or deleted
// outside of Clear, and AUTOINCREMENT guarantees row ids are never reused.
const sentencesSchema = `
CREATE TABLE IF NOT EXISTS sentences (
    row_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash TEXT NOT NULL UNIQUE,
    text         TEXT NOT NULL,
    source_ref   TEXT NOT NULL,
    vector       BLOB NOT NULL,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sentences_source_ref ON sentences(source_ref);
`

// EnsureSchema creates the sentences table in the provided database if it
// does not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(sentencesSchema)
	return err
}
