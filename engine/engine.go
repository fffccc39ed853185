package engine

import (
	"database/sql"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver. The
// vec_cosine/vec_l2 scalar functions are registered first, so every handle
// returned by Open can use them.
//
// For file-based databases, pass a path like "./embeddings.db". For
// in-memory databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterVectorFunctions(); err != nil {
		return nil, err
	}
	return sql.Open("sqlite", dsn)
}
