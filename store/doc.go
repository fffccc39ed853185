// Package store implements the durable sentence-embedding record store on
// SQLite. It is the source of truth for the system: each sentence is stored
// once, keyed by a content hash of its normalized text, and receives a
// stable integer row id on first insertion. Vectors are L2-normalized
// exactly once on insert; everything downstream treats them as unit length.
package store
