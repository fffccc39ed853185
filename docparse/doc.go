// Package docparse turns markdown and plain-text documents into the
// sentence stream the ingestion pipeline consumes. Splitting understands
// both latin and CJK sentence terminators.
package docparse
