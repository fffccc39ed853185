// Package ingest drives sentences through encoding and into the store in
// fixed-size batches. Batches encode in parallel but commit strictly in
// input order, so row-id assignment is reproducible for a given input.
package ingest
