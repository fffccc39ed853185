// Package search answers top-k similarity queries against a built index
// snapshot, resolving index slots back to store records and enforcing the
// staleness contract between the two.
package search
