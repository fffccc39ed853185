// Package flat provides the exact vector index: queries score every stored
// vector by cosine similarity. It needs no training and has no recall loss,
// which makes it the default for corpora small enough to scan.
package flat
