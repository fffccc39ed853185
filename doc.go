// Package semindex ties the sentence store, embedding model, index
// lifecycle and search together behind one Service. The lifecycle is
// explicit: ingest appends records, BuildIndex produces a fresh snapshot
// over everything stored, Search serves from that snapshot until new
// inserts make it stale.
package semindex
