// Package embed defines the boundary between the indexing system and the
// embedding model. The store and pipeline only see the BatchFunc type; the
// Ollama client is the concrete adapter the CLI wires in.
package embed
