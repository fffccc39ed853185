package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "embeddings.db" || cfg.Index.Kind != "flat" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Ingest.BatchSize != 32 {
		t.Fatalf("batch size = %d, want 32", cfg.Ingest.BatchSize)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semindex.toml")
	content := `
[database]
path = "corpus.db"

[index]
kind = "ivf"
partitions = 8

[embedder]
model = "mxbai-embed-large"
dimensions = 1024
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "corpus.db" {
		t.Fatalf("database path = %q", cfg.Database.Path)
	}
	if cfg.Index.Kind != "ivf" || cfg.Index.Partitions != 8 || cfg.Index.Probes != 4 {
		t.Fatalf("index config = %+v", cfg.Index)
	}
	if cfg.Embedder.Model != "mxbai-embed-large" || cfg.Embedder.Dimensions != 1024 {
		t.Fatalf("embedder config = %+v", cfg.Embedder)
	}
	// Untouched sections keep their defaults.
	if cfg.Ingest.BatchSize != 32 {
		t.Fatalf("batch size = %d, want 32", cfg.Ingest.BatchSize)
	}
}

func TestLoad_RejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semindex.toml")
	if err := os.WriteFile(path, []byte("[index]\nkind = \"hnsw\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown index kind")
	}
}
