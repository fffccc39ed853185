package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/viant/semindex/embed"
	"github.com/viant/semindex/index"
	"github.com/viant/semindex/index/ivf"
	"github.com/viant/semindex/ingest"
)

// Database holds store settings.
type Database struct {
	// Path is the SQLite database file.
	Path string `toml:"path"`
}

// Index holds index build and artifact settings.
type Index struct {
	// Path is the persisted index artifact file.
	Path string `toml:"path"`

	// Kind selects the build discipline, "flat" or "ivf".
	Kind string `toml:"kind"`

	// Partitions and Probes tune the ivf kind.
	Partitions int `toml:"partitions"`
	Probes     int `toml:"probes"`
}

// Embedder holds the model client settings.
type Embedder struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`

	// TimeoutSeconds bounds each embedding request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Ingest holds pipeline settings.
type Ingest struct {
	BatchSize   int `toml:"batch_size"`
	Parallelism int `toml:"parallelism"`
}

// Config is the full configuration tree.
type Config struct {
	Database Database `toml:"database"`
	Index    Index    `toml:"index"`
	Embedder Embedder `toml:"embedder"`
	Ingest   Ingest   `toml:"ingest"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: Database{Path: "embeddings.db"},
		Index: Index{
			Path:       "embeddings.idx",
			Kind:       string(index.KindFlat),
			Partitions: ivf.DefaultPartitions,
			Probes:     ivf.DefaultProbes,
		},
		Embedder: Embedder{
			BaseURL:        embed.DefaultBaseURL,
			Model:          embed.DefaultModel,
			Dimensions:     embed.DefaultDimensions,
			TimeoutSeconds: 30,
		},
		Ingest: Ingest{
			BatchSize:   ingest.DefaultBatchSize,
			Parallelism: ingest.DefaultParallelism,
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file is not an
// error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if _, err := index.ParseKind(cfg.Index.Kind); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}
