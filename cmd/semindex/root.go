package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/semindex"
	"github.com/viant/semindex/config"
	"github.com/viant/semindex/embed"
	"github.com/viant/semindex/engine"
	"github.com/viant/semindex/index"
	"github.com/viant/semindex/ingest"
)

var (
	flagConfig    string
	flagDB        string
	flagIndexPath string
)

var rootCmd = &cobra.Command{
	Use:          "semindex",
	Short:        "Sentence embedding store and similarity search",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `semindex ingests documents as sentence embeddings into a local SQLite
store, builds a vector index over them and answers similarity queries.
Embeddings come from a local Ollama server.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "semindex.toml", "Config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagIndexPath, "index", "", "Index artifact file (overrides config)")
}

// Execute is called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService assembles the service from config and flag overrides. The
// returned close function must be called when the command is done.
func newService() (*semindex.Service, *config.Config, func() error, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, nil, err
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	if flagIndexPath != "" {
		cfg.Index.Path = flagIndexPath
	}

	db, err := engine.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	client := embed.NewOllama(embed.OllamaConfig{
		BaseURL:    cfg.Embedder.BaseURL,
		Model:      cfg.Embedder.Model,
		Timeout:    time.Duration(cfg.Embedder.TimeoutSeconds) * time.Second,
		Dimensions: cfg.Embedder.Dimensions,
	})
	encode := embed.WithDimension(client.Batch(), cfg.Embedder.Dimensions)

	svc, err := semindex.New(db, encode,
		semindex.WithArtifactPath(cfg.Index.Path),
		semindex.WithBuilderOptions(
			index.WithPartitions(cfg.Index.Partitions),
			index.WithProbes(cfg.Index.Probes),
		),
		semindex.WithIngestOptions(
			ingest.WithBatchSize(cfg.Ingest.BatchSize),
			ingest.WithParallelism(cfg.Ingest.Parallelism),
		),
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return svc, cfg, db.Close, nil
}
