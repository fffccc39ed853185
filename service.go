package semindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/viant/semindex/docparse"
	"github.com/viant/semindex/embed"
	"github.com/viant/semindex/index"
	"github.com/viant/semindex/ingest"
	"github.com/viant/semindex/search"
	"github.com/viant/semindex/store"
)

// Option customizes a Service.
type Option func(*Service)

// WithArtifactPath sets where BuildIndex persists the index and where a
// later Service instance loads it from. Empty disables persistence.
func WithArtifactPath(path string) Option {
	return func(s *Service) { s.artifactPath = path }
}

// WithLogger sets the logger passed down to the pipeline and builder.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBuilderOptions forwards options to the index builder.
func WithBuilderOptions(opts ...index.Option) Option {
	return func(s *Service) { s.builderOpts = append(s.builderOpts, opts...) }
}

// WithIngestOptions forwards options to the ingestion pipeline.
func WithIngestOptions(opts ...ingest.Option) Option {
	return func(s *Service) { s.ingestOpts = append(s.ingestOpts, opts...) }
}

// Service is the assembled system: store, encoder, pipeline, builder and
// the active index snapshot. Safe for concurrent use; the snapshot swap is
// the only guarded state.
type Service struct {
	store        *store.Store
	encode       embed.BatchFunc
	pipeline     *ingest.Pipeline
	builder      *index.Builder
	artifactPath string
	logger       *slog.Logger

	builderOpts []index.Option
	ingestOpts  []ingest.Option

	mu   sync.Mutex
	snap *index.Snapshot
}

// New assembles a Service over an open database and an encoder.
func New(db *sql.DB, encode embed.BatchFunc, opts ...Option) (*Service, error) {
	st, err := store.New(db)
	if err != nil {
		return nil, err
	}
	s := &Service{store: st, encode: encode, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.pipeline = ingest.New(st, encode,
		append([]ingest.Option{ingest.WithLogger(s.logger)}, s.ingestOpts...)...)
	s.builder = index.NewBuilder(
		append([]index.Option{index.WithLogger(s.logger)}, s.builderOpts...)...)
	return s, nil
}

// Store exposes the underlying record store.
func (s *Service) Store() *store.Store { return s.store }

// Ingest encodes and stores sentences.
func (s *Service) Ingest(ctx context.Context, sentences []ingest.Sentence) (*ingest.Result, error) {
	return s.pipeline.Run(ctx, sentences)
}

// IngestFile extracts sentences from one document and ingests them with the
// file path as their source reference.
func (s *Service) IngestFile(ctx context.Context, path string) (*ingest.Result, error) {
	texts, err := docparse.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	sentences := make([]ingest.Sentence, len(texts))
	for i, text := range texts {
		sentences[i] = ingest.Sentence{Text: text, SourceRef: path}
	}
	return s.pipeline.Run(ctx, sentences)
}

// IngestDir ingests every document in dir matching the glob patterns
// (docparse.DefaultPatterns when empty). A file that fails to parse is
// skipped and logged; its sentences are simply absent from the result.
func (s *Service) IngestDir(ctx context.Context, dir string, patterns []string) (*ingest.Result, error) {
	files, err := docparse.FindFiles(dir, patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("semindex: no matching documents in %s", dir)
	}
	var sentences []ingest.Sentence
	for _, file := range files {
		texts, err := docparse.ExtractFile(file)
		if err != nil {
			s.logger.Warn("document skipped", "file", file, "error", err)
			continue
		}
		for _, text := range texts {
			sentences = append(sentences, ingest.Sentence{Text: text, SourceRef: file})
		}
	}
	return s.pipeline.Run(ctx, sentences)
}

// BuildIndex builds a fresh snapshot of the requested kind over the whole
// store and makes it the active one. When flatFallback is set, an ivf build
// below the training floor falls back to a flat build instead of failing.
// With an artifact path configured the snapshot is persisted before the
// swap, so the on-disk artifact never lags the active snapshot.
func (s *Service) BuildIndex(ctx context.Context, kind index.Kind, flatFallback bool) (*index.Snapshot, error) {
	snap, err := s.builder.Build(ctx, kind, s.store)
	if err != nil {
		var insufficient *index.InsufficientDataError
		if flatFallback && kind == index.KindIVF && errors.As(err, &insufficient) {
			s.logger.Info("falling back to flat index",
				"records", insufficient.Have, "needed", insufficient.Need)
			snap, err = s.builder.Build(ctx, index.KindFlat, s.store)
		}
		if err != nil {
			return nil, err
		}
	}
	if s.artifactPath != "" {
		if err := index.WriteFile(snap, s.artifactPath); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return snap, nil
}

// Search encodes the query text and returns the topK most similar stored
// sentences at or above minSimilarity. A persisted artifact is loaded
// lazily on the first search if no snapshot was built in this process.
func (s *Service) Search(ctx context.Context, query string, topK int, minSimilarity float64) ([]search.Match, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	vectors, err := s.encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("semindex: encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("semindex: encoder returned %d vectors for one query", len(vectors))
	}
	eng := search.New(s.store, snap, search.WithLogger(s.logger))
	return eng.Search(ctx, vectors[0], topK, minSimilarity)
}

// Snapshot returns the active snapshot, loading the persisted artifact if
// none is active yet.
func (s *Service) Snapshot() (*index.Snapshot, error) { return s.snapshot() }

func (s *Service) snapshot() (*index.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}
	if s.artifactPath == "" {
		return nil, fmt.Errorf("semindex: no index built, run BuildIndex first")
	}
	snap, err := index.ReadFile(s.artifactPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("semindex: no index built and no artifact at %s", s.artifactPath)
		}
		return nil, err
	}
	s.logger.Info("index artifact loaded",
		"path", s.artifactPath, "kind", string(snap.Kind()), "records", snap.Len())
	s.snap = snap
	return snap, nil
}

// Stats describes the current state of the store and the active index.
type Stats struct {
	Store store.Stats

	// Index fields are zero values when no index is active.
	IndexKind    string
	IndexRecords int
	IndexTrained bool
	IndexStale   bool
}

// Stats reports store and index state. The index portion reflects the
// active snapshot only; no artifact is loaded here.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.store.StatsInfo(ctx)
	if err != nil {
		return nil, err
	}
	out := &Stats{Store: st}
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()
	if snap != nil {
		stale, err := snap.Stale(ctx, s.store)
		if err != nil {
			return nil, err
		}
		out.IndexKind = string(snap.Kind())
		out.IndexRecords = snap.Len()
		out.IndexTrained = snap.Trained()
		out.IndexStale = stale
	}
	return out, nil
}

// Clear wipes all records, drops the active snapshot and removes the
// persisted artifact. It refuses to run without confirm.
func (s *Service) Clear(ctx context.Context, confirm bool) error {
	if !confirm {
		return fmt.Errorf("semindex: clear requires explicit confirmation")
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
	if s.artifactPath != "" {
		if err := os.Remove(s.artifactPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("semindex: remove artifact: %w", err)
		}
	}
	s.logger.Info("store cleared")
	return nil
}
