package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/viant/semindex/embed"
	"github.com/viant/semindex/store"
)

// Defaults.
const (
	DefaultBatchSize   = 32
	DefaultParallelism = 4
)

// Sentence is one unit of ingestion input.
type Sentence struct {
	Text      string
	SourceRef string
}

// BatchOutcome records what happened to one batch. Err is set when the batch
// failed to encode or commit; such a batch is skipped in full while batches
// before and after it still commit.
type BatchOutcome struct {
	Batch      int
	Sentences  int
	Inserted   int
	Duplicates int
	Err        error
}

// Result summarizes one pipeline run.
type Result struct {
	Batches    []BatchOutcome
	Sentences  int
	Inserted   int
	Duplicates int
	Failed     int // sentences in failed batches
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithBatchSize sets the sentences-per-batch count.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithParallelism bounds how many batches encode concurrently.
func WithParallelism(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// WithLogger sets the progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline encodes and stores sentences.
type Pipeline struct {
	store       *store.Store
	encode      embed.BatchFunc
	batchSize   int
	parallelism int
	logger      *slog.Logger
}

// New returns a Pipeline over the given store and encoder.
func New(st *store.Store, encode embed.BatchFunc, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       st,
		encode:      encode,
		batchSize:   DefaultBatchSize,
		parallelism: DefaultParallelism,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type encodedBatch struct {
	sentences []store.Sentence
	err       error
}

// Run pushes sentences through the pipeline. Encoding runs in windows of up
// to the configured parallelism; each window then commits its batches in
// input order before the next window starts. A batch whose encoding or
// commit fails is recorded in the result and skipped; Run itself only fails
// on context cancellation.
func (p *Pipeline) Run(ctx context.Context, sentences []Sentence) (*Result, error) {
	result := &Result{Sentences: len(sentences)}
	if len(sentences) == 0 {
		return result, nil
	}

	batches := make([][]Sentence, 0, (len(sentences)+p.batchSize-1)/p.batchSize)
	for start := 0; start < len(sentences); start += p.batchSize {
		end := start + p.batchSize
		if end > len(sentences) {
			end = len(sentences)
		}
		batches = append(batches, sentences[start:end])
	}

	for window := 0; window < len(batches); window += p.parallelism {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := window + p.parallelism
		if end > len(batches) {
			end = len(batches)
		}

		encoded := make([]encodedBatch, end-window)
		g, gctx := errgroup.WithContext(ctx)
		for i := window; i < end; i++ {
			i := i
			g.Go(func() error {
				encoded[i-window] = p.encodeBatch(gctx, batches[i])
				return nil
			})
		}
		// Workers never return errors; a failed batch is an outcome.
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return result, err
		}

		for i := window; i < end; i++ {
			outcome := p.commitBatch(ctx, i, batches[i], encoded[i-window])
			result.Batches = append(result.Batches, outcome)
			result.Inserted += outcome.Inserted
			result.Duplicates += outcome.Duplicates
			if outcome.Err != nil {
				result.Failed += outcome.Sentences
			}
		}
	}

	p.logger.Info("ingest complete",
		"sentences", result.Sentences, "inserted", result.Inserted,
		"duplicates", result.Duplicates, "failed", result.Failed,
		"batches", len(result.Batches))
	return result, nil
}

func (p *Pipeline) encodeBatch(ctx context.Context, batch []Sentence) encodedBatch {
	texts := make([]string, len(batch))
	for i, s := range batch {
		texts[i] = s.Text
	}
	vectors, err := p.encode(ctx, texts)
	if err != nil {
		return encodedBatch{err: err}
	}
	// An encoder that drops or adds vectors is as broken as one that errors;
	// fail the batch rather than mispair texts and vectors.
	if len(vectors) != len(batch) {
		return encodedBatch{err: fmt.Errorf("ingest: encoder returned %d vectors for %d texts", len(vectors), len(batch))}
	}
	rows := make([]store.Sentence, len(batch))
	for i, s := range batch {
		rows[i] = store.Sentence{Text: s.Text, SourceRef: s.SourceRef, Vector: vectors[i]}
	}
	return encodedBatch{sentences: rows}
}

func (p *Pipeline) commitBatch(ctx context.Context, batch int, input []Sentence, enc encodedBatch) BatchOutcome {
	outcome := BatchOutcome{Batch: batch, Sentences: len(input)}
	if enc.err != nil {
		outcome.Err = enc.err
		p.logger.Warn("batch skipped", "batch", batch, "sentences", len(input), "error", enc.err)
		return outcome
	}
	results, err := p.store.InsertBatch(ctx, enc.sentences)
	if err != nil {
		outcome.Err = err
		p.logger.Warn("batch skipped", "batch", batch, "sentences", len(input), "error", err)
		return outcome
	}
	for _, r := range results {
		if r.WasNew {
			outcome.Inserted++
		} else {
			outcome.Duplicates++
		}
	}
	return outcome
}
