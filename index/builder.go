package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/semindex/index/flat"
	"github.com/viant/semindex/index/ivf"
	"github.com/viant/semindex/store"
)

// DefaultMinTrainPerPartition is the minimum number of records per IVF
// partition required before training is allowed.
const DefaultMinTrainPerPartition = 10

// Option customizes a Builder.
type Option func(*Builder)

// WithPartitions sets the IVF partition count.
func WithPartitions(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.partitions = n
		}
	}
}

// WithProbes sets the IVF probe count.
func WithProbes(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.probes = n
		}
	}
}

// WithMinTrainPerPartition overrides the per-partition training floor.
func WithMinTrainPerPartition(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.minTrainPerPartition = n
		}
	}
}

// WithSeed fixes the IVF training seed for reproducible builds.
func WithSeed(seed int64) Option {
	return func(b *Builder) { b.seed = seed }
}

// WithLogger sets the progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder constructs index snapshots from the store. Builds are never
// partial or incremental: each successful Build yields a complete snapshot
// that fully replaces any previous one.
type Builder struct {
	partitions           int
	probes               int
	minTrainPerPartition int
	seed                 int64
	logger               *slog.Logger
}

// NewBuilder returns a Builder with the given options applied over
// defaults.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		partitions:           ivf.DefaultPartitions,
		probes:               ivf.DefaultProbes,
		minTrainPerPartition: DefaultMinTrainPerPartition,
		seed:                 1,
		logger:               slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TrainingFloor returns the minimum record count required for an IVF build.
func (b *Builder) TrainingFloor() int { return b.partitions * b.minTrainPerPartition }

// Build reads a single consistent snapshot of the store in row-id order,
// assigns slot positions 0..N-1 in scan order, and constructs the requested
// index over them. An IVF build below the training floor fails with
// InsufficientDataError before any index work starts; the caller may fall
// back to KindFlat.
func (b *Builder) Build(ctx context.Context, kind Kind, st *store.Store) (*Snapshot, error) {
	snap, err := st.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	n := snap.Count()
	if n == 0 {
		return nil, fmt.Errorf("index: store is empty, nothing to build")
	}
	if kind == KindIVF {
		if floor := b.TrainingFloor(); n < floor {
			return nil, &InsufficientDataError{Have: n, Need: floor, Partitions: b.partitions}
		}
	}

	started := time.Now()
	rowIDs := make([]int64, 0, n)
	vectors := make([][]float32, 0, n)
	dim := 0
	err = snap.Vectors(ctx, func(rowID int64, vec []float32) error {
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return fmt.Errorf("index: row %d has dim %d, want %d", rowID, len(vec), dim)
		}
		rowIDs = append(rowIDs, rowID)
		vectors = append(vectors, vec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rowIDs) != n {
		return nil, fmt.Errorf("index: snapshot scan returned %d rows, expected %d", len(rowIDs), n)
	}

	var idx Index
	switch kind {
	case KindFlat:
		idx = flat.New()
	case KindIVF:
		b.logger.Info("training partitioned index",
			"records", n, "partitions", b.partitions, "probes", b.probes)
		idx = ivf.New(
			ivf.WithPartitions(b.partitions),
			ivf.WithProbes(b.probes),
			ivf.WithSeed(b.seed),
		)
	default:
		return nil, fmt.Errorf("index: unknown index kind %q", kind)
	}
	if err := idx.Build(vectors); err != nil {
		return nil, err
	}

	b.logger.Info("index built",
		"kind", string(kind), "records", n, "dim", dim,
		"elapsed", time.Since(started).Round(time.Millisecond))

	return &Snapshot{
		kind:            kind,
		dim:             dim,
		rowIDs:          rowIDs,
		builtAtRowCount: n,
		idx:             idx,
	}, nil
}
