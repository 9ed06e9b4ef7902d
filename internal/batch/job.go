package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultChunkSize is the chunk size used when the builder is not given one.
const DefaultChunkSize = 500

// Stage names used in StageError and logs.
const (
	StageRead    = "read"
	StageProcess = "process"
	StageWrite   = "write"
)

// Result summarizes a completed run.
type Result struct {
	// ItemsRead is the number of items the reader produced.
	ItemsRead int

	// ItemsFiltered is the number of items surviving the filter.
	ItemsFiltered int

	// ItemsWritten is the number of items handed to the writer.
	ItemsWritten int

	// Chunks is the number of writer calls made.
	Chunks int

	// Duration is the total execution time.
	Duration time.Duration
}

// Job is an assembled pipeline: one reader, an optional filter, one
// processor and one writer, executed over chunks of a fixed size.
// Execution is single-threaded; every remote call blocks until complete.
type Job[I, O any] struct {
	name      string
	reader    Reader[I]
	filter    Filter[I]
	processor Processor[I, O]
	writer    Writer[O]
	chunkSize int
	logger    *slog.Logger
}

// Name returns the job's catalog name.
func (j *Job[I, O]) Name() string {
	return j.name
}

// ChunkSize returns the configured chunk size.
func (j *Job[I, O]) ChunkSize() int {
	return j.chunkSize
}

// Run executes the pipeline: read, filter, then per chunk process every
// item and write the transformed chunk. The first error terminates the
// run; earlier chunks remain persisted (no cross-chunk rollback). The
// returned Result is valid even on failure and reflects work done so far.
func (j *Job[I, O]) Run(ctx context.Context, params JobParameter) (*Result, error) {
	result := &Result{}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	j.logger.InfoContext(ctx, "starting job run",
		slog.String("job", j.name),
		slog.Int("chunk_size", j.chunkSize),
	)

	items, err := j.reader.Read(ctx, params)
	if err != nil {
		return result, &StageError{Stage: StageRead, Err: asReadError(err)}
	}
	result.ItemsRead = len(items)

	if j.filter != nil {
		items = j.filter.Filter(items)
	}
	result.ItemsFiltered = len(items)

	j.logger.InfoContext(ctx, "items loaded",
		slog.String("job", j.name),
		slog.Int("read", result.ItemsRead),
		slog.Int("after_filter", result.ItemsFiltered),
	)

	for _, chunk := range Chunk(items, j.chunkSize) {
		targets := make([]O, 0, len(chunk))
		for _, item := range chunk {
			target, err := j.processor.Process(ctx, item)
			if err != nil {
				return result, &StageError{Stage: StageProcess, Err: asProcessError(item, err)}
			}
			targets = append(targets, target)
		}

		if err := j.writer.Write(ctx, targets); err != nil {
			return result, &StageError{Stage: StageWrite, Err: asWriteError(targets, err)}
		}
		result.ItemsWritten += len(targets)
		result.Chunks++

		j.logger.DebugContext(ctx, "chunk written",
			slog.String("job", j.name),
			slog.Int("chunk", result.Chunks),
			slog.Int("items", len(targets)),
		)
	}

	j.logger.InfoContext(ctx, "job run completed",
		slog.String("job", j.name),
		slog.Int("items_written", result.ItemsWritten),
		slog.Int("chunks", result.Chunks),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// asReadError passes typed read errors through and wraps anything else as
// an unknown-kind ReadError.
func asReadError(err error) error {
	var re *ReadError
	if errors.As(err, &re) {
		return err
	}
	return NewReadError("reader failed", err)
}

func asProcessError[I any](item I, err error) error {
	var pe *ProcessError[I]
	if errors.As(err, &pe) {
		return err
	}
	return NewProcessError(item, "processor failed", err)
}

func asWriteError[T any](items []T, err error) error {
	var we *WriteError[T]
	if errors.As(err, &we) {
		return err
	}
	return NewWriteError(items, "writer failed", err)
}

// Builder assembles a Job. Go has no cheap typestate, so Build performs
// the completeness check at runtime and fails fast on a missing stage.
type Builder[I, O any] struct {
	name      string
	reader    Reader[I]
	filter    Filter[I]
	processor Processor[I, O]
	writer    Writer[O]
	chunkSize int
	logger    *slog.Logger
}

// NewBuilder creates a job builder with the default chunk size.
func NewBuilder[I, O any](name string) *Builder[I, O] {
	return &Builder[I, O]{name: name, chunkSize: DefaultChunkSize}
}

// NewPassthroughBuilder creates a builder for jobs without a transformation
// step, pre-set with the identity processor.
func NewPassthroughBuilder[T any](name string) *Builder[T, T] {
	b := NewBuilder[T, T](name)
	b.processor = NewIdentity[T]()
	return b
}

// Reader sets the required reader.
func (b *Builder[I, O]) Reader(r Reader[I]) *Builder[I, O] {
	b.reader = r
	return b
}

// Filter sets the optional filter.
func (b *Builder[I, O]) Filter(f Filter[I]) *Builder[I, O] {
	b.filter = f
	return b
}

// Processor sets the required processor.
func (b *Builder[I, O]) Processor(p Processor[I, O]) *Builder[I, O] {
	b.processor = p
	return b
}

// Writer sets the required writer.
func (b *Builder[I, O]) Writer(w Writer[O]) *Builder[I, O] {
	b.writer = w
	return b
}

// ChunkSize overrides the default chunk size.
func (b *Builder[I, O]) ChunkSize(size int) *Builder[I, O] {
	b.chunkSize = size
	return b
}

// Logger sets the job logger. Defaults to slog.Default().
func (b *Builder[I, O]) Logger(logger *slog.Logger) *Builder[I, O] {
	b.logger = logger
	return b
}

// Build validates the assembly and returns the job. A missing reader,
// processor or writer, or a chunk size below 1, is a BuildError.
func (b *Builder[I, O]) Build() (*Job[I, O], error) {
	if b.reader == nil {
		return nil, NewBuildError("reader", "reader is required")
	}
	if b.processor == nil {
		return nil, NewBuildError("processor", "processor is required")
	}
	if b.writer == nil {
		return nil, NewBuildError("writer", "writer is required")
	}
	if b.chunkSize < 1 {
		return nil, NewBuildError("chunk_size", "chunk size must be at least 1")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Job[I, O]{
		name:      b.name,
		reader:    b.reader,
		filter:    b.filter,
		processor: b.processor,
		writer:    b.writer,
		chunkSize: b.chunkSize,
		logger:    logger,
	}, nil
}
