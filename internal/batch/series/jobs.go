package series

import (
	"log/slog"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/prompt"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// JobName is the mapping job's catalog name.
const JobName = "series.mapping"

// Deps bundles everything the mapping job needs.
type Deps struct {
	Books  repository.BookRepository
	Series repository.SeriesRepository
	Prompt prompt.Prompt
	Logger *slog.Logger
}

// Options tunes the mapping job.
type Options struct {
	// ChunkSize is the writer chunk size. Zero uses the engine default.
	ChunkSize int

	// Threshold is the minimum similarity for an existing-series match.
	// Zero uses DefaultThreshold.
	Threshold float64
}

// NewMappingJob assembles the series mapping job.
func NewMappingJob(deps Deps, opts Options) (*batch.Job[*models.Book, *MappingResult], error) {
	builder := batch.NewBuilder[*models.Book, *MappingResult](JobName).
		Reader(NewUnorganizedBookReader(deps.Books, deps.Logger)).
		Processor(NewMappingProcessor(deps.Prompt, deps.Series, opts.Threshold, deps.Logger)).
		Writer(NewMappingWriter(deps.Books, deps.Series, deps.Logger)).
		Logger(deps.Logger)
	if opts.ChunkSize > 0 {
		builder.ChunkSize(opts.ChunkSize)
	}
	return builder.Build()
}
