package books

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/provider"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// Deps bundles the stores every book collection job needs.
type Deps struct {
	Books      repository.BookRepository
	Publishers repository.PublisherRepository
	Rules      repository.FilterRuleRepository
	Logger     *slog.Logger
}

// Options tunes a collection job's execution.
type Options struct {
	// ChunkSize is the writer chunk size. Zero uses the engine default.
	ChunkSize int

	// PageSize is the search page size for sites with a search API.
	PageSize int
}

// NewRegistryJob builds the collection job for the national library
// registry: publisher keyword search, insert-only persistence. Registry
// records seed the catalogue and are never overwritten by later runs.
func NewRegistryJob(ctx context.Context, searcher provider.Searcher, deps Deps, opts Options) (*batch.Job[*models.Book, *models.Book], error) {
	return newSearchJob(ctx, searcher, NewOnlyNewBooksWriter(deps.Books, deps.Logger), deps, opts)
}

// NewStoreSearchJob builds the collection job for a bookstore search API:
// publisher keyword search, upserting persistence.
func NewStoreSearchJob(ctx context.Context, searcher provider.Searcher, deps Deps, opts Options) (*batch.Job[*models.Book, *models.Book], error) {
	return newSearchJob(ctx, searcher, NewUpsertBooksWriter(deps.Books, deps.Logger), deps, opts)
}

// NewEnrichJob builds the enrichment job for a per-ISBN lookup site: every
// stored book in the publication window is looked up and the site's record
// merged in.
func NewEnrichJob(ctx context.Context, looker provider.Looker, deps Deps, opts Options) (*batch.Job[*models.Book, *models.Book], error) {
	return newEnrichJob(ctx, NewEnrichReader(looker, deps.Books, deps.Logger), looker.Site(), deps, opts)
}

// NewPublishedEnrichJob is NewEnrichJob restricted to stored books with a
// confirmed publication date.
func NewPublishedEnrichJob(ctx context.Context, looker provider.Looker, deps Deps, opts Options) (*batch.Job[*models.Book, *models.Book], error) {
	return newEnrichJob(ctx, NewPublishedEnrichReader(looker, deps.Books, deps.Logger), looker.Site(), deps, opts)
}

func newSearchJob(ctx context.Context, searcher provider.Searcher, writer batch.Writer[*models.Book], deps Deps, opts Options) (*batch.Job[*models.Book, *models.Book], error) {
	site := searcher.Site()
	roots, err := deps.Rules.GetRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading filter rules: %w", err)
	}

	builder := batch.NewPassthroughBuilder[*models.Book](jobName(site)).
		Reader(NewPublisherKeywordReader(searcher, deps.Publishers, opts.PageSize, deps.Logger)).
		Filter(DefaultFilterChain(roots, site)).
		Writer(writer).
		Logger(deps.Logger)
	if opts.ChunkSize > 0 {
		builder.ChunkSize(opts.ChunkSize)
	}
	return builder.Build()
}

func newEnrichJob(ctx context.Context, reader *EnrichReader, site models.Site, deps Deps, opts Options) (*batch.Job[*models.Book, *models.Book], error) {
	roots, err := deps.Rules.GetRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading filter rules: %w", err)
	}

	builder := batch.NewPassthroughBuilder[*models.Book](jobName(site)).
		Reader(reader).
		Filter(DefaultFilterChain(roots, site)).
		Writer(NewUpsertBooksWriter(deps.Books, deps.Logger)).
		Logger(deps.Logger)
	if opts.ChunkSize > 0 {
		builder.ChunkSize(opts.ChunkSize)
	}
	return builder.Build()
}

func jobName(site models.Site) string {
	return "books." + string(site)
}
