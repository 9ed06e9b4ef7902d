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

// PublisherKeywordReader loads books from a search site for every keyword
// each requested publisher has registered there.
type PublisherKeywordReader struct {
	searcher   provider.Searcher
	publishers repository.PublisherRepository
	pageSize   int
	logger     *slog.Logger
}

// NewPublisherKeywordReader creates a reader over the given search site.
func NewPublisherKeywordReader(searcher provider.Searcher, publishers repository.PublisherRepository, pageSize int, logger *slog.Logger) *PublisherKeywordReader {
	if pageSize < 1 {
		pageSize = 100
	}
	return &PublisherKeywordReader{
		searcher:   searcher,
		publishers: publishers,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Read implements batch.Reader. Every requested publisher must exist and
// carry at least one keyword for the site.
func (r *PublisherKeywordReader) Read(ctx context.Context, params batch.JobParameter) ([]*models.Book, error) {
	ids, err := PublisherIDs(params)
	if err != nil {
		return nil, err
	}
	from, to, err := Window(params)
	if err != nil {
		return nil, err
	}

	site := r.searcher.Site()
	var all []*models.Book
	for _, id := range ids {
		publisher, err := r.publishers.GetByID(ctx, id)
		if err != nil {
			return nil, batch.NewReadError("loading publisher", err)
		}
		if publisher == nil {
			return nil, batch.NewInvalidArgumentsError(fmt.Sprintf("publisher %d not found", id))
		}

		keywords := publisher.KeywordsFor(site)
		if len(keywords) == 0 {
			return nil, batch.NewInvalidArgumentsError(
				fmt.Sprintf("publisher %d has no keywords for site %s", id, site))
		}

		for _, keyword := range keywords {
			books, err := provider.SearchAll(ctx, r.searcher, keyword, from, to, r.pageSize)
			if err != nil {
				return nil, batch.NewReadError("searching site "+site.String(), err)
			}
			for _, book := range books {
				book.PublisherID = id
			}
			r.logger.DebugContext(ctx, "keyword searched",
				slog.String("site", site.String()),
				slog.Uint64("publisher_id", id),
				slog.String("keyword", keyword),
				slog.Int("books", len(books)),
			)
			all = append(all, books...)
		}
	}
	return all, nil
}

// EnrichReader loads the stored books inside the publication window and
// fetches each one's record from a per-ISBN lookup site. Books the site
// does not know are skipped.
type EnrichReader struct {
	looker        provider.Looker
	books         repository.BookRepository
	requireActual bool
	logger        *slog.Logger
}

// NewEnrichReader creates a reader enriching the stored publication window
// from the given lookup site.
func NewEnrichReader(looker provider.Looker, books repository.BookRepository, logger *slog.Logger) *EnrichReader {
	return &EnrichReader{looker: looker, books: books, logger: logger}
}

// NewPublishedEnrichReader is an EnrichReader restricted to stored books
// with a confirmed publication date. Used for sites that only list books
// already on sale.
func NewPublishedEnrichReader(looker provider.Looker, books repository.BookRepository, logger *slog.Logger) *EnrichReader {
	return &EnrichReader{looker: looker, books: books, requireActual: true, logger: logger}
}

// Read implements batch.Reader. An isbn parameter targets the listed
// stored books; otherwise the publication window selects them.
func (r *EnrichReader) Read(ctx context.Context, params batch.JobParameter) ([]*models.Book, error) {
	stored, err := r.loadStored(ctx, params)
	if err != nil {
		return nil, err
	}

	site := r.looker.Site()
	var enriched []*models.Book
	for _, book := range stored {
		if r.requireActual && book.ActualPubDate == nil {
			continue
		}

		fetched, err := r.looker.Lookup(ctx, book.ISBN)
		if err != nil {
			return nil, batch.NewReadError("looking up "+book.ISBN+" on "+site.String(), err)
		}
		if fetched == nil {
			r.logger.DebugContext(ctx, "isbn not listed",
				slog.String("site", site.String()),
				slog.String("isbn", book.ISBN),
			)
			continue
		}
		fetched.PublisherID = book.PublisherID
		enriched = append(enriched, fetched)
	}

	r.logger.DebugContext(ctx, "window enriched",
		slog.String("site", site.String()),
		slog.Int("stored", len(stored)),
		slog.Int("enriched", len(enriched)),
	)
	return enriched, nil
}

func (r *EnrichReader) loadStored(ctx context.Context, params batch.JobParameter) ([]*models.Book, error) {
	isbns, err := ISBNs(params)
	if err != nil {
		return nil, err
	}
	if len(isbns) > 0 {
		stored, err := r.books.GetByISBNs(ctx, isbns)
		if err != nil {
			return nil, batch.NewReadError("loading stored books", err)
		}
		return stored, nil
	}

	from, to, err := Window(params)
	if err != nil {
		return nil, err
	}
	stored, err := r.books.GetByPubDateBetween(ctx, from, to)
	if err != nil {
		return nil, batch.NewReadError("loading stored books", err)
	}
	return stored, nil
}

var (
	_ batch.Reader[*models.Book] = (*PublisherKeywordReader)(nil)
	_ batch.Reader[*models.Book] = (*EnrichReader)(nil)
)
