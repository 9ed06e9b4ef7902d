package books

import (
	"context"
	"log/slog"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// OnlyNewBooksWriter inserts freshly discovered books and leaves stored
// rows untouched. Used by the registry collection, whose records never
// supersede what later sites contribute.
type OnlyNewBooksWriter struct {
	books  repository.BookRepository
	logger *slog.Logger
}

// NewOnlyNewBooksWriter creates an insert-only writer.
func NewOnlyNewBooksWriter(books repository.BookRepository, logger *slog.Logger) *OnlyNewBooksWriter {
	return &OnlyNewBooksWriter{books: books, logger: logger}
}

// Write implements batch.Writer.
func (w *OnlyNewBooksWriter) Write(ctx context.Context, books []*models.Book) error {
	written, err := w.books.InsertNew(ctx, books)
	if err != nil {
		return batch.NewWriteError(books, "inserting new books", err)
	}
	w.logger.InfoContext(ctx, "new books written",
		slog.Int("chunk", len(books)),
		slog.Int("written", written),
	)
	return nil
}

// UpsertBooksWriter inserts new books and merges incoming records into
// stored rows for ISBNs already collected.
type UpsertBooksWriter struct {
	books  repository.BookRepository
	logger *slog.Logger
}

// NewUpsertBooksWriter creates an upserting writer.
func NewUpsertBooksWriter(books repository.BookRepository, logger *slog.Logger) *UpsertBooksWriter {
	return &UpsertBooksWriter{books: books, logger: logger}
}

// Write implements batch.Writer.
func (w *UpsertBooksWriter) Write(ctx context.Context, books []*models.Book) error {
	written, err := w.books.Upsert(ctx, books)
	if err != nil {
		return batch.NewWriteError(books, "upserting books", err)
	}
	w.logger.InfoContext(ctx, "books upserted",
		slog.Int("chunk", len(books)),
		slog.Int("written", written),
	)
	return nil
}

var (
	_ batch.Writer[*models.Book] = (*OnlyNewBooksWriter)(nil)
	_ batch.Writer[*models.Book] = (*UpsertBooksWriter)(nil)
)
