package series

import (
	"context"
	"log/slog"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// MappingWriter persists series decisions: it creates the new series of a
// chunk and links every book to its series. Two books resolving to the
// same new title within one chunk share the created series.
type MappingWriter struct {
	books  repository.BookRepository
	series repository.SeriesRepository
	logger *slog.Logger
}

// NewMappingWriter creates a writer.
func NewMappingWriter(books repository.BookRepository, series repository.SeriesRepository, logger *slog.Logger) *MappingWriter {
	return &MappingWriter{books: books, series: series, logger: logger}
}

// Write implements batch.Writer.
func (w *MappingWriter) Write(ctx context.Context, results []*MappingResult) error {
	created := make(map[string]uint64)

	var newSeries, linked int
	for _, result := range results {
		seriesID := result.Series.ID
		if result.IsNew {
			if id, ok := created[result.Series.Title]; ok {
				seriesID = id
			} else {
				if err := w.series.Create(ctx, result.Series); err != nil {
					return batch.NewWriteError(results, "creating series "+result.Series.Title, err)
				}
				seriesID = result.Series.ID
				if seriesID == 0 {
					return batch.NewWriteError(results, "series "+result.Series.Title+" was not inserted", nil)
				}
				created[result.Series.Title] = seriesID
				newSeries++
			}
		}

		if err := w.books.LinkSeries(ctx, result.Book.ID, seriesID); err != nil {
			return batch.NewWriteError(results, "linking book "+result.Book.ISBN, err)
		}
		linked++
	}

	w.logger.InfoContext(ctx, "series mappings written",
		slog.Int("linked", linked),
		slog.Int("new_series", newSeries),
	)
	return nil
}

var _ batch.Writer[*MappingResult] = (*MappingWriter)(nil)
