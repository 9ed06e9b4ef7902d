package series

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/prompt"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// DefaultThreshold is the minimum similarity score for attaching a book to
// an existing series. Score is 1 - cosine distance.
const DefaultThreshold = 0.90

// MappingProcessor decides each book's series. A registry set ISBN that
// matches a stored series wins outright; otherwise the title is normalized
// with sale context, embedded, and compared against the stored series.
type MappingProcessor struct {
	prompt    prompt.Prompt
	series    repository.SeriesRepository
	threshold float64
	logger    *slog.Logger
}

// NewMappingProcessor creates a processor. A non-positive threshold falls
// back to the default.
func NewMappingProcessor(p prompt.Prompt, series repository.SeriesRepository, threshold float64, logger *slog.Logger) *MappingProcessor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &MappingProcessor{prompt: p, series: series, threshold: threshold, logger: logger}
}

// Process implements batch.Processor.
func (p *MappingProcessor) Process(ctx context.Context, book *models.Book) (*MappingResult, error) {
	setISBN := SetISBN(book)
	if setISBN != "" {
		stored, err := p.series.GetByISBN(ctx, setISBN)
		if err != nil {
			return nil, batch.NewProcessError(book, "looking up set isbn", err)
		}
		if stored != nil {
			p.logger.DebugContext(ctx, "series matched by set isbn",
				slog.String("isbn", book.ISBN),
				slog.String("set_isbn", setISBN),
				slog.Uint64("series_id", stored.ID),
			)
			return ExistingMapping(book, stored, 0), nil
		}
	}

	normalized, err := p.prompt.Normalize(ctx, &prompt.NormalizeRequest{
		Title:    NormalizeText(book.Title),
		SaleInfo: ExtractSaleInfo(book),
	})
	if err != nil {
		return nil, batch.NewProcessError(book, "normalizing title", err)
	}

	vectors, err := p.prompt.Embed(ctx, []string{normalized.Title})
	if err != nil {
		return nil, batch.NewProcessError(book, "embedding normalized title", err)
	}
	if len(vectors) != 1 {
		return nil, batch.NewProcessError(book, "embedding normalized title",
			fmt.Errorf("got %d vectors for one input", len(vectors)))
	}
	embedding := vectors[0]

	match, err := p.series.NearestBySimilarity(ctx, embedding)
	if err != nil {
		return nil, batch.NewProcessError(book, "searching nearest series", err)
	}

	if match != nil && match.Score >= p.threshold {
		p.logger.DebugContext(ctx, "series matched by similarity",
			slog.String("isbn", book.ISBN),
			slog.String("normalized", normalized.Title),
			slog.Uint64("series_id", match.Series.ID),
			slog.Float64("score", match.Score),
		)
		return ExistingMapping(book, match.Series, match.Score), nil
	}

	if match != nil {
		p.logger.DebugContext(ctx, "nearest series below threshold",
			slog.String("isbn", book.ISBN),
			slog.String("normalized", normalized.Title),
			slog.Uint64("nearest_id", match.Series.ID),
			slog.Float64("score", match.Score),
			slog.Float64("threshold", p.threshold),
		)
	}
	return NewMapping(book, &models.Series{
		Title:     normalized.Title,
		ISBN:      setISBN,
		Embedding: embedding,
	}, match), nil
}

var _ batch.Processor[*models.Book, *MappingResult] = (*MappingProcessor)(nil)
