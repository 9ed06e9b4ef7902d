package series

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// ParamLimit caps how many unorganized books one run picks up.
const ParamLimit = "limit"

// DefaultLimit is the pickup cap when the run does not set one.
const DefaultLimit = 50

// UnorganizedBookReader loads the oldest books without a series link.
type UnorganizedBookReader struct {
	books  repository.BookRepository
	logger *slog.Logger
}

// NewUnorganizedBookReader creates a reader over the unorganized backlog.
func NewUnorganizedBookReader(books repository.BookRepository, logger *slog.Logger) *UnorganizedBookReader {
	return &UnorganizedBookReader{books: books, logger: logger}
}

// Read implements batch.Reader.
func (r *UnorganizedBookReader) Read(ctx context.Context, params batch.JobParameter) ([]*models.Book, error) {
	limit := DefaultLimit
	if raw, ok := params[ParamLimit]; ok && raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, batch.NewInvalidArgumentsError(fmt.Sprintf("invalid limit %q", raw))
		}
		limit = parsed
	}

	books, err := r.books.GetUnorganized(ctx, limit)
	if err != nil {
		return nil, batch.NewReadError("loading unorganized books", err)
	}

	r.logger.DebugContext(ctx, "unorganized books loaded",
		slog.Int("limit", limit),
		slog.Int("books", len(books)),
	)
	return books, nil
}

var _ batch.Reader[*models.Book] = (*UnorganizedBookReader)(nil)
