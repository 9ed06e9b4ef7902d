// Package repository defines data access interfaces for bookbatch entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"
	"time"

	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/predicate"
)

// SeriesMatch is a series candidate with its similarity score against a
// probe embedding. Score is 1 - cosine distance, so higher is closer.
type SeriesMatch struct {
	Series *models.Series
	Score  float64
}

// BookRepository defines operations for book persistence.
type BookRepository interface {
	// Create creates a new book.
	Create(ctx context.Context, book *models.Book) error
	// GetByISBN retrieves a book by ISBN, or nil when absent.
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	// GetByISBNs retrieves all books whose ISBN is in the given set.
	GetByISBNs(ctx context.Context, isbns []string) ([]*models.Book, error)
	// InsertNew inserts only the books whose ISBN is not yet stored and
	// reports how many rows were written.
	InsertNew(ctx context.Context, books []*models.Book) (int, error)
	// Upsert inserts new books and merges incoming data into existing rows.
	Upsert(ctx context.Context, books []*models.Book) (int, error)
	// GetByPubDateBetween retrieves books whose scheduled or actual
	// publication date falls inside the window.
	GetByPubDateBetween(ctx context.Context, from, to time.Time) ([]*models.Book, error)
	// GetUnorganized retrieves up to limit books without a series link,
	// oldest first.
	GetUnorganized(ctx context.Context, limit int) ([]*models.Book, error)
	// LinkSeries attaches a book to a series.
	LinkSeries(ctx context.Context, bookID, seriesID uint64) error
	// Count returns the total number of books.
	Count(ctx context.Context) (int64, error)
}

// SeriesRepository defines operations for series persistence and similarity
// lookup.
type SeriesRepository interface {
	// Create creates a new series.
	Create(ctx context.Context, series *models.Series) error
	// GetByID retrieves a series by ID, or nil when absent.
	GetByID(ctx context.Context, id uint64) (*models.Series, error)
	// GetByISBN retrieves a series carrying the given set ISBN, or nil.
	GetByISBN(ctx context.Context, isbn string) (*models.Series, error)
	// NearestBySimilarity returns the stored series closest to the probe
	// embedding, or nil when no series has an embedding.
	NearestBySimilarity(ctx context.Context, embedding []float32) (*SeriesMatch, error)
	// Count returns the total number of series.
	Count(ctx context.Context) (int64, error)
}

// PublisherRepository defines operations for publisher persistence.
type PublisherRepository interface {
	// Create creates a new publisher.
	Create(ctx context.Context, publisher *models.Publisher) error
	// GetByID retrieves a publisher by ID, or nil when absent.
	GetByID(ctx context.Context, id uint64) (*models.Publisher, error)
	// GetAll retrieves all publishers.
	GetAll(ctx context.Context) ([]*models.Publisher, error)
}

// FilterRuleRepository defines operations for validation rule persistence.
type FilterRuleRepository interface {
	// Create creates a new filter rule row.
	Create(ctx context.Context, rule *models.FilterRule) error
	// GetBySite retrieves all rule rows for a site in insertion order.
	GetBySite(ctx context.Context, site models.Site) ([]models.FilterRule, error)
	// GetRoots loads every rule row and assembles the per-site predicate
	// trees.
	GetRoots(ctx context.Context) (map[models.Site]predicate.Node, error)
	// ReplaceAll atomically replaces the whole rule set.
	ReplaceAll(ctx context.Context, rules []models.FilterRule) error
}

// JobRunRepository defines operations for job run bookkeeping.
type JobRunRepository interface {
	// Create records the start of a job run.
	Create(ctx context.Context, run *models.JobRun) error
	// Finish marks a run finished with the given status and counters.
	Finish(ctx context.Context, id string, status models.JobRunStatus, itemsWritten int, runErr error) error
	// GetByID retrieves a run by ID, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.JobRun, error)
	// GetRecent retrieves the most recent runs, newest first.
	GetRecent(ctx context.Context, limit int) ([]*models.JobRun, error)
	// DeleteOlderThan removes finished runs started before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
