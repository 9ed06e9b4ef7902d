// Package repository provides data access implementations.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwhale/bookbatch/internal/models"
	"gorm.io/gorm"
)

// bookRepository implements BookRepository using GORM.
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book.
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := book.Validate(); err != nil {
		return fmt.Errorf("validating book: %w", err)
	}
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByISBN retrieves a book by ISBN.
func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "isbn = ?", isbn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// GetByISBNs retrieves all books whose ISBN is in the given set.
func (r *bookRepository) GetByISBNs(ctx context.Context, isbns []string) ([]*models.Book, error) {
	if len(isbns) == 0 {
		return nil, nil
	}
	var books []*models.Book
	if err := r.db.WithContext(ctx).Where("isbn IN ?", isbns).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// InsertNew inserts only books whose ISBN is not yet stored.
func (r *bookRepository) InsertNew(ctx context.Context, books []*models.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	isbns := make([]string, 0, len(books))
	for _, book := range books {
		if err := book.Validate(); err != nil {
			return 0, fmt.Errorf("validating book %q: %w", book.ISBN, err)
		}
		isbns = append(isbns, book.ISBN)
	}

	written := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&models.Book{}).
			Where("isbn IN ?", isbns).
			Pluck("isbn", &existing).Error; err != nil {
			return err
		}
		known := make(map[string]struct{}, len(existing))
		for _, isbn := range existing {
			known[isbn] = struct{}{}
		}

		var fresh []*models.Book
		for _, book := range books {
			if _, ok := known[book.ISBN]; !ok {
				fresh = append(fresh, book)
			}
		}
		if len(fresh) == 0 {
			return nil
		}
		if err := tx.Create(fresh).Error; err != nil {
			return err
		}
		written = len(fresh)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// Upsert inserts new books and merges incoming data into existing rows.
func (r *bookRepository) Upsert(ctx context.Context, books []*models.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	isbns := make([]string, 0, len(books))
	for _, book := range books {
		if err := book.Validate(); err != nil {
			return 0, fmt.Errorf("validating book %q: %w", book.ISBN, err)
		}
		isbns = append(isbns, book.ISBN)
	}

	written := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []*models.Book
		if err := tx.Where("isbn IN ?", isbns).Find(&existing).Error; err != nil {
			return err
		}
		stored := make(map[string]*models.Book, len(existing))
		for _, book := range existing {
			stored[book.ISBN] = book
		}

		for _, book := range books {
			current, ok := stored[book.ISBN]
			if !ok {
				if err := tx.Create(book).Error; err != nil {
					return err
				}
				written++
				continue
			}
			merged := current.Merge(book)
			if err := tx.Save(merged).Error; err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// GetByPubDateBetween retrieves books whose scheduled or actual
// publication date falls inside the window.
func (r *bookRepository) GetByPubDateBetween(ctx context.Context, from, to time.Time) ([]*models.Book, error) {
	var books []*models.Book
	if err := r.db.WithContext(ctx).
		Where("(scheduled_pub_date BETWEEN ? AND ?) OR (actual_pub_date BETWEEN ? AND ?)", from, to, from, to).
		Order("id ASC").
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// GetUnorganized retrieves up to limit books without a series link.
func (r *bookRepository) GetUnorganized(ctx context.Context, limit int) ([]*models.Book, error) {
	var books []*models.Book
	if err := r.db.WithContext(ctx).
		Where("series_id IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// LinkSeries attaches a book to a series.
func (r *bookRepository) LinkSeries(ctx context.Context, bookID, seriesID uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		Update("series_id", seriesID).Error
}

// Count returns the total number of books.
func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure bookRepository implements BookRepository.
var _ BookRepository = (*bookRepository)(nil)
