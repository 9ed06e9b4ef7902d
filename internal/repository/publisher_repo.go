package repository

import (
	"context"
	"fmt"

	"github.com/inkwhale/bookbatch/internal/models"
	"gorm.io/gorm"
)

// publisherRepository implements PublisherRepository using GORM.
type publisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository creates a new PublisherRepository.
func NewPublisherRepository(db *gorm.DB) PublisherRepository {
	return &publisherRepository{db: db}
}

// Create creates a new publisher.
func (r *publisherRepository) Create(ctx context.Context, publisher *models.Publisher) error {
	if publisher.Name == "" {
		return fmt.Errorf("validating publisher: %w", models.ErrValidation{Field: "name", Message: "name is required"})
	}
	return r.db.WithContext(ctx).Create(publisher).Error
}

// GetByID retrieves a publisher by ID.
func (r *publisherRepository) GetByID(ctx context.Context, id uint64) (*models.Publisher, error) {
	var publisher models.Publisher
	if err := r.db.WithContext(ctx).First(&publisher, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &publisher, nil
}

// GetAll retrieves all publishers.
func (r *publisherRepository) GetAll(ctx context.Context) ([]*models.Publisher, error) {
	var publishers []*models.Publisher
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&publishers).Error; err != nil {
		return nil, err
	}
	return publishers, nil
}

// Ensure publisherRepository implements PublisherRepository.
var _ PublisherRepository = (*publisherRepository)(nil)
