package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/inkwhale/bookbatch/internal/models"
	"gorm.io/gorm"
)

// seriesRepository implements SeriesRepository using GORM.
type seriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a new SeriesRepository.
func NewSeriesRepository(db *gorm.DB) SeriesRepository {
	return &seriesRepository{db: db}
}

// Create creates a new series.
func (r *seriesRepository) Create(ctx context.Context, series *models.Series) error {
	if err := series.Validate(); err != nil {
		return fmt.Errorf("validating series: %w", err)
	}
	return r.db.WithContext(ctx).Create(series).Error
}

// GetByID retrieves a series by ID.
func (r *seriesRepository) GetByID(ctx context.Context, id uint64) (*models.Series, error) {
	var series models.Series
	if err := r.db.WithContext(ctx).First(&series, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &series, nil
}

// GetByISBN retrieves a series carrying the given set ISBN.
func (r *seriesRepository) GetByISBN(ctx context.Context, isbn string) (*models.Series, error) {
	var series models.Series
	if err := r.db.WithContext(ctx).First(&series, "isbn = ?", isbn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &series, nil
}

// NearestBySimilarity scans stored embeddings and returns the closest
// series by cosine similarity. Series without an embedding are skipped.
func (r *seriesRepository) NearestBySimilarity(ctx context.Context, embedding []float32) (*SeriesMatch, error) {
	var all []*models.Series
	if err := r.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, err
	}

	var best *SeriesMatch
	for _, series := range all {
		if len(series.Embedding) == 0 {
			continue
		}
		score, ok := cosineSimilarity(embedding, series.Embedding)
		if !ok {
			continue
		}
		if best == nil || score > best.Score {
			best = &SeriesMatch{Series: series, Score: score}
		}
	}
	return best, nil
}

// Count returns the total number of series.
func (r *seriesRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Series{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// cosineSimilarity computes the cosine similarity of two vectors. It
// reports false for mismatched lengths or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// Ensure seriesRepository implements SeriesRepository.
var _ SeriesRepository = (*seriesRepository)(nil)
