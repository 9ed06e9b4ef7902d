package repository

import (
	"context"
	"time"

	"github.com/inkwhale/bookbatch/internal/models"
	"gorm.io/gorm"
)

// jobRunRepository implements JobRunRepository using GORM.
type jobRunRepository struct {
	db *gorm.DB
}

// NewJobRunRepository creates a new JobRunRepository.
func NewJobRunRepository(db *gorm.DB) JobRunRepository {
	return &jobRunRepository{db: db}
}

// Create records the start of a job run.
func (r *jobRunRepository) Create(ctx context.Context, run *models.JobRun) error {
	if run.ID == "" {
		run.ID = models.NewJobRunID()
	}
	if run.Status == "" {
		run.Status = models.JobRunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// Finish marks a run finished with the given status and counters.
func (r *jobRunRepository) Finish(ctx context.Context, id string, status models.JobRunStatus, itemsWritten int, runErr error) error {
	updates := map[string]any{
		"status":        status,
		"items_written": itemsWritten,
		"finished_at":   time.Now(),
	}
	if runErr != nil {
		updates["error"] = runErr.Error()
	}
	return r.db.WithContext(ctx).
		Model(&models.JobRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GetByID retrieves a run by ID.
func (r *jobRunRepository) GetByID(ctx context.Context, id string) (*models.JobRun, error) {
	var run models.JobRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// GetRecent retrieves the most recent runs, newest first. ULIDs sort
// lexically in start order, so ordering on the key is enough.
func (r *jobRunRepository) GetRecent(ctx context.Context, limit int) ([]*models.JobRun, error) {
	var runs []*models.JobRun
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// DeleteOlderThan removes finished runs started before the cutoff.
func (r *jobRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("started_at < ? AND status <> ?", cutoff, models.JobRunStatusRunning).
		Delete(&models.JobRun{})
	return result.RowsAffected, result.Error
}

// Ensure jobRunRepository implements JobRunRepository.
var _ JobRunRepository = (*jobRunRepository)(nil)
