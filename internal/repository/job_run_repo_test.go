package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupJobRunTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.JobRun{})
	require.NoError(t, err)

	return db
}

func TestJobRunRepo_CreateDefaults(t *testing.T) {
	db := setupJobRunTestDB(t)
	repo := NewJobRunRepository(db)
	ctx := context.Background()

	run := &models.JobRun{
		JobName:    "naver",
		Parameters: map[string]string{"publisher_id": "7"},
	}
	require.NoError(t, repo.Create(ctx, run))
	assert.Len(t, run.ID, 26)
	assert.Equal(t, models.JobRunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())

	found, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "naver", found.JobName)
	assert.Equal(t, "7", found.Parameters["publisher_id"])
}

func TestJobRunRepo_Finish(t *testing.T) {
	db := setupJobRunTestDB(t)
	repo := NewJobRunRepository(db)
	ctx := context.Background()

	run := &models.JobRun{JobName: "series"}
	require.NoError(t, repo.Create(ctx, run))

	require.NoError(t, repo.Finish(ctx, run.ID, models.JobRunStatusFailed, 12, errors.New("write refused")))

	found, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobRunStatusFailed, found.Status)
	assert.Equal(t, 12, found.ItemsWritten)
	assert.Equal(t, "write refused", found.Error)
	require.NotNil(t, found.FinishedAt)
}

func TestJobRunRepo_GetRecent(t *testing.T) {
	db := setupJobRunTestDB(t)
	repo := NewJobRunRepository(db)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.JobRun{JobName: name}))
		// ULIDs have millisecond timestamps; keep start order distinct.
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := repo.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].JobName)
	assert.Equal(t, "second", runs[1].JobName)
}

func TestJobRunRepo_DeleteOlderThan(t *testing.T) {
	db := setupJobRunTestDB(t)
	repo := NewJobRunRepository(db)
	ctx := context.Background()

	old := &models.JobRun{
		JobName:   "old",
		Status:    models.JobRunStatusSucceeded,
		StartedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, old))

	stillRunning := &models.JobRun{
		JobName:   "stuck",
		StartedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, stillRunning))

	recent := &models.JobRun{JobName: "recent", Status: models.JobRunStatusSucceeded}
	require.NoError(t, repo.Create(ctx, recent))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	kept, err := repo.GetRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}
