package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Series{})
	require.NoError(t, err)

	return db
}

func TestSeriesRepo_CreateAndGet(t *testing.T) {
	db := setupSeriesTestDB(t)
	repo := NewSeriesRepository(db)
	ctx := context.Background()

	series := &models.Series{
		Title:     "wizard chronicles",
		ISBN:      "9780000000001",
		Embedding: []float32{1, 0, 0},
	}
	require.NoError(t, repo.Create(ctx, series))
	assert.NotZero(t, series.ID)

	byID, err := repo.GetByID(ctx, series.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "wizard chronicles", byID.Title)
	assert.Equal(t, []float32{1, 0, 0}, byID.Embedding)

	byISBN, err := repo.GetByISBN(ctx, "9780000000001")
	require.NoError(t, err)
	require.NotNil(t, byISBN)
	assert.Equal(t, series.ID, byISBN.ID)
}

func TestSeriesRepo_GetByISBN_NotFound(t *testing.T) {
	db := setupSeriesTestDB(t)
	repo := NewSeriesRepository(db)

	found, err := repo.GetByISBN(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSeriesRepo_NearestBySimilarity(t *testing.T) {
	db := setupSeriesTestDB(t)
	repo := NewSeriesRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Series{
		Title:     "exact axis",
		Embedding: []float32{1, 0, 0},
	}))
	require.NoError(t, repo.Create(ctx, &models.Series{
		Title:     "diagonal",
		Embedding: []float32{1, 1, 0},
	}))
	require.NoError(t, repo.Create(ctx, &models.Series{
		Title: "no embedding",
	}))

	match, err := repo.NearestBySimilarity(ctx, []float32{1, 0, 0})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "exact axis", match.Series.Title)
	assert.InDelta(t, 1.0, match.Score, 1e-9)

	diag, err := repo.NearestBySimilarity(ctx, []float32{0.9, 1.1, 0})
	require.NoError(t, err)
	require.NotNil(t, diag)
	assert.Equal(t, "diagonal", diag.Series.Title)
}

func TestSeriesRepo_NearestBySimilarity_Empty(t *testing.T) {
	db := setupSeriesTestDB(t)
	repo := NewSeriesRepository(db)

	match, err := repo.NearestBySimilarity(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestCosineSimilarity(t *testing.T) {
	score, ok := cosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)

	score, ok = cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.True(t, ok)
	assert.InDelta(t, 0.0, score, 1e-9)

	_, ok = cosineSimilarity([]float32{1, 0}, []float32{1})
	assert.False(t, ok)

	_, ok = cosineSimilarity([]float32{0, 0}, []float32{1, 1})
	assert.False(t, ok)
}
