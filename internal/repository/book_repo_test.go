package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupBookTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Book{}, &models.Series{})
	require.NoError(t, err)

	return db
}

func TestBookRepo_CreateAndGetByISBN(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	book := &models.Book{
		ISBN:        "9788966261000",
		PublisherID: 7,
		Title:       "The Go Programming Language",
	}
	book.AddOriginal(models.SiteNaver, models.Raw{"title": "The Go Programming Language"})

	require.NoError(t, repo.Create(ctx, book))
	assert.NotZero(t, book.ID)

	found, err := repo.GetByISBN(ctx, "9788966261000")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "The Go Programming Language", found.Title)
	require.NotNil(t, found.Original(models.SiteNaver))
	title, _ := found.Original(models.SiteNaver).Text("title")
	assert.Equal(t, "The Go Programming Language", title)
}

func TestBookRepo_GetByISBN_NotFound(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)

	found, err := repo.GetByISBN(context.Background(), "0000000000000")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestBookRepo_Create_Validation(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)

	err := repo.Create(context.Background(), &models.Book{Title: "no isbn"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "isbn")
}

func TestBookRepo_InsertNew_SkipsExisting(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "111", Title: "existing"}))

	written, err := repo.InsertNew(ctx, []*models.Book{
		{ISBN: "111", Title: "duplicate"},
		{ISBN: "222", Title: "fresh"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	existing, err := repo.GetByISBN(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "existing", existing.Title)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBookRepo_Upsert_MergesExisting(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	stored := &models.Book{ISBN: "333", PublisherID: 1, Title: "old title"}
	stored.AddOriginal(models.SiteNLGO, models.Raw{"title": "old title"})
	require.NoError(t, repo.Create(ctx, stored))

	pubDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	incoming := &models.Book{ISBN: "333", Title: "new title", ActualPubDate: &pubDate}
	incoming.AddOriginal(models.SiteAladin, models.Raw{"title": "new title"})

	written, err := repo.Upsert(ctx, []*models.Book{incoming, {ISBN: "444", Title: "brand new"}})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	merged, err := repo.GetByISBN(ctx, "333")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, merged.ID)
	assert.Equal(t, "new title", merged.Title)
	require.NotNil(t, merged.ActualPubDate)
	assert.True(t, pubDate.Equal(*merged.ActualPubDate))
	assert.NotNil(t, merged.Original(models.SiteNLGO))
	assert.NotNil(t, merged.Original(models.SiteAladin))

	created, err := repo.GetByISBN(ctx, "444")
	require.NoError(t, err)
	require.NotNil(t, created)
}

func TestBookRepo_GetUnorganized(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	seriesID := uint64(9)
	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "a1", Title: "loose one"}))
	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "a2", Title: "linked", SeriesID: &seriesID}))
	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "a3", Title: "loose two"}))

	books, err := repo.GetUnorganized(ctx, 10)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "a1", books[0].ISBN)
	assert.Equal(t, "a3", books[1].ISBN)

	limited, err := repo.GetUnorganized(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestBookRepo_GetByPubDateBetween(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "w1", Title: "inside scheduled", ScheduledPubDate: date(2026, 3, 10)}))
	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "w2", Title: "inside actual", ActualPubDate: date(2026, 3, 20)}))
	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "w3", Title: "outside", ActualPubDate: date(2026, 6, 1)}))
	require.NoError(t, repo.Create(ctx, &models.Book{ISBN: "w4", Title: "no dates"}))

	books, err := repo.GetByPubDateBetween(ctx,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "w1", books[0].ISBN)
	assert.Equal(t, "w2", books[1].ISBN)
}

func TestBookRepo_LinkSeries(t *testing.T) {
	db := setupBookTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	book := &models.Book{ISBN: "b1", Title: "to be linked"}
	require.NoError(t, repo.Create(ctx, book))

	require.NoError(t, repo.LinkSeries(ctx, book.ID, 42))

	found, err := repo.GetByISBN(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, found.SeriesID)
	assert.Equal(t, uint64(42), *found.SeriesID)
}
