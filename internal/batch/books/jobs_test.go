package books

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/provider"
	"github.com/inkwhale/bookbatch/internal/repository"
)

func setupBooksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Publisher{}, &models.Book{}, &models.FilterRule{})
	require.NoError(t, err)

	return db
}

func testDeps(t *testing.T, db *gorm.DB) Deps {
	t.Helper()
	return Deps{
		Books:      repository.NewBookRepository(db),
		Publishers: repository.NewPublisherRepository(db),
		Rules:      repository.NewFilterRuleRepository(db),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func windowParams(publisher string) map[string]string {
	return map[string]string{
		ParamPublisher: publisher,
		ParamFrom:    "2026-01-01",
		ParamTo:      "2026-03-31",
	}
}

// cannedSearcher serves fixed pages regardless of keyword.
type cannedSearcher struct {
	site  models.Site
	pages [][]*models.Book
}

func (s *cannedSearcher) Site() models.Site {
	return s.site
}

func (s *cannedSearcher) Search(_ context.Context, req *provider.SearchRequest) (*provider.SearchResponse, error) {
	resp := &provider.SearchResponse{Site: s.site, PageNo: req.Page}
	if req.Page <= len(s.pages) {
		resp.Books = s.pages[req.Page-1]
		resp.PageCount = len(resp.Books)
	}
	return resp, nil
}

// cannedLooker serves fixed records keyed by ISBN.
type cannedLooker struct {
	site  models.Site
	books map[string]*models.Book
}

func (l *cannedLooker) Site() models.Site {
	return l.site
}

func (l *cannedLooker) Lookup(_ context.Context, isbn string) (*models.Book, error) {
	return l.books[isbn], nil
}

func registryBook(isbn, title string) *models.Book {
	b := &models.Book{ISBN: isbn, Title: title}
	b.AddOriginal(models.SiteNLGO, models.Raw{"ea_isbn": isbn, "title": title})
	return b
}

func TestRegistryJob_EndToEnd(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	err := deps.Publishers.Create(ctx, &models.Publisher{
		ID:   1,
		Name: "한빛",
		Keywords: map[models.Site][]string{
			models.SiteNLGO: {"한빛"},
		},
	})
	require.NoError(t, err)

	// Five raw records collapse to three unique books: one has a blank
	// ISBN and one is a duplicate.
	searcher := &cannedSearcher{
		site: models.SiteNLGO,
		pages: [][]*models.Book{
			{
				registryBook("9791100000001", "봄의 정원 1"),
				registryBook("9791100000002", "봄의 정원 2"),
				registryBook("9791100000001", "봄의 정원 1 중복"),
			},
			{
				registryBook("", "ISBN 없는 레코드"),
				registryBook("9791100000003", "가을의 서재"),
			},
		},
	}

	job, err := NewRegistryJob(ctx, searcher, deps, Options{ChunkSize: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "books.NLGO", job.Name())

	result, err := job.Run(ctx, windowParams("1"))
	require.NoError(t, err)

	assert.Equal(t, 5, result.ItemsRead)
	assert.Equal(t, 3, result.ItemsFiltered)
	assert.Equal(t, 3, result.ItemsWritten)
	assert.Equal(t, 2, result.Chunks)

	count, err := deps.Books.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	stored, err := deps.Books.GetByISBN(ctx, "9791100000001")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "봄의 정원 1", stored.Title)
	assert.Equal(t, uint64(1), stored.PublisherID)
}

func TestRegistryJob_SecondRunLeavesStoredRows(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	err := deps.Publishers.Create(ctx, &models.Publisher{
		ID:       1,
		Name:     "한빛",
		Keywords: map[models.Site][]string{models.SiteNLGO: {"한빛"}},
	})
	require.NoError(t, err)

	searcher := &cannedSearcher{
		site:  models.SiteNLGO,
		pages: [][]*models.Book{{registryBook("9791100000001", "초판 제목")}},
	}
	job, err := NewRegistryJob(ctx, searcher, deps, Options{})
	require.NoError(t, err)

	_, err = job.Run(ctx, windowParams("1"))
	require.NoError(t, err)

	// Second run sees a changed title; insert-only persistence keeps the
	// stored row.
	searcher.pages = [][]*models.Book{{registryBook("9791100000001", "바뀐 제목")}}
	result, err := job.Run(ctx, windowParams("1"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsWritten)

	stored, err := deps.Books.GetByISBN(ctx, "9791100000001")
	require.NoError(t, err)
	assert.Equal(t, "초판 제목", stored.Title)
}

func TestRegistryJob_PublisherWithoutKeywords(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	err := deps.Publishers.Create(ctx, &models.Publisher{ID: 1, Name: "키워드 없음"})
	require.NoError(t, err)

	job, err := NewRegistryJob(ctx, &cannedSearcher{site: models.SiteNLGO}, deps, Options{})
	require.NoError(t, err)

	_, err = job.Run(ctx, windowParams("1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no keywords")
}

func TestRegistryJob_UnknownPublisher(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	job, err := NewRegistryJob(ctx, &cannedSearcher{site: models.SiteNLGO}, deps, Options{})
	require.NoError(t, err)

	_, err = job.Run(ctx, windowParams("99"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestEnrichJob_MergesSiteRecords(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	pubDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	stored := registryBook("9791100000001", "봄의 정원 1")
	stored.PublisherID = 1
	stored.ScheduledPubDate = &pubDate
	require.NoError(t, deps.Books.Create(ctx, stored))

	fetched := &models.Book{ISBN: "9791100000001", Title: "봄의 정원 1", ActualPubDate: &pubDate}
	fetched.AddOriginal(models.SiteNaver, models.Raw{"discount": "13500", "description": "첫 권"})

	looker := &cannedLooker{
		site:  models.SiteNaver,
		books: map[string]*models.Book{"9791100000001": fetched},
	}

	job, err := NewEnrichJob(ctx, looker, deps, Options{})
	require.NoError(t, err)

	result, err := job.Run(ctx, map[string]string{
		ParamFrom: "2026-02-01",
		ParamTo:   "2026-02-28",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsWritten)

	merged, err := deps.Books.GetByISBN(ctx, "9791100000001")
	require.NoError(t, err)
	require.NotNil(t, merged)
	assert.Equal(t, stored.ID, merged.ID)
	assert.Equal(t, uint64(1), merged.PublisherID)
	require.NotNil(t, merged.ActualPubDate)

	// Both site records survive the merge.
	assert.NotNil(t, merged.Original(models.SiteNLGO))
	naver := merged.Original(models.SiteNaver)
	require.NotNil(t, naver)
	assert.Equal(t, "13500", naver["discount"])
}

func TestPublishedEnrichJob_SkipsUnpublished(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	pubDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	published := registryBook("9791100000001", "출간된 책")
	published.ActualPubDate = &pubDate
	require.NoError(t, deps.Books.Create(ctx, published))

	upcoming := registryBook("9791100000002", "예정된 책")
	upcoming.ScheduledPubDate = &pubDate
	require.NoError(t, deps.Books.Create(ctx, upcoming))

	looker := &cannedLooker{site: models.SiteKyobo, books: map[string]*models.Book{}}
	for _, isbn := range []string{"9791100000001", "9791100000002"} {
		b := &models.Book{ISBN: isbn, Title: "교보 레코드"}
		b.AddOriginal(models.SiteKyobo, models.Raw{"isbn": isbn})
		looker.books[isbn] = b
	}

	job, err := NewPublishedEnrichJob(ctx, looker, deps, Options{})
	require.NoError(t, err)

	result, err := job.Run(ctx, map[string]string{
		ParamFrom: "2026-02-01",
		ParamTo:   "2026-02-28",
	})
	require.NoError(t, err)

	// Only the book with a confirmed publication date was looked up.
	assert.Equal(t, 1, result.ItemsRead)
	assert.Equal(t, 1, result.ItemsWritten)

	merged, err := deps.Books.GetByISBN(ctx, "9791100000002")
	require.NoError(t, err)
	assert.Nil(t, merged.Original(models.SiteKyobo))
}

func TestEnrichJob_TargetsListedISBNs(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	for _, isbn := range []string{"9791100000001", "9791100000002"} {
		require.NoError(t, deps.Books.Create(ctx, registryBook(isbn, "저장된 책 "+isbn)))
	}

	looker := &cannedLooker{site: models.SiteNaver, books: map[string]*models.Book{}}
	for _, isbn := range []string{"9791100000001", "9791100000002"} {
		b := &models.Book{ISBN: isbn, Title: "네이버 레코드"}
		b.AddOriginal(models.SiteNaver, models.Raw{"discount": "9900"})
		looker.books[isbn] = b
	}

	job, err := NewEnrichJob(ctx, looker, deps, Options{})
	require.NoError(t, err)

	// No window: the isbn parameter alone selects the stored books.
	result, err := job.Run(ctx, map[string]string{
		ParamISBN: "9791100000002",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsRead)
	assert.Equal(t, 1, result.ItemsWritten)

	untouched, err := deps.Books.GetByISBN(ctx, "9791100000001")
	require.NoError(t, err)
	assert.Nil(t, untouched.Original(models.SiteNaver))
}

func TestEnrichJob_SkipsUnknownISBNs(t *testing.T) {
	db := setupBooksTestDB(t)
	deps := testDeps(t, db)
	ctx := context.Background()

	pubDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	stored := registryBook("9791100000001", "어디에도 없는 책")
	stored.ScheduledPubDate = &pubDate
	require.NoError(t, deps.Books.Create(ctx, stored))

	looker := &cannedLooker{site: models.SiteNaver, books: map[string]*models.Book{}}

	job, err := NewEnrichJob(ctx, looker, deps, Options{})
	require.NoError(t, err)

	result, err := job.Run(ctx, map[string]string{
		ParamFrom: "2026-02-01",
		ParamTo:   "2026-02-28",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsRead)
	assert.Equal(t, 0, result.ItemsWritten)
}
