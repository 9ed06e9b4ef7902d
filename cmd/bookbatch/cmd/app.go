package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/inkwhale/bookbatch/internal/batch"
	"github.com/inkwhale/bookbatch/internal/batch/books"
	seriesbatch "github.com/inkwhale/bookbatch/internal/batch/series"
	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/database"
	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/observability"
	"github.com/inkwhale/bookbatch/internal/prompt"
	"github.com/inkwhale/bookbatch/internal/provider"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// Job catalog names accepted by run and schedule.
const (
	JobNLGO   = "nlgo"
	JobNaver  = "naver"
	JobAladin = "aladin"
	JobKyobo  = "kyobo"
	JobSeries = "series"
)

// JobNames lists the catalog in a stable order.
var JobNames = []string{JobNLGO, JobAladin, JobNaver, JobKyobo, JobSeries}

// app wires configuration, database, stores and site clients for the CLI
// commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.DB

	books      repository.BookRepository
	publishers repository.PublisherRepository
	series     repository.SeriesRepository
	rules      repository.FilterRuleRepository
	runs       repository.JobRunRepository
}

// newApp loads configuration, opens the database and runs migrations.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg)

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		books:      repository.NewBookRepository(db.DB),
		publishers: repository.NewPublisherRepository(db.DB),
		series:     repository.NewSeriesRepository(db.DB),
		rules:      repository.NewFilterRuleRepository(db.DB),
		runs:       repository.NewJobRunRepository(db.DB),
	}, nil
}

// Close releases the database.
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}

// promptClient builds the configured prompt backend.
func (a *app) promptClient() (prompt.Prompt, error) {
	switch a.cfg.PromptBackend() {
	case "bridge":
		return prompt.NewBridgeClient(a.cfg.Bridge), nil
	case "openai":
		return prompt.NewOpenAIClient(a.cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("no prompt backend configured: set bridge.base_url or openai.api_key")
	}
}

// jobRunner executes one assembled job.
type jobRunner func(ctx context.Context, params batch.JobParameter) (*batch.Result, error)

// buildJob assembles the named catalog job.
func (a *app) buildJob(ctx context.Context, name string) (jobRunner, error) {
	deps := books.Deps{
		Books:      a.books,
		Publishers: a.publishers,
		Rules:      a.rules,
		Logger:     observability.WithJob(a.logger, name),
	}

	switch name {
	case JobNLGO:
		searcher := provider.NewNLGOClient(a.cfg.Sources.NLGO, a.cfg.Sources.HTTP)
		job, err := books.NewRegistryJob(ctx, searcher, deps, a.collectOptions(a.cfg.Sources.NLGO))
		if err != nil {
			return nil, err
		}
		return job.Run, nil

	case JobAladin:
		searcher := provider.NewAladinClient(a.cfg.Sources.Aladin, a.cfg.Sources.HTTP)
		job, err := books.NewStoreSearchJob(ctx, searcher, deps, a.collectOptions(a.cfg.Sources.Aladin))
		if err != nil {
			return nil, err
		}
		return job.Run, nil

	case JobNaver:
		looker := provider.NewNaverClient(a.cfg.Sources.Naver, a.cfg.Sources.HTTP)
		job, err := books.NewEnrichJob(ctx, looker, deps, a.collectOptions(a.cfg.Sources.Naver))
		if err != nil {
			return nil, err
		}
		return job.Run, nil

	case JobKyobo:
		looker := provider.NewKyoboClient(a.cfg.Sources.Kyobo, a.cfg.Sources.HTTP)
		job, err := books.NewPublishedEnrichJob(ctx, looker, deps, a.collectOptions(a.cfg.Sources.Kyobo))
		if err != nil {
			return nil, err
		}
		return job.Run, nil

	case JobSeries:
		promptClient, err := a.promptClient()
		if err != nil {
			return nil, err
		}
		job, err := seriesbatch.NewMappingJob(seriesbatch.Deps{
			Books:  a.books,
			Series: a.series,
			Prompt: promptClient,
			Logger: observability.WithJob(a.logger, name),
		}, seriesbatch.Options{
			// One book per chunk, so each decision sees the series
			// the previous book may have created.
			ChunkSize: 1,
			Threshold: a.cfg.Batch.SeriesThreshold,
		})
		if err != nil {
			return nil, err
		}
		return job.Run, nil

	default:
		return nil, fmt.Errorf("unknown job %q, want one of: %s", name, strings.Join(JobNames, ", "))
	}
}

func (a *app) collectOptions(src config.SourceConfig) books.Options {
	return books.Options{
		ChunkSize: a.cfg.Batch.ChunkSize,
		PageSize:  src.PageSize,
	}
}

// defaultParams fills the parameters a job needs but the invocation left
// out: the publication window from the configured collection horizon, the
// publisher list from every stored publisher, and the series pickup limit.
func (a *app) defaultParams(ctx context.Context, name string, params batch.JobParameter) (batch.JobParameter, error) {
	filled := make(batch.JobParameter, len(params)+3)
	for k, v := range params {
		filled[k] = v
	}

	if name == JobSeries {
		if filled[seriesbatch.ParamLimit] == "" {
			filled[seriesbatch.ParamLimit] = strconv.Itoa(a.cfg.Batch.SeriesLimit)
		}
		return filled, nil
	}

	// An explicit ISBN list replaces the window for enrich jobs.
	if filled[books.ParamISBN] != "" {
		return filled, nil
	}

	now := time.Now()
	if filled[books.ParamFrom] == "" {
		filled[books.ParamFrom] = now.AddDate(0, 0, -a.cfg.Batch.CollectWindowPastDays).Format("2006-01-02")
	}
	if filled[books.ParamTo] == "" {
		filled[books.ParamTo] = now.AddDate(0, 0, a.cfg.Batch.CollectWindowNextDays).Format("2006-01-02")
	}

	// Search jobs need publishers; default to every stored one.
	if (name == JobNLGO || name == JobAladin) && filled[books.ParamPublisher] == "" {
		publishers, err := a.publishers.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading publishers: %w", err)
		}
		ids := make([]string, 0, len(publishers))
		for _, p := range publishers {
			ids = append(ids, strconv.FormatUint(p.ID, 10))
		}
		sort.Strings(ids)
		filled[books.ParamPublisher] = strings.Join(ids, ",")
	}
	return filled, nil
}

// runJob executes a catalog job with run bookkeeping: a job_runs row is
// created at start and finished with the outcome, including the partial
// item count of a failed run.
func (a *app) runJob(ctx context.Context, name string, params batch.JobParameter) (*batch.Result, error) {
	params, err := a.defaultParams(ctx, name, params)
	if err != nil {
		return nil, err
	}

	runner, err := a.buildJob(ctx, name)
	if err != nil {
		return nil, err
	}

	run := &models.JobRun{
		ID:         models.NewJobRunID(),
		JobName:    name,
		Parameters: params,
	}
	if err := a.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}

	logger := observability.WithJob(a.logger, name)
	ctx = observability.ContextWithLogger(ctx, logger)
	logger.InfoContext(ctx, "run started",
		slog.String("run_id", run.ID),
		slog.Any("params", params),
	)

	result, runErr := runner(ctx, params)

	status := models.JobRunStatusSucceeded
	if runErr != nil {
		status = models.JobRunStatusFailed
	}
	written := 0
	if result != nil {
		written = result.ItemsWritten
	}
	if err := a.runs.Finish(ctx, run.ID, status, written, runErr); err != nil {
		observability.WithError(logger, err).ErrorContext(ctx, "recording run outcome",
			slog.String("run_id", run.ID),
		)
	}

	if runErr != nil {
		observability.WithError(logger, runErr).ErrorContext(ctx, "run failed",
			slog.String("run_id", run.ID),
			slog.Int("items_written", written),
		)
		return result, runErr
	}

	logger.InfoContext(ctx, "run succeeded",
		slog.String("run_id", run.ID),
		slog.Int("items_read", result.ItemsRead),
		slog.Int("items_written", result.ItemsWritten),
		slog.Int("chunks", result.Chunks),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}
