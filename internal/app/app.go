// Package app wires configuration, storage, the analysis API and the
// notifier into the services the commands run.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-digest/external/analysisapi"
	"github.com/riskibarqy/match-digest/external/telegram"
	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/match-digest/internal/infrastructure/repository/sqlstore"
	basecache "github.com/riskibarqy/match-digest/internal/platform/cache"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/riskibarqy/match-digest/internal/platform/resilience"
	"github.com/riskibarqy/match-digest/internal/usecase"
)

// App owns the database handle and the services built on it.
type App struct {
	cfg      config.Config
	logger   *logging.Logger
	db       *sqlx.DB
	matches  *sqlstore.MatchRepository
	notifier usecase.Notifier

	cachedReader *cache.Reader

	sourceOnce sync.Once
	source     match.Source
	sourceErr  error

	Publish *usecase.PublishService
	Report  *usecase.ReportService
}

type Option func(*App)

// WithSource replaces the analysis API client.
func WithSource(source match.Source) Option {
	return func(a *App) {
		a.sourceOnce.Do(func() { a.source = source })
	}
}

// WithNotifier replaces the notifier chosen from the Telegram settings.
func WithNotifier(n usecase.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// StoreConfig maps the database settings onto the store.
func StoreConfig(cfg config.Config) sqlstore.Config {
	return sqlstore.Config{
		Driver:       cfg.DBDriver,
		URL:          cfg.DBURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		BusyTimeout:  cfg.DBBusyTimeout,
	}
}

// New migrates and opens the store, then builds the services. The analysis
// API client is built on first use so that commands which never call it do
// not need ANALYSIS_API_BASE_URL.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(a)
	}

	storeCfg := StoreConfig(cfg)
	if err := sqlstore.Migrate(storeCfg); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	db, err := sqlstore.Open(ctx, storeCfg)
	if err != nil {
		return nil, err
	}
	added, err := sqlstore.EnsureOddsColumns(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure odds columns: %w", err)
	}
	if len(added) > 0 {
		logger.Info("odds columns added", "columns", added)
	}
	a.db = db
	a.matches = sqlstore.NewMatchRepository(db)

	if a.notifier == nil {
		a.notifier, err = newNotifier(cfg, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	var ads *usecase.AdRotator
	if cfg.AdsFile != "" {
		adverts, err := usecase.LoadAdverts(cfg.AdsFile)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		ads = usecase.NewAdRotator(adverts)
	}

	var reader match.Reader = sqlstore.NewDigestRepository(db)
	if cfg.PublishCacheTTL > 0 {
		a.cachedReader = cache.NewReader(reader,
			basecache.NewStore[[]match.PredictionView](cfg.PublishCacheTTL),
			basecache.NewStore[[]match.HalfTimeGoalPick](cfg.PublishCacheTTL),
		)
		reader = a.cachedReader
	}
	a.Publish = usecase.NewPublishService(reader, a.notifier, ads, usecase.PublishConfig{
		Leagues:    cfg.PublishLeagues,
		CouponSize: cfg.PublishCouponSize,
		SiteURL:    cfg.PublishSiteURL,
		Location:   cfg.Location,
	}, logger)
	a.Report = usecase.NewReportService(reader, logger)

	return a, nil
}

func newNotifier(cfg config.Config, logger *logging.Logger) (usecase.Notifier, error) {
	if !cfg.TelegramEnabled {
		logger.Info("telegram disabled, messages go to the log")
		return usecase.NewLogNotifier(logger), nil
	}
	n, err := telegram.NewNotifier(telegram.Config{
		Token:    cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		Endpoint: cfg.TelegramEndpoint,
		Retry:    resilience.RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second},
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build telegram notifier: %w", err)
	}
	return n, nil
}

func (a *App) analysisSource() (match.Source, error) {
	a.sourceOnce.Do(func() {
		cfg := a.cfg
		a.source, a.sourceErr = analysisapi.NewClient(analysisapi.ClientConfig{
			BaseURL:      cfg.AnalysisAPIBaseURL,
			ListTimeout:  cfg.AnalysisAPIListTimeout,
			MatchTimeout: cfg.AnalysisAPIMatchTimeout,
			Retry: resilience.RetryPolicy{
				MaxAttempts: cfg.AnalysisAPIMaxAttempts,
				Delay:       cfg.AnalysisAPIRetryDelay,
			},
			RateLimit: cfg.AnalysisAPIRateLimit,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AnalysisAPICircuitEnabled,
				FailureThreshold: cfg.AnalysisAPICircuitFailureCount,
				OpenTimeout:      cfg.AnalysisAPICircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AnalysisAPICircuitHalfOpenMaxReq,
			},
			Logger: a.logger,
		})
	})
	return a.source, a.sourceErr
}

// Ingestion builds the ingestion service over the analysis API.
func (a *App) Ingestion() (*usecase.IngestionService, error) {
	source, err := a.analysisSource()
	if err != nil {
		return nil, err
	}
	return usecase.NewIngestionService(source, a.matches, usecase.IngestionConfig{
		Concurrency:  a.cfg.IngestConcurrency,
		MatchTimeout: a.cfg.IngestMatchTimeout,
	}, a.logger), nil
}

// Reconciler builds the score reconciler over the analysis API.
func (a *App) Reconciler() (*usecase.ReconcileService, error) {
	source, err := a.analysisSource()
	if err != nil {
		return nil, err
	}
	return usecase.NewReconcileService(source, a.matches, usecase.ReconcileConfig{
		BatchSize:    a.cfg.ReconcileBatchSize,
		GracePeriod:  a.cfg.ReconcileGracePeriod,
		FetchTimeout: a.cfg.AnalysisAPIMatchTimeout,
		Location:     a.cfg.Location,
	}, a.logger), nil
}

// RunIngestion ingests date, or today in the configured zone when date is
// empty. With notify the run summary is posted to the notifier.
func (a *App) RunIngestion(ctx context.Context, date string, notify bool) (usecase.IngestionSummary, error) {
	svc, err := a.Ingestion()
	if err != nil {
		return usecase.IngestionSummary{}, err
	}
	if date == "" {
		date = a.Publish.Today()
	}

	summary, runErr := svc.Run(ctx, date)
	if a.cachedReader != nil && summary.Success > 0 {
		a.cachedReader.Invalidate(ctx)
	}
	if notify {
		if err := a.Publish.PostIngestionReport(ctx, summary, runErr); err != nil {
			a.logger.WarnContext(ctx, "ingestion report not delivered", "error", err)
		}
	}
	return summary, runErr
}

// RunReconcile refreshes stale scores; with notify the summary is posted.
func (a *App) RunReconcile(ctx context.Context, notify bool) (usecase.ReconcileSummary, error) {
	svc, err := a.Reconciler()
	if err != nil {
		return usecase.ReconcileSummary{}, err
	}

	summary, runErr := svc.Run(ctx)
	if notify {
		if err := a.Publish.PostReconcileReport(ctx, summary, runErr); err != nil {
			a.logger.WarnContext(ctx, "reconcile report not delivered", "error", err)
		}
	}
	return summary, runErr
}

// ExportReport writes settled results between from and to as CSV.
func (a *App) ExportReport(ctx context.Context, from, to string, w io.Writer) (int, error) {
	return a.Report.ExportSettled(ctx, from, to, w)
}

// NotifyFailure posts a job failure. Delivery errors are logged only.
func (a *App) NotifyFailure(ctx context.Context, job string, runErr error) {
	if err := a.Publish.PostJobFailure(ctx, job, runErr); err != nil {
		a.logger.ErrorContext(ctx, "failure notification not delivered", "job", job, "error", err)
	}
}

func (a *App) Config() config.Config {
	return a.cfg
}

func (a *App) Logger() *logging.Logger {
	return a.logger
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return crerr.Wrap(a.db.Close(), "close store")
}
