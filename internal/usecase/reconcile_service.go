package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type ReconcileConfig struct {
	BatchSize    int
	GracePeriod  time.Duration
	FetchTimeout time.Duration
	Location     *time.Location
}

func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		BatchSize:    10,
		GracePeriod:  2 * time.Hour,
		FetchTimeout: 20 * time.Second,
		Location:     time.UTC,
	}
}

type ReconcileSummary struct {
	Cutoff     string `json:"cutoff"`
	Total      int    `json:"total"`
	Fetched    int    `json:"fetched"`
	Updated    int    `json:"updated"`
	Unchanged  int    `json:"unchanged"`
	Failed     int    `json:"failed"`
	Batches    int    `json:"batches"`
	DurationMs int64  `json:"duration_ms"`
}

// ReconcileService re-fetches scores of matches whose stored result is still
// the pre-match placeholder once the grace period after kickoff has passed.
type ReconcileService struct {
	source match.Source
	repo   match.Repository
	cfg    ReconcileConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewReconcileService(source match.Source, repo match.Repository, cfg ReconcileConfig, logger *logging.Logger) *ReconcileService {
	defaults := DefaultReconcileConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = defaults.GracePeriod
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		source: source,
		repo:   repo,
		cfg:    cfg,
		logger: logger.Named("reconcile"),
		now:    time.Now,
	}
}

func (s *ReconcileService) Run(ctx context.Context) (ReconcileSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Run")
	defer span.End()

	started := s.now()
	cutoff := started.In(s.cfg.Location).Add(-s.cfg.GracePeriod)
	summary := ReconcileSummary{Cutoff: cutoff.Format("2006-01-02 15:04")}

	stale, err := s.repo.ListStaleScores(ctx, cutoff)
	if err != nil {
		recordSpanError(span, err)
		return summary, fmt.Errorf("list stale scores: %w", err)
	}
	summary.Total = len(stale)
	if len(stale) == 0 {
		s.logger.InfoContext(ctx, "no scores to reconcile", "cutoff", summary.Cutoff)
		summary.DurationMs = s.now().Sub(started).Milliseconds()
		return summary, nil
	}

	var counters reconcileCounters
	for start := 0; start < len(stale); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(stale))
		if err := s.runBatch(ctx, stale[start:end], &counters); err != nil {
			recordSpanError(span, err)
			return counters.fill(summary), err
		}
		summary.Batches++
		if ctx.Err() != nil {
			break
		}
	}

	summary = counters.fill(summary)
	summary.DurationMs = s.now().Sub(started).Milliseconds()
	s.logger.InfoContext(ctx, "reconcile finished",
		"total", summary.Total,
		"fetched", summary.Fetched,
		"updated", summary.Updated,
		"failed", summary.Failed,
		"batches", summary.Batches,
	)
	span.SetAttributes(
		attribute.Int("reconcile.total", summary.Total),
		attribute.Int("reconcile.updated", summary.Updated),
		attribute.Int("reconcile.failed", summary.Failed),
	)
	return summary, ctx.Err()
}

type reconcileCounters struct {
	fetched   atomic.Int32
	updated   atomic.Int32
	unchanged atomic.Int32
	failed    atomic.Int32
}

func (c *reconcileCounters) fill(summary ReconcileSummary) ReconcileSummary {
	summary.Fetched = int(c.fetched.Load())
	summary.Updated = int(c.updated.Load())
	summary.Unchanged = int(c.unchanged.Load())
	summary.Failed = int(c.failed.Load())
	return summary
}

// runBatch reconciles one batch on its own pool and waits for all of it.
func (s *ReconcileService) runBatch(ctx context.Context, batch []match.Match, counters *reconcileCounters) error {
	pool, err := ants.NewPool(len(batch))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, item := range batch {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			fetched, updated, err := s.ReconcileOne(ctx, item)
			switch {
			case err != nil:
				counters.failed.Add(1)
				s.logger.WarnContext(ctx, "reconcile match failed", "match_id", item.ID, "error", err)
			case updated:
				counters.fetched.Add(1)
				counters.updated.Add(1)
			case fetched:
				counters.fetched.Add(1)
				counters.unchanged.Add(1)
			}
		}); err != nil {
			workers.Done()
			counters.failed.Add(1)
			s.logger.ErrorContext(ctx, "submit reconcile task failed", "match_id", item.ID, "error", err)
		}
	}
	workers.Wait()
	return nil
}

// ReconcileOne fetches the current score of m and writes it when it differs
// from the stored one. A fetched score with no full-time result leaves the
// stored row untouched.
func (s *ReconcileService) ReconcileOne(ctx context.Context, m match.Match) (fetched, updated bool, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	score, err := s.source.FetchMatchScore(fetchCtx, m.ID)
	cancel()
	if err != nil {
		return false, false, fmt.Errorf("fetch score match_id=%d: %w", m.ID, err)
	}
	if !score.Known() {
		s.logger.DebugContext(ctx, "score still unknown", "match_id", m.ID)
		return true, false, nil
	}

	previous, _, err := s.repo.GetScore(ctx, m.ID)
	if err != nil {
		return true, false, fmt.Errorf("get score match_id=%d: %w", m.ID, err)
	}

	changed, err := s.repo.UpdateScore(ctx, m.ID, score)
	if err != nil {
		return true, false, fmt.Errorf("update score match_id=%d: %w", m.ID, err)
	}
	if changed {
		s.logger.InfoContext(ctx, "score updated",
			"match_id", m.ID,
			"fixture", m.HomeTeam+" - "+m.AwayTeam,
			"previous", previous.FullTime(),
			"score", score.FullTime(),
			"half_time", score.HalfTime(),
		)
	}
	return true, changed, nil
}
