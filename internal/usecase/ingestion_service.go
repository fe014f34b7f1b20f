package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type IngestionConfig struct {
	Concurrency  int
	MatchTimeout time.Duration
}

func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		Concurrency:  5,
		MatchTimeout: 20 * time.Second,
	}
}

type IngestionStatus string

const (
	IngestionStatusCompleted       IngestionStatus = "completed"
	IngestionStatusNoMatches       IngestionStatus = "no_matches"
	IngestionStatusListUnavailable IngestionStatus = "list_unavailable"
	IngestionStatusAborted         IngestionStatus = "aborted"
)

// MatchState tracks one match through a run:
// pending -> skipped | fetching -> failed | fetched -> stored | store_failed.
type MatchState string

const (
	MatchStatePending     MatchState = "pending"
	MatchStateSkipped     MatchState = "skipped"
	MatchStateFetching    MatchState = "fetching"
	MatchStateFailed      MatchState = "failed"
	MatchStateFetched     MatchState = "fetched"
	MatchStateStored      MatchState = "stored"
	MatchStateStoreFailed MatchState = "store_failed"
)

const (
	reasonExists              = "already_stored"
	reasonTimeout             = "timeout"
	reasonCancelled           = "cancelled"
	reasonAnalysisUnavailable = "analysis_unavailable"
	reasonUpstreamUnavailable = "upstream_unavailable"
	reasonInvalidPayload      = "invalid_payload"
	reasonFetchError          = "fetch_error"
	reasonStoreError          = "store_error"
)

// IngestionSummary reports one run. Total counts distinct match ids, so
// Success+Failed+Skipped == Total; Duplicates counts the extra list rows that
// repeated an id already listed.
type IngestionSummary struct {
	Date       string          `json:"date"`
	Status     IngestionStatus `json:"status"`
	Total      int             `json:"total"`
	Duplicates int             `json:"duplicates"`
	Success    int             `json:"success"`
	Failed     int             `json:"failed"`
	Skipped    int             `json:"skipped"`
	DurationMs int64           `json:"duration_ms"`
	Matches    []MatchOutcome  `json:"matches,omitempty"`
}

type MatchOutcome struct {
	MatchID    int64      `json:"match_id"`
	State      MatchState `json:"state"`
	Reason     string     `json:"reason,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

// IngestionService loads the day's match list and stores the analysis of every
// match not stored yet.
type IngestionService struct {
	source match.Source
	repo   match.Repository
	cfg    IngestionConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewIngestionService(source match.Source, repo match.Repository, cfg IngestionConfig, logger *logging.Logger) *IngestionService {
	defaults := DefaultIngestionConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.MatchTimeout <= 0 {
		cfg.MatchTimeout = defaults.MatchTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		source: source,
		repo:   repo,
		cfg:    cfg,
		logger: logger.Named("ingestion"),
		now:    time.Now,
	}
}

// Run ingests the matches of date (YYYY-MM-DD). A summary is returned even
// when err is non-nil; err is set only for run-fatal failures.
func (s *IngestionService) Run(ctx context.Context, date string) (IngestionSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Run", attribute.String("match.date", date))
	defer span.End()

	started := s.now()
	summary := IngestionSummary{Date: date}

	normalized, err := match.NormalizeDate(date)
	if err != nil {
		return s.finish(summary, started), fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	summary.Date = normalized

	stubs, err := s.source.FetchMatchList(ctx, normalized)
	if err != nil {
		summary.Status = IngestionStatusListUnavailable
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "match list unavailable", "date", normalized, "error", err)
		return s.finish(summary, started), fmt.Errorf("fetch match list date=%s: %w", normalized, err)
	}
	listed := len(stubs)
	stubs = dedupeStubs(stubs)
	summary.Duplicates = listed - len(stubs)
	if summary.Duplicates > 0 {
		s.logger.WarnContext(ctx, "match list repeats ids", "date", normalized, "listed", listed, "duplicates", summary.Duplicates)
	}
	if len(stubs) == 0 {
		summary.Status = IngestionStatusNoMatches
		s.logger.InfoContext(ctx, "no matches listed", "date", normalized)
		return s.finish(summary, started), nil
	}

	summary.Total = len(stubs)
	outcomes := make([]MatchOutcome, 0, len(stubs))
	pending := make([]match.Stub, 0, len(stubs))
	for _, stub := range stubs {
		exists, err := s.repo.Exists(ctx, stub.ID)
		if err != nil {
			summary.Status = IngestionStatusAborted
			summary.Matches = outcomes
			recordSpanError(span, err)
			s.logger.ErrorContext(ctx, "store unavailable, ingestion aborted", "match_id", stub.ID, "error", err)
			return s.finish(summary, started), fmt.Errorf("check match exists match_id=%d: %w", stub.ID, err)
		}
		if exists {
			outcomes = append(outcomes, MatchOutcome{MatchID: stub.ID, State: MatchStateSkipped, Reason: reasonExists})
			continue
		}
		pending = append(pending, stub)
	}

	results := make([]MatchOutcome, len(pending))
	workers := pool.New().WithMaxGoroutines(s.cfg.Concurrency)
	for i, stub := range pending {
		workers.Go(func() {
			results[i] = s.ingestOne(ctx, stub)
		})
	}
	workers.Wait()

	summary.Matches = append(outcomes, results...)
	summary.Status = IngestionStatusCompleted
	summary = s.finish(summary, started)

	s.logger.InfoContext(ctx, "ingestion finished",
		"date", summary.Date,
		"total", summary.Total,
		"duplicates", summary.Duplicates,
		"success", summary.Success,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	span.SetAttributes(
		attribute.Int("ingest.total", summary.Total),
		attribute.Int("ingest.duplicates", summary.Duplicates),
		attribute.Int("ingest.success", summary.Success),
		attribute.Int("ingest.failed", summary.Failed),
		attribute.Int("ingest.skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *IngestionService) ingestOne(ctx context.Context, stub match.Stub) (out MatchOutcome) {
	started := s.now()
	out = MatchOutcome{MatchID: stub.ID, State: MatchStatePending}
	defer func() {
		out.DurationMs = s.now().Sub(started).Milliseconds()
	}()

	out.State = MatchStateFetching
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.MatchTimeout)
	analysis, err := s.source.FetchMatchAnalysis(fetchCtx, stub.ID)
	cancel()
	if err != nil {
		out.State = MatchStateFailed
		out.Reason = s.classifyFetchError(ctx, stub.ID, err)
		return out
	}
	if analysis.Match.ID != stub.ID {
		out.State = MatchStateFailed
		out.Reason = reasonInvalidPayload
		s.logger.ErrorContext(ctx, "analysis returned for another match", "match_id", stub.ID, "payload_match_id", analysis.Match.ID)
		return out
	}
	out.State = MatchStateFetched

	if err := s.repo.Upsert(ctx, analysis); err != nil {
		out.State = MatchStateStoreFailed
		out.Reason = reasonStoreError
		s.logger.ErrorContext(ctx, "store match failed", "match_id", stub.ID, "error", err)
		return out
	}
	out.State = MatchStateStored
	s.logger.DebugContext(ctx, "match stored", "match_id", stub.ID, "league", analysis.Match.League)
	return out
}

func (s *IngestionService) classifyFetchError(ctx context.Context, matchID int64, err error) string {
	switch {
	case ctx.Err() != nil:
		s.logger.WarnContext(ctx, "analysis fetch cancelled", "match_id", matchID, "error", err)
		return reasonCancelled
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.WarnContext(ctx, "analysis fetch timed out", "match_id", matchID, "timeout", s.cfg.MatchTimeout.String())
		return reasonTimeout
	case errors.Is(err, ErrAnalysisUnavailable):
		s.logger.WarnContext(ctx, "analysis unavailable", "match_id", matchID, "error", err)
		return reasonAnalysisUnavailable
	case errors.Is(err, ErrInvalidPayload):
		s.logger.ErrorContext(ctx, "analysis payload rejected", "match_id", matchID, "error", err)
		return reasonInvalidPayload
	case errors.Is(err, ErrDependencyUnavailable):
		s.logger.ErrorContext(ctx, "analysis api unreachable", "match_id", matchID, "error", err)
		return reasonUpstreamUnavailable
	default:
		s.logger.ErrorContext(ctx, "analysis fetch failed", "match_id", matchID, "error", err)
		return reasonFetchError
	}
}

// finish derives the totals from the recorded outcomes.
func (s *IngestionService) finish(summary IngestionSummary, started time.Time) IngestionSummary {
	summary.DurationMs = s.now().Sub(started).Milliseconds()
	summary.Success, summary.Failed, summary.Skipped = 0, 0, 0
	for _, item := range summary.Matches {
		switch item.State {
		case MatchStateStored:
			summary.Success++
		case MatchStateSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary
}

func dedupeStubs(stubs []match.Stub) []match.Stub {
	if len(stubs) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(stubs))
	out := make([]match.Stub, 0, len(stubs))
	for _, stub := range stubs {
		if _, ok := seen[stub.ID]; ok {
			continue
		}
		seen[stub.ID] = struct{}{}
		out = append(out, stub)
	}
	return out
}
