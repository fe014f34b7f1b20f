package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/infrastructure/repository/sqlstore"
	matchmock "github.com/riskibarqy/match-digest/internal/mocks/domain/match"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

// scoreSource answers FetchMatchScore from a map and tracks overlapping calls.
type scoreSource struct {
	stubSource
	scores map[int64]match.Score
	errs   map[int64]error
	pause  time.Duration

	active atomic.Int32
	peak   atomic.Int32
	mu     sync.Mutex
	calls  []int64
}

func (s *scoreSource) FetchMatchScore(_ context.Context, matchID int64) (match.Score, error) {
	current := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	s.mu.Lock()
	s.calls = append(s.calls, matchID)
	s.mu.Unlock()

	if s.pause > 0 {
		time.Sleep(s.pause)
	}
	if err := s.errs[matchID]; err != nil {
		return match.Score{}, err
	}
	return s.scores[matchID], nil
}

func finalScore(home, away, htHome, htAway int) match.Score {
	return match.Score{
		Home:         match.IntPtr(home),
		Away:         match.IntPtr(away),
		HalfTimeHome: match.IntPtr(htHome),
		HalfTimeAway: match.IntPtr(htAway),
	}
}

func TestReconcileService_UpdatesChangedScoresUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := matchmock.NewSource(t)
	repo := matchmock.NewRepository(t)

	now := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)
	stale := []match.Match{{ID: 1, HomeTeam: "Inter", AwayTeam: "Torino"}, {ID: 2}, {ID: 3}}
	placeholder := finalScore(0, 0, 0, 0)

	repo.On("ListStaleScores", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool { return cutoff.Equal(now.Add(-2 * time.Hour)) })).Return(stale, nil).Once()

	source.On("FetchMatchScore", mock.Anything, int64(1)).Return(finalScore(2, 1, 1, 0), nil).Once()
	repo.On("GetScore", mock.Anything, int64(1)).Return(placeholder, true, nil).Once()
	repo.On("UpdateScore", mock.Anything, int64(1), finalScore(2, 1, 1, 0)).Return(true, nil).Once()

	source.On("FetchMatchScore", mock.Anything, int64(2)).Return(placeholder, nil).Once()
	repo.On("GetScore", mock.Anything, int64(2)).Return(placeholder, true, nil).Once()
	repo.On("UpdateScore", mock.Anything, int64(2), placeholder).Return(false, nil).Once()

	source.On("FetchMatchScore", mock.Anything, int64(3)).Return(match.Score{}, nil).Once()

	service := NewReconcileService(source, repo, ReconcileConfig{BatchSize: 10, GracePeriod: 2 * time.Hour}, logging.NewNop())
	service.now = func() time.Time { return now }

	summary, err := service.Run(ctx)
	if err != nil {
		t.Fatalf("run reconcile: %v", err)
	}
	if summary.Total != 3 || summary.Fetched != 3 || summary.Updated != 1 || summary.Unchanged != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Batches != 1 || summary.Cutoff != "2024-05-01 20:00" {
		t.Fatalf("unexpected batches or cutoff: %+v", summary)
	}
	repo.AssertNotCalled(t, "UpdateScore", mock.Anything, int64(3), mock.Anything)
}

func TestReconcileService_RunsInBatches(t *testing.T) {
	t.Parallel()

	stale := make([]match.Match, 0, 23)
	scores := make(map[int64]match.Score, 23)
	for id := int64(1); id <= 23; id++ {
		stale = append(stale, match.Match{ID: id})
		scores[id] = finalScore(1, 0, 0, 0)
	}
	source := &scoreSource{scores: scores, errs: map[int64]error{7: errors.New("timeout")}, pause: 5 * time.Millisecond}
	repo := &staleRepo{memoryRepo: newMemoryRepo(), stale: stale}

	service := NewReconcileService(source, repo, ReconcileConfig{BatchSize: 10}, logging.NewNop())
	summary, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("run reconcile: %v", err)
	}

	if summary.Batches != 3 {
		t.Fatalf("expected 3 batches, got %d", summary.Batches)
	}
	if peak := source.peak.Load(); peak > 10 {
		t.Fatalf("expected at most one batch in flight, peak=%d", peak)
	}
	if summary.Failed != 1 || summary.Updated != 22 || summary.Total != 23 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestReconcileService_ListFailure(t *testing.T) {
	t.Parallel()

	source := matchmock.NewSource(t)
	repo := matchmock.NewRepository(t)
	repo.On("ListStaleScores", mock.Anything, mock.Anything).Return(nil, errors.New("no such table")).Once()

	service := NewReconcileService(source, repo, ReconcileConfig{}, logging.NewNop())
	if _, err := service.Run(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestReconcileService_TargetsOnlyMatchesPastGracePeriod(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := sqlstore.Config{Driver: sqlstore.DriverSQLite, URL: filepath.Join(t.TempDir(), "reconcile.db")}
	if err := sqlstore.Migrate(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := sqlstore.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := sqlstore.NewMatchRepository(db)

	istanbul := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, istanbul)

	threeHoursAgo := analysisFor(1)
	threeHoursAgo.Match.Time = "15:00"
	oneHourAgo := analysisFor(2)
	oneHourAgo.Match.Time = "17:00"
	for _, a := range []match.Analysis{threeHoursAgo, oneHourAgo} {
		if err := repo.Upsert(ctx, a); err != nil {
			t.Fatalf("seed match %d: %v", a.Match.ID, err)
		}
	}

	source := &scoreSource{scores: map[int64]match.Score{1: finalScore(3, 1, 2, 0), 2: finalScore(1, 1, 0, 0)}}
	service := NewReconcileService(source, repo, ReconcileConfig{Location: istanbul}, logging.NewNop())
	service.now = func() time.Time { return now }

	summary, err := service.Run(ctx)
	if err != nil {
		t.Fatalf("run reconcile: %v", err)
	}
	if summary.Total != 1 || summary.Updated != 1 {
		t.Fatalf("expected only the 3h-old match reconciled: %+v", summary)
	}
	if len(source.calls) != 1 || source.calls[0] != 1 {
		t.Fatalf("unexpected fetched matches: %v", source.calls)
	}

	got, _, err := repo.GetScore(ctx, 1)
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if got.FullTime() != "3-1" || got.HalfTime() != "2-0" {
		t.Fatalf("unexpected stored score: %+v", got)
	}
	untouched, _, err := repo.GetScore(ctx, 2)
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if !untouched.IsPlaceholder() {
		t.Fatalf("expected 1h-old match untouched, got %+v", untouched)
	}
}

type staleRepo struct {
	*memoryRepo
	stale []match.Match
}

func (r *staleRepo) ListStaleScores(context.Context, time.Time) ([]match.Match, error) {
	return r.stale, nil
}

func (r *staleRepo) UpdateScore(context.Context, int64, match.Score) (bool, error) {
	return true, nil
}
