package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/match-digest/internal/domain/match"
	matchmock "github.com/riskibarqy/match-digest/internal/mocks/domain/match"
	basecache "github.com/riskibarqy/match-digest/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func newTestReader(next match.Reader) *Reader {
	return NewReader(next,
		basecache.NewStore[[]match.PredictionView](time.Minute),
		basecache.NewStore[[]match.HalfTimeGoalPick](time.Minute),
	)
}

func TestReader_CachesPredictionsPerDateAndLeagues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := matchmock.NewReader(t)
	leagues := []string{"Italian Serie A"}
	next.On("ListLeaguePredictions", mock.Anything, "2024-05-01", leagues).Return([]match.PredictionView{
		{Match: match.Match{ID: 1}},
	}, nil).Once()
	next.On("ListLeaguePredictions", mock.Anything, "2024-05-02", leagues).Return(nil, nil).Once()

	reader := newTestReader(next)
	for i := 0; i < 3; i++ {
		views, err := reader.ListLeaguePredictions(ctx, "2024-05-01", leagues)
		if err != nil {
			t.Fatalf("list predictions: %v", err)
		}
		if len(views) != 1 || views[0].Match.ID != 1 {
			t.Fatalf("unexpected views: %+v", views)
		}
		views[0].Match.ID = 99
	}
	if _, err := reader.ListLeaguePredictions(ctx, "2024-05-02", leagues); err != nil {
		t.Fatalf("list predictions other date: %v", err)
	}
}

func TestReader_InvalidateReloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := matchmock.NewReader(t)
	next.On("ListHalfTimeGoalPicks", mock.Anything, "2024-05-01").Return([]match.HalfTimeGoalPick{{Over05: 71}}, nil).Twice()

	reader := newTestReader(next)
	if _, err := reader.ListHalfTimeGoalPicks(ctx, "2024-05-01"); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if _, err := reader.ListHalfTimeGoalPicks(ctx, "2024-05-01"); err != nil {
		t.Fatalf("cached list: %v", err)
	}
	reader.Invalidate(ctx)
	if _, err := reader.ListHalfTimeGoalPicks(ctx, "2024-05-01"); err != nil {
		t.Fatalf("reloaded list: %v", err)
	}
}

func TestReader_SettledResultsReadThrough(t *testing.T) {
	t.Parallel()

	next := matchmock.NewReader(t)
	next.On("ListSettledResults", mock.Anything, "2024-05-01", "2024-05-07").Return(nil, nil).Twice()

	reader := newTestReader(next)
	for i := 0; i < 2; i++ {
		if _, err := reader.ListSettledResults(context.Background(), "2024-05-01", "2024-05-07"); err != nil {
			t.Fatalf("list settled: %v", err)
		}
	}
}
