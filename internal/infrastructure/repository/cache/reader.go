// Package cache decorates stored-data readers with an in-process TTL cache.
package cache

import (
	"context"
	"strings"

	"github.com/riskibarqy/match-digest/internal/domain/match"
	basecache "github.com/riskibarqy/match-digest/internal/platform/cache"
)

const (
	prefixPredictions = "predictions:"
	prefixHalfTime    = "halftime:"
)

// Reader caches the day's prediction lists, which every scheduled post
// re-reads. Settled results are always read through.
type Reader struct {
	next        match.Reader
	predictions *basecache.Store[[]match.PredictionView]
	halfTime    *basecache.Store[[]match.HalfTimeGoalPick]
}

func NewReader(next match.Reader, predictions *basecache.Store[[]match.PredictionView], halfTime *basecache.Store[[]match.HalfTimeGoalPick]) *Reader {
	return &Reader{next: next, predictions: predictions, halfTime: halfTime}
}

func (r *Reader) ListLeaguePredictions(ctx context.Context, date string, leagues []string) ([]match.PredictionView, error) {
	key := prefixPredictions + date + ":" + strings.Join(leagues, "|")
	items, err := r.predictions.GetOrLoad(ctx, key, func(ctx context.Context) ([]match.PredictionView, error) {
		items, err := r.next.ListLeaguePredictions(ctx, date, leagues)
		if err != nil {
			return nil, err
		}
		return append([]match.PredictionView(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]match.PredictionView(nil), items...), nil
}

func (r *Reader) ListHalfTimeGoalPicks(ctx context.Context, date string) ([]match.HalfTimeGoalPick, error) {
	items, err := r.halfTime.GetOrLoad(ctx, prefixHalfTime+date, func(ctx context.Context) ([]match.HalfTimeGoalPick, error) {
		items, err := r.next.ListHalfTimeGoalPicks(ctx, date)
		if err != nil {
			return nil, err
		}
		return append([]match.HalfTimeGoalPick(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]match.HalfTimeGoalPick(nil), items...), nil
}

func (r *Reader) ListSettledResults(ctx context.Context, from, to string) ([]match.SettledResult, error) {
	return r.next.ListSettledResults(ctx, from, to)
}

// Invalidate drops every cached list. It runs after new analyses are stored.
func (r *Reader) Invalidate(ctx context.Context) {
	r.predictions.DeletePrefix(ctx, prefixPredictions)
	r.halfTime.DeletePrefix(ctx, prefixHalfTime)
}
