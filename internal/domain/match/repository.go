package match

import (
	"context"
	"time"
)

// Repository persists analyses and match scores.
type Repository interface {
	Exists(ctx context.Context, matchID int64) (bool, error)
	Upsert(ctx context.Context, analysis Analysis) error
	GetScore(ctx context.Context, matchID int64) (Score, bool, error)
	UpdateScore(ctx context.Context, matchID int64, score Score) (bool, error)
	ListStaleScores(ctx context.Context, cutoff time.Time) ([]Match, error)
}

// Reader serves the stored data to publishers and reports.
type Reader interface {
	ListLeaguePredictions(ctx context.Context, date string, leagues []string) ([]PredictionView, error)
	ListHalfTimeGoalPicks(ctx context.Context, date string) ([]HalfTimeGoalPick, error)
	ListSettledResults(ctx context.Context, from, to string) ([]SettledResult, error)
}

// Source is the upstream analysis provider.
type Source interface {
	FetchMatchList(ctx context.Context, date string) ([]Stub, error)
	FetchMatchAnalysis(ctx context.Context, matchID int64) (Analysis, error)
	FetchMatchScore(ctx context.Context, matchID int64) (Score, error)
}
