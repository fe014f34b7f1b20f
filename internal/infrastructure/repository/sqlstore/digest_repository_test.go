package sqlstore

import (
	"context"
	"testing"

	"github.com/riskibarqy/match-digest/internal/domain/match"
)

func seedDigestMatches(t *testing.T, repo *MatchRepository) {
	t.Helper()

	ctx := context.Background()

	late := sampleAnalysis(501)
	late.Match.Time = "21:00"
	late.Match.League = "ITALIAN SERIE A"

	early := sampleAnalysis(502)
	early.Match.Time = "18:30"
	early.Match.League = "English Premier League"
	early.Percentages.HalfTimeOver05 = "64.6 %"
	early.Percentages.HalfTimeOver15 = "n/a"

	blank := sampleAnalysis(503)
	blank.Match.League = "Italian Serie A"
	blank.Prediction = &match.Prediction{}

	otherLeague := sampleAnalysis(504)
	otherLeague.Match.League = "Dutch Eredivisie"
	otherLeague.Prediction.HalfTimeGoals = " "

	otherDay := sampleAnalysis(505)
	otherDay.Match.Date = "2024-05-02"

	for _, a := range []match.Analysis{late, early, blank, otherLeague, otherDay} {
		if err := repo.Upsert(ctx, a); err != nil {
			t.Fatalf("seed match %d: %v", a.Match.ID, err)
		}
	}
}

func TestDigestRepository_ListLeaguePredictions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	seedDigestMatches(t, NewMatchRepository(db))
	reader := NewDigestRepository(db)

	got, err := reader.ListLeaguePredictions(context.Background(), "2024-05-01", []string{"italian serie a", "English Premier League"})
	if err != nil {
		t.Fatalf("list league predictions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected prediction count: got=%d want=2 (%+v)", len(got), got)
	}
	if got[0].Match.ID != 502 || got[1].Match.ID != 501 {
		t.Fatalf("expected kickoff order 502, 501; got %d, %d", got[0].Match.ID, got[1].Match.ID)
	}
	if got[1].Prediction.MatchResult != "1" {
		t.Fatalf("unexpected prediction: %+v", got[1].Prediction)
	}

	none, err := reader.ListLeaguePredictions(context.Background(), "2024-05-01", nil)
	if err != nil {
		t.Fatalf("list without leagues: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no predictions without leagues, got %d", len(none))
	}
}

func TestDigestRepository_ListHalfTimeGoalPicks(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	seedDigestMatches(t, NewMatchRepository(db))
	reader := NewDigestRepository(db)

	got, err := reader.ListHalfTimeGoalPicks(context.Background(), "2024-05-01")
	if err != nil {
		t.Fatalf("list half-time picks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected pick count: got=%d want=2 (%+v)", len(got), got)
	}

	first := got[0]
	if first.Match.ID != 502 || first.Prediction != "0.5 Over" {
		t.Fatalf("unexpected first pick: %+v", first)
	}
	if first.Over05 != 65 || first.Over15 != 0 {
		t.Fatalf("unexpected parsed percentages: over05=%d over15=%d", first.Over05, first.Over15)
	}
	if got[1].Over05 != 71 || got[1].Over15 != 38 {
		t.Fatalf("unexpected parsed percentages: over05=%d over15=%d", got[1].Over05, got[1].Over15)
	}
}

func TestDigestRepository_ListSettledResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	seedDigestMatches(t, repo)

	unknown := sampleAnalysis(506)
	unknown.Score = &match.Score{}
	if err := repo.Upsert(ctx, unknown); err != nil {
		t.Fatalf("seed unknown score: %v", err)
	}
	if _, err := repo.UpdateScore(ctx, 501, match.Score{Home: match.IntPtr(2), Away: match.IntPtr(2)}); err != nil {
		t.Fatalf("update score: %v", err)
	}

	got, err := NewDigestRepository(db).ListSettledResults(ctx, "2024-05-01", "2024-05-01")
	if err != nil {
		t.Fatalf("list settled results: %v", err)
	}
	for _, item := range got {
		if item.Match.ID == 506 || item.Match.ID == 505 {
			t.Fatalf("unexpected settled match %d", item.Match.ID)
		}
	}
	var found bool
	for _, item := range got {
		if item.Match.ID == 501 {
			found = true
			if item.Score.FullTime() != "2-2" || item.Prediction.MatchResult != "1" {
				t.Fatalf("unexpected settled result: %+v", item)
			}
		}
	}
	if !found {
		t.Fatalf("expected match 501 in settled results")
	}
}

func TestParsePercent(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"64%":    64,
		" 38 % ": 38,
		"63.5%":  64,
		"":       0,
		"n/a":    0,
	}
	for raw, want := range cases {
		if got := parsePercent(raw); got != want {
			t.Fatalf("parsePercent(%q) = %d, want %d", raw, got, want)
		}
	}
}
