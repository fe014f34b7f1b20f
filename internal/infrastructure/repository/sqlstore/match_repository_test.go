package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/match-digest/internal/domain/match"
)

func TestMatchRepository_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(newTestDB(t))
	analysis := sampleAnalysis(4101)

	if err := repo.Upsert(ctx, analysis); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	first := snapshotRows(t, repo, analysis.Match.ID)

	if err := repo.Upsert(ctx, analysis); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	second := snapshotRows(t, repo, analysis.Match.ID)

	want := map[string]int{
		"matches":              1,
		"predictions":          1,
		"goal_stats":           1,
		"percentages":          1,
		"last_10_matches":      1,
		"odds":                 2,
		"corner_odds":          1,
		"double_chance_odds":   1,
		"score_odds":           2,
		"match_statistics":     2,
		"h2h_matches":          1,
		"h2h_statistics":       1,
		"poisson_distribution": 1,
		"match_scores":         1,
	}
	for table, count := range want {
		if second[table] != count {
			t.Fatalf("unexpected %s rows after re-ingest: got=%d want=%d", table, second[table], count)
		}
		if first[table] != second[table] {
			t.Fatalf("row count for %s drifted: first=%d second=%d", table, first[table], second[table])
		}
	}

	var closing float64
	if err := repo.db.Get(&closing, "SELECT closing_goalline FROM odds WHERE match_id = ? AND bookmaker = ?", analysis.Match.ID, "Nesine"); err != nil {
		t.Fatalf("read closing goal line: %v", err)
	}
	if closing != 2.75 {
		t.Fatalf("unexpected closing goal line: %v", closing)
	}
}

func snapshotRows(t *testing.T, repo *MatchRepository, matchID int64) map[string]int {
	t.Helper()

	out := map[string]int{"matches": countRows(t, repo.db, "matches", matchID)}
	for _, table := range childTables {
		out[table] = countRows(t, repo.db, table, matchID)
	}
	return out
}

func TestMatchRepository_UpsertReplacesChildren(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(newTestDB(t))
	analysis := sampleAnalysis(4102)
	if err := repo.Upsert(ctx, analysis); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	if _, err := repo.UpdateScore(ctx, analysis.Match.ID, match.Score{Home: match.IntPtr(2), Away: match.IntPtr(1)}); err != nil {
		t.Fatalf("update score: %v", err)
	}

	analysis.Odds = analysis.Odds[:1]
	analysis.Prediction.Corners = ""
	analysis.Score = nil
	if err := repo.Upsert(ctx, analysis); err != nil {
		t.Fatalf("re-ingest: %v", err)
	}

	if got := countRows(t, repo.db, "odds", analysis.Match.ID); got != 1 {
		t.Fatalf("expected stale bookmaker to be removed, got %d odds rows", got)
	}
	var corner string
	if err := repo.db.Get(&corner, "SELECT corner_prediction FROM predictions WHERE match_id = ?", analysis.Match.ID); err != nil {
		t.Fatalf("read corner prediction: %v", err)
	}
	if corner != "" {
		t.Fatalf("expected corner prediction replaced, got %q", corner)
	}

	if _, found, err := repo.GetScore(ctx, analysis.Match.ID); err != nil || found {
		t.Fatalf("expected score cleared by a payload without one: found=%v err=%v", found, err)
	}
}

func TestMatchRepository_UpsertRowsDependOnlyOnLatestPayload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	withScore := sampleAnalysis(4104)
	noScore := sampleAnalysis(4104)
	noScore.Score = nil

	replayed := NewMatchRepository(newTestDB(t))
	for _, a := range []match.Analysis{withScore, noScore} {
		if err := replayed.Upsert(ctx, a); err != nil {
			t.Fatalf("replayed upsert: %v", err)
		}
	}

	fresh := NewMatchRepository(newTestDB(t))
	if err := fresh.Upsert(ctx, noScore); err != nil {
		t.Fatalf("fresh upsert: %v", err)
	}

	got := snapshotRows(t, replayed, noScore.Match.ID)
	want := snapshotRows(t, fresh, noScore.Match.ID)
	for table, count := range want {
		if got[table] != count {
			t.Fatalf("%s rows depend on ingestion history: replayed=%d fresh=%d", table, got[table], count)
		}
	}
	if want["match_scores"] != 0 {
		t.Fatalf("expected no score row for a payload without a score, got %d", want["match_scores"])
	}
}

func TestMatchRepository_UpsertRollsBackOnChildFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMatchRepository(db)

	if _, err := db.Exec(`CREATE TRIGGER fail_goal_stats BEFORE INSERT ON goal_stats BEGIN SELECT RAISE(ABORT, 'boom'); END;`); err != nil {
		t.Fatalf("create failing trigger: %v", err)
	}

	analysis := sampleAnalysis(4103)
	err := repo.Upsert(ctx, analysis)
	var writeErr *match.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if writeErr.MatchID != analysis.Match.ID || writeErr.Step != "goal_stats" {
		t.Fatalf("unexpected write error: %+v", writeErr)
	}

	exists, err := repo.Exists(ctx, analysis.Match.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("expected match row rolled back")
	}
	if got := countRows(t, db, "predictions", analysis.Match.ID); got != 0 {
		t.Fatalf("expected predictions rolled back, got %d", got)
	}
}

func TestMatchRepository_UpsertRequiresMatchID(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(newTestDB(t))
	err := repo.Upsert(context.Background(), match.Analysis{})
	if !errors.Is(err, match.ErrMissingMatchID) {
		t.Fatalf("expected ErrMissingMatchID, got %v", err)
	}
}

func TestMatchRepository_UpdateScore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(newTestDB(t))

	withScore := sampleAnalysis(4104)
	withoutScore := sampleAnalysis(4105)
	withoutScore.Score = nil
	for _, a := range []match.Analysis{withScore, withoutScore} {
		if err := repo.Upsert(ctx, a); err != nil {
			t.Fatalf("seed match %d: %v", a.Match.ID, err)
		}
	}

	final := match.Score{Home: match.IntPtr(3), Away: match.IntPtr(1), HalfTimeHome: match.IntPtr(1), HalfTimeAway: match.IntPtr(0)}

	t.Run("changes placeholder", func(t *testing.T) {
		changed, err := repo.UpdateScore(ctx, withScore.Match.ID, final)
		if err != nil {
			t.Fatalf("update score: %v", err)
		}
		if !changed {
			t.Fatalf("expected placeholder to change")
		}
		got, _, err := repo.GetScore(ctx, withScore.Match.ID)
		if err != nil {
			t.Fatalf("get score: %v", err)
		}
		if !got.Equal(final) {
			t.Fatalf("unexpected stored score: %s (%s)", got.FullTime(), got.HalfTime())
		}
		if n := countRows(t, repo.db, "match_scores", withScore.Match.ID); n != 1 {
			t.Fatalf("expected score row updated in place, got %d rows", n)
		}
	})

	t.Run("same score is unchanged", func(t *testing.T) {
		changed, err := repo.UpdateScore(ctx, withScore.Match.ID, final)
		if err != nil {
			t.Fatalf("update score: %v", err)
		}
		if changed {
			t.Fatalf("expected identical score to be a no-op")
		}
	})

	t.Run("inserts missing score row", func(t *testing.T) {
		if _, found, _ := repo.GetScore(ctx, withoutScore.Match.ID); found {
			t.Fatalf("expected no score row before update")
		}
		changed, err := repo.UpdateScore(ctx, withoutScore.Match.ID, final)
		if err != nil {
			t.Fatalf("update score: %v", err)
		}
		if !changed {
			t.Fatalf("expected new score row")
		}
		if got := countRows(t, repo.db, "match_scores", withoutScore.Match.ID); got != 1 {
			t.Fatalf("expected one score row, got %d", got)
		}
	})
}

func TestMatchRepository_ListStaleScores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(newTestDB(t))
	loc := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, loc)
	cutoff := now.Add(-2 * time.Hour)

	seed := []struct {
		id    int64
		date  string
		clock string
		score *match.Score
	}{
		{id: 1, date: "2024-05-01", clock: "15:00", score: &match.Score{Home: match.IntPtr(0), Away: match.IntPtr(0), HalfTimeHome: match.IntPtr(0), HalfTimeAway: match.IntPtr(0)}},
		{id: 2, date: "2024-05-01", clock: "17:00", score: &match.Score{Home: match.IntPtr(0), Away: match.IntPtr(0), HalfTimeHome: match.IntPtr(0), HalfTimeAway: match.IntPtr(0)}},
		{id: 3, date: "2024-05-01", clock: "12:00", score: &match.Score{Home: match.IntPtr(2), Away: match.IntPtr(0), HalfTimeHome: match.IntPtr(1), HalfTimeAway: match.IntPtr(0)}},
		{id: 4, date: "2024-04-30", clock: "21:00", score: &match.Score{}},
		{id: 5, date: "2024-05-01", clock: "13:00", score: &match.Score{Home: match.IntPtr(0), Away: match.IntPtr(0), HalfTimeHome: match.IntPtr(0), HalfTimeAway: match.IntPtr(0)}},
	}
	for _, s := range seed {
		a := sampleAnalysis(s.id)
		a.Match.Date, a.Match.Time, a.Score = s.date, s.clock, s.score
		if err := repo.Upsert(ctx, a); err != nil {
			t.Fatalf("seed match %d: %v", s.id, err)
		}
	}

	got, err := repo.ListStaleScores(ctx, cutoff)
	if err != nil {
		t.Fatalf("list stale scores: %v", err)
	}

	wantIDs := []int64{5, 1, 4}
	if len(got) != len(wantIDs) {
		t.Fatalf("unexpected stale matches: got=%+v", got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("unexpected stale match at %d: got=%d want=%d", i, got[i].ID, id)
		}
	}
}
