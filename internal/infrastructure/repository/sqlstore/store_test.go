package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-digest/internal/domain/match"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := Config{Driver: DriverSQLite, URL: filepath.Join(t.TempDir(), "matches.db")}
	if err := Migrate(cfg); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if _, err := EnsureOddsColumns(context.Background(), db); err != nil {
		t.Fatalf("ensure odds columns: %v", err)
	}
	return db
}

func floatPtr(v float64) *float64 {
	return &v
}

func sampleAnalysis(id int64) match.Analysis {
	return match.Analysis{
		Match: match.Match{
			ID:       id,
			Date:     "2024-05-01",
			Time:     "20:45",
			League:   "Italian Serie A",
			HomeTeam: "Inter",
			AwayTeam: "Torino",
			Stadium:  "San Siro",
			Weather:  "Clear 18C",
		},
		Prediction: &match.Prediction{
			OverUnder:      "2.5 Over",
			BothTeamsScore: "BTTS Yes",
			MatchResult:    "1",
			HalfTimeGoals:  "0.5 Over",
			Corners:        "9.5 Over",
		},
		Goals: &match.GoalExpectation{HomeGoals: floatPtr(1.9), AwayGoals: floatPtr(0.8)},
		Percentages: &match.PercentageBreakdown{
			HomeGoal:       "82%",
			AwayGoal:       "55%",
			HalfTimeOver05: "71%",
			HalfTimeOver15: "38%",
		},
		Form: &match.FormSummary{Home: "WWDWL", Away: "LDLWW"},
		Odds: []match.OddsQuote{
			{
				Bookmaker: "Nesine",
				Opening:   match.OddsSide{Home: floatPtr(1.55), Draw: floatPtr(4.1), Away: floatPtr(5.5), GoalLine: floatPtr(2.5)},
				Closing:   match.OddsSide{Home: floatPtr(1.5), Draw: floatPtr(4.2), Away: floatPtr(6.0), GoalLine: floatPtr(2.75)},
			},
			{
				Bookmaker: "Bet365",
				Opening:   match.OddsSide{Home: floatPtr(1.57)},
				Closing:   match.OddsSide{Home: floatPtr(1.52)},
			},
		},
		CornerOdds:   []match.CornerOdds{{Bookmaker: "Nesine", OverValue: floatPtr(1.8), OverLine: floatPtr(9.5), UnderValue: floatPtr(1.9)}},
		DoubleChance: []match.DoubleChanceOdds{{Bookmaker: "Nesine", HomeDraw: floatPtr(1.1), HomeAway: floatPtr(1.2), AwayDraw: floatPtr(2.3)}},
		ScoreOdds: []match.ScoreOdds{
			{Bookmaker: "Nesine", ScoreType: "1-0", Value: 7.5},
			{Bookmaker: "Nesine", ScoreType: "2-0", Value: 8},
		},
		Statistics: []match.TeamStatistics{
			{TeamType: match.TeamTypeHome, Over25: match.IntPtr(6), BTTS: match.IntPtr(4)},
			{TeamType: match.TeamTypeAway, Over25: match.IntPtr(3), BTTS: match.IntPtr(5)},
		},
		H2HMatches: []match.HeadToHeadMatch{
			{GameDate: "2023-10-01", League: "Serie A", HomeTeam: "Torino", AwayTeam: "Inter", Score: "0-3", HalfTimeScore: "0-1"},
		},
		H2HStats: &match.HeadToHeadStatistics{TotalMatches: match.IntPtr(10), HomeWins: match.IntPtr(7)},
		Poisson: []match.PoissonDistribution{
			{Type: "home", Goals: [6]*float64{floatPtr(0.15), floatPtr(0.28), floatPtr(0.27), floatPtr(0.17), floatPtr(0.08), floatPtr(0.03)}},
		},
		Score: &match.Score{Home: match.IntPtr(0), Away: match.IntPtr(0), HalfTimeHome: match.IntPtr(0), HalfTimeAway: match.IntPtr(0)},
	}
}

func countRows(t *testing.T, db *sqlx.DB, table string, matchID int64) int {
	t.Helper()

	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table+" WHERE match_id = ?", matchID); err != nil {
		t.Fatalf("count %s rows: %v", table, err)
	}
	return n
}
