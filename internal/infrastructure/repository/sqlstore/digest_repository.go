package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	qb "github.com/riskibarqy/match-digest/internal/platform/querybuilder"
)

var predictionColumns = []string{
	"p.over_prediction",
	"p.btts_prediction",
	"p.match_result_prediction",
	"p.ht_goal_prediction",
	"p.corner_prediction",
	"p.risky_prediction",
}

// DigestRepository serves stored matches to the publisher and reports.
type DigestRepository struct {
	db     *sqlx.DB
	format qb.Format
}

func NewDigestRepository(db *sqlx.DB) *DigestRepository {
	return &DigestRepository{db: db, format: qb.FormatForDriver(db.DriverName())}
}

type predictionViewRow struct {
	matchTableModel
	OverPrediction        sql.NullString `db:"over_prediction"`
	BTTSPrediction        sql.NullString `db:"btts_prediction"`
	MatchResultPrediction sql.NullString `db:"match_result_prediction"`
	HTGoalPrediction      sql.NullString `db:"ht_goal_prediction"`
	CornerPrediction      sql.NullString `db:"corner_prediction"`
	RiskyPrediction       sql.NullString `db:"risky_prediction"`
}

func (r predictionViewRow) prediction() match.Prediction {
	return match.Prediction{
		OverUnder:      r.OverPrediction.String,
		BothTeamsScore: r.BTTSPrediction.String,
		MatchResult:    r.MatchResultPrediction.String,
		HalfTimeGoals:  r.HTGoalPrediction.String,
		Corners:        r.CornerPrediction.String,
		Risky:          r.RiskyPrediction.String,
	}
}

// ListLeaguePredictions returns the matches of date in one of leagues
// (case-insensitive) that carry a prediction, ordered by kickoff.
func (r *DigestRepository) ListLeaguePredictions(ctx context.Context, date string, leagues []string) ([]match.PredictionView, error) {
	lowered := make([]string, 0, len(leagues))
	for _, league := range leagues {
		if league = strings.ToLower(strings.TrimSpace(league)); league != "" {
			lowered = append(lowered, league)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select(append(append([]string{}, matchColumns...), predictionColumns...)...).
		From("matches m").
		Join("INNER JOIN predictions p ON p.match_id = m.match_id").
		Where(
			qb.Eq("m.match_date", date),
			qb.InStrings("LOWER(m.league)", lowered),
		).
		OrderBy("m.match_time", "m.match_id").
		Format(r.format).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build league predictions query: %w", err)
	}

	var rows []predictionViewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select league predictions: %w", err)
	}

	out := make([]match.PredictionView, 0, len(rows))
	for _, row := range rows {
		prediction := row.prediction()
		if prediction.Empty() {
			continue
		}
		out = append(out, match.PredictionView{Match: row.toDomain(), Prediction: prediction})
	}
	return out, nil
}

type halfTimePickRow struct {
	matchTableModel
	HTGoalPrediction string         `db:"ht_goal_prediction"`
	Over05HTPercent  sql.NullString `db:"over_05_ht_percent"`
	Over15HTPercent  sql.NullString `db:"over_15_ht_percent"`
}

// ListHalfTimeGoalPicks returns the matches of date with a half-time goal
// prediction and their half-time over 0.5 and 1.5 percentages.
func (r *DigestRepository) ListHalfTimeGoalPicks(ctx context.Context, date string) ([]match.HalfTimeGoalPick, error) {
	columns := append(append([]string{}, matchColumns...), "p.ht_goal_prediction", "pc.over_05_ht_percent", "pc.over_15_ht_percent")
	query, args, err := qb.Select(columns...).
		From("matches m").
		Join("INNER JOIN predictions p ON p.match_id = m.match_id").
		Join("LEFT JOIN percentages pc ON pc.match_id = m.match_id").
		Where(
			qb.Eq("m.match_date", date),
			qb.Expr("TRIM(p.ht_goal_prediction) <> ''"),
		).
		OrderBy("m.match_time", "m.match_id").
		Format(r.format).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build half-time picks query: %w", err)
	}

	var rows []halfTimePickRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select half-time picks: %w", err)
	}

	out := make([]match.HalfTimeGoalPick, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.HalfTimeGoalPick{
			Match:      row.toDomain(),
			Prediction: strings.TrimSpace(row.HTGoalPrediction),
			Over05:     parsePercent(row.Over05HTPercent.String),
			Over15:     parsePercent(row.Over15HTPercent.String),
		})
	}
	return out, nil
}

type settledResultRow struct {
	predictionViewRow
	HomeScore   sql.NullInt64 `db:"home_score"`
	AwayScore   sql.NullInt64 `db:"away_score"`
	HTHomeScore sql.NullInt64 `db:"ht_home_score"`
	HTAwayScore sql.NullInt64 `db:"ht_away_score"`
}

// ListSettledResults returns matches dated from..to (inclusive) with a known
// full-time score, together with their predictions.
func (r *DigestRepository) ListSettledResults(ctx context.Context, from, to string) ([]match.SettledResult, error) {
	columns := append(append([]string{}, matchColumns...), predictionColumns...)
	columns = append(columns, "s.home_score", "s.away_score", "s.ht_home_score", "s.ht_away_score")
	query, args, err := qb.Select(columns...).
		From("matches m").
		Join("INNER JOIN match_scores s ON s.match_id = m.match_id").
		Join("LEFT JOIN predictions p ON p.match_id = m.match_id").
		Where(
			qb.Expr("m.match_date >= ?", from),
			qb.Expr("m.match_date <= ?", to),
			qb.IsNotNull("s.home_score"),
			qb.IsNotNull("s.away_score"),
		).
		OrderBy("m.match_date", "m.match_time", "m.match_id").
		Format(r.format).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build settled results query: %w", err)
	}

	var rows []settledResultRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select settled results: %w", err)
	}

	out := make([]match.SettledResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.SettledResult{
			Match:      row.toDomain(),
			Prediction: row.prediction(),
			Score: matchScoreTableModel{
				HomeScore:   row.HomeScore,
				AwayScore:   row.AwayScore,
				HTHomeScore: row.HTHomeScore,
				HTAwayScore: row.HTAwayScore,
			}.toDomain(),
		})
	}
	return out, nil
}

// parsePercent reads "64%", "64" or "63.5 %" as a whole percentage; anything
// else is 0.
func parsePercent(raw string) int {
	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}
