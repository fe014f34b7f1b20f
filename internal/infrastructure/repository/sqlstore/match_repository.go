package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	qb "github.com/riskibarqy/match-digest/internal/platform/querybuilder"
)

// childTables are cleared before an analysis is written so a re-ingested match
// carries exactly the rows of its latest payload, score included.
var childTables = []string{
	"match_scores",
	"predictions",
	"goal_stats",
	"percentages",
	"last_10_matches",
	"odds",
	"corner_odds",
	"double_chance_odds",
	"score_odds",
	"match_statistics",
	"h2h_matches",
	"h2h_statistics",
	"poisson_distribution",
}

var matchUpdateColumns = []string{
	"match_date",
	"match_time",
	"league",
	"home_team",
	"away_team",
	"stadium",
	"weather",
}

var matchColumns = []string{
	"m.match_id",
	"m.match_date",
	"m.match_time",
	"m.league",
	"m.home_team",
	"m.away_team",
	"m.stadium",
	"m.weather",
}

type MatchRepository struct {
	db     *sqlx.DB
	format qb.Format
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db, format: qb.FormatForDriver(db.DriverName())}
}

func (r *MatchRepository) Exists(ctx context.Context, matchID int64) (bool, error) {
	query, args, err := qb.Select("match_id").From("matches").
		Where(qb.Eq("match_id", matchID)).
		Limit(1).
		Format(r.format).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build match exists query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check match exists: %w", err)
	}
	return true, nil
}

// Upsert writes the match row and every child row of analysis in one
// transaction. Any failure rolls the whole match back.
func (r *MatchRepository) Upsert(ctx context.Context, analysis match.Analysis) error {
	matchID := analysis.Match.ID
	fail := func(step string, err error) error {
		return &match.WriteError{MatchID: matchID, Step: step, Err: err}
	}
	if matchID <= 0 {
		return fail("validate", match.ErrMissingMatchID)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fail("begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	suffix := qb.OnConflictUpdate([]string{"match_id"}, matchUpdateColumns) + ", updated_at = CURRENT_TIMESTAMP"
	query, args, err := qb.InsertModelFormat(r.format, "matches", matchModel(analysis.Match), suffix)
	if err != nil {
		return fail("build matches", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fail("matches", err)
	}

	for _, table := range childTables {
		query, args, err := qb.DeleteFrom(table).
			Where(qb.Eq("match_id", matchID)).
			Format(r.format).
			ToSQL()
		if err != nil {
			return fail("build clear "+table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fail("clear "+table, err)
		}
	}

	for _, row := range childRows(analysis) {
		query, args, err := qb.UpsertModel(r.format, row.table, row.model, row.conflict...)
		if err != nil {
			return fail("build "+row.table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fail(row.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}
	return nil
}

func (r *MatchRepository) GetScore(ctx context.Context, matchID int64) (match.Score, bool, error) {
	return r.getScore(ctx, r.db, matchID)
}

// UpdateScore writes score when it differs from the stored one, inserting the
// score row if the match has none. It reports whether anything changed.
func (r *MatchRepository) UpdateScore(ctx context.Context, matchID int64, score match.Score) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx for score update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, found, err := r.getScore(ctx, tx, matchID)
	if err != nil {
		return false, err
	}
	if found && current.Equal(score) {
		return false, nil
	}

	row := scoreModel(matchID, score)
	var query string
	var args []any
	if found {
		query, args, err = qb.Update("match_scores").
			Set("home_score", row.HomeScore).
			Set("away_score", row.AwayScore).
			Set("ht_home_score", row.HTHomeScore).
			Set("ht_away_score", row.HTAwayScore).
			Where(qb.Eq("match_id", matchID)).
			Format(r.format).
			ToSQL()
	} else {
		query, args, err = qb.InsertModelFormat(r.format, "match_scores", row, "")
	}
	if err != nil {
		return false, fmt.Errorf("build score write query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("write score: %w", err)
	}

	query, args, err = qb.Update("matches").
		SetExpr("updated_at", "CURRENT_TIMESTAMP").
		Where(qb.Eq("match_id", matchID)).
		Format(r.format).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build match touch query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("touch match: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit score update: %w", err)
	}
	return true, nil
}

// ListStaleScores returns matches that kicked off at or before cutoff and whose
// score is still the all-zero placeholder or entirely unknown. Date and time
// are compared in cutoff's location, newest date first.
func (r *MatchRepository) ListStaleScores(ctx context.Context, cutoff time.Time) ([]match.Match, error) {
	day := cutoff.Format(match.DateLayout)
	clock := cutoff.Format("15:04")

	query, args, err := qb.Select(matchColumns...).
		From("matches m").
		Join("INNER JOIN match_scores s ON s.match_id = m.match_id").
		Where(
			qb.Or(
				qb.Expr("m.match_date < ?", day),
				qb.Expr("(m.match_date = ? AND m.match_time <= ?)", day, clock),
			),
			qb.Or(
				qb.Expr("(s.home_score = 0 AND s.away_score = 0 AND s.ht_home_score = 0 AND s.ht_away_score = 0)"),
				qb.Expr("(s.home_score IS NULL AND s.away_score IS NULL)"),
			),
		).
		OrderBy("m.match_date DESC", "m.match_time ASC").
		Format(r.format).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build stale scores query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select stale scores: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) getScore(ctx context.Context, q sqlx.QueryerContext, matchID int64) (match.Score, bool, error) {
	query, args, err := qb.Select("match_id", "home_score", "away_score", "ht_home_score", "ht_away_score").
		From("match_scores").
		Where(qb.Eq("match_id", matchID)).
		Limit(1).
		Format(r.format).
		ToSQL()
	if err != nil {
		return match.Score{}, false, fmt.Errorf("build get score query: %w", err)
	}

	var row matchScoreTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Score{}, false, nil
		}
		return match.Score{}, false, fmt.Errorf("get score: %w", err)
	}
	return row.toDomain(), true, nil
}

type childRow struct {
	table    string
	conflict []string
	model    any
}

func childRows(a match.Analysis) []childRow {
	id := a.Match.ID
	rows := make([]childRow, 0, 16)
	add := func(table string, model any, conflict ...string) {
		rows = append(rows, childRow{table: table, conflict: conflict, model: model})
	}

	if p := a.Prediction; p != nil {
		add("predictions", predictionTableModel{
			MatchID:               id,
			OverPrediction:        p.OverUnder,
			BTTSPrediction:        p.BothTeamsScore,
			MatchResultPrediction: p.MatchResult,
			HTGoalPrediction:      p.HalfTimeGoals,
			CornerPrediction:      p.Corners,
			RiskyPrediction:       p.Risky,
		}, "match_id")
	}
	if g := a.Goals; g != nil {
		add("goal_stats", goalStatsTableModel{
			MatchID:       id,
			HomeGoalExp:   floatPtrToNull(g.HomeGoals),
			AwayGoalExp:   floatPtrToNull(g.AwayGoals),
			HomeGoalHTExp: floatPtrToNull(g.HomeHalfTimeGoals),
			AwayGoalHTExp: floatPtrToNull(g.AwayHalfTimeGoals),
		}, "match_id")
	}
	if p := a.Percentages; p != nil {
		add("percentages", percentageTableModel{
			MatchID:             id,
			HomeGoalPercent:     p.HomeGoal,
			AwayGoalPercent:     p.AwayGoal,
			OverPercent1:        p.Over1,
			OverPercent2:        p.Over2,
			OverPercent3:        p.Over3,
			MatchResultPercents: p.MatchResult,
			HomeGoalHTPercent:   p.HomeGoalHalfTime,
			AwayGoalHTPercent:   p.AwayGoalHalfTime,
			Over05HTPercent:     p.HalfTimeOver05,
			Over15HTPercent:     p.HalfTimeOver15,
			Over25HTPercent:     p.HalfTimeOver25,
			HTResultPercents:    p.HalfTimeResult,
		}, "match_id")
	}
	if f := a.Form; f != nil {
		add("last_10_matches", lastTenTableModel{MatchID: id, HomeTeamResults: f.Home, AwayTeamResults: f.Away}, "match_id")
	}
	for _, q := range a.Odds {
		add("odds", oddsModel(id, q), "match_id", "bookmaker")
	}
	for _, c := range a.CornerOdds {
		add("corner_odds", cornerOddsTableModel{
			MatchID:    id,
			Bookmaker:  c.Bookmaker,
			OverValue:  floatPtrToNull(c.OverValue),
			OverLine:   floatPtrToNull(c.OverLine),
			UnderValue: floatPtrToNull(c.UnderValue),
			IsLive:     c.IsLive,
		}, "match_id", "bookmaker")
	}
	for _, d := range a.DoubleChance {
		add("double_chance_odds", doubleChanceTableModel{
			MatchID:       id,
			Bookmaker:     d.Bookmaker,
			HomeDrawValue: floatPtrToNull(d.HomeDraw),
			HomeAwayValue: floatPtrToNull(d.HomeAway),
			AwayDrawValue: floatPtrToNull(d.AwayDraw),
		}, "match_id", "bookmaker")
	}
	for _, s := range a.ScoreOdds {
		add("score_odds", scoreOddsTableModel{
			MatchID:   id,
			Bookmaker: s.Bookmaker,
			ScoreType: s.ScoreType,
			OddsValue: s.Value,
		}, "match_id", "bookmaker", "score_type")
	}
	for _, s := range a.Statistics {
		add("match_statistics", matchStatisticsTableModel{
			MatchID:        id,
			TeamType:       s.TeamType,
			Over25Last10:   intPtrToNullInt64(s.Over25),
			BTTSLast10:     intPtrToNullInt64(s.BTTS),
			HTOver05Last10: intPtrToNullInt64(s.HTOver05),
			Over35Last10:   intPtrToNullInt64(s.Over35),
			Over15Last10:   intPtrToNullInt64(s.Over15),
			HTOver15Last10: intPtrToNullInt64(s.HTOver15),
		}, "match_id", "team_type")
	}
	for _, h := range a.H2HMatches {
		add("h2h_matches", h2hMatchTableModel{
			MatchID:   id,
			GameDate:  h.GameDate,
			League:    h.League,
			HomeTeam:  h.HomeTeam,
			AwayTeam:  h.AwayTeam,
			Score:     h.Score,
			HTScore:   h.HalfTimeScore,
			Corners:   h.Corners,
			HTCorners: h.HTCorners,
		}, "match_id", "game_date", "home_team", "away_team")
	}
	if s := a.H2HStats; s != nil {
		add("h2h_statistics", h2hStatisticsTableModel{
			MatchID:       id,
			TotalMatches:  intPtrToNullInt64(s.TotalMatches),
			Over25Count:   intPtrToNullInt64(s.Over25),
			BTTSCount:     intPtrToNullInt64(s.BTTS),
			HTOver05Count: intPtrToNullInt64(s.HTOver05),
			Over35Count:   intPtrToNullInt64(s.Over35),
			Over15Count:   intPtrToNullInt64(s.Over15),
			HTOver15Count: intPtrToNullInt64(s.HTOver15),
			HomeWins:      intPtrToNullInt64(s.HomeWins),
			AwayWins:      intPtrToNullInt64(s.AwayWins),
			Draws:         intPtrToNullInt64(s.Draws),
		}, "match_id")
	}
	for _, p := range a.Poisson {
		add("poisson_distribution", poissonTableModel{
			MatchID:          id,
			DistributionType: p.Type,
			Goals0:           floatPtrToNull(p.Goals[0]),
			Goals1:           floatPtrToNull(p.Goals[1]),
			Goals2:           floatPtrToNull(p.Goals[2]),
			Goals3:           floatPtrToNull(p.Goals[3]),
			Goals4:           floatPtrToNull(p.Goals[4]),
			Goals5:           floatPtrToNull(p.Goals[5]),
		}, "match_id", "distribution_type")
	}
	if a.Score != nil {
		add("match_scores", scoreModel(id, *a.Score), "match_id")
	}
	return rows
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
