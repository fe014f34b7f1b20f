package sqlstore

import (
	"database/sql"

	"github.com/riskibarqy/match-digest/internal/domain/match"
)

type matchTableModel struct {
	MatchID   int64  `db:"match_id"`
	MatchDate string `db:"match_date"`
	MatchTime string `db:"match_time"`
	League    string `db:"league"`
	HomeTeam  string `db:"home_team"`
	AwayTeam  string `db:"away_team"`
	Stadium   string `db:"stadium"`
	Weather   string `db:"weather"`
}

type predictionTableModel struct {
	MatchID               int64  `db:"match_id"`
	OverPrediction        string `db:"over_prediction"`
	BTTSPrediction        string `db:"btts_prediction"`
	MatchResultPrediction string `db:"match_result_prediction"`
	HTGoalPrediction      string `db:"ht_goal_prediction"`
	CornerPrediction      string `db:"corner_prediction"`
	RiskyPrediction       string `db:"risky_prediction"`
}

type goalStatsTableModel struct {
	MatchID       int64           `db:"match_id"`
	HomeGoalExp   sql.NullFloat64 `db:"home_goal_exp"`
	AwayGoalExp   sql.NullFloat64 `db:"away_goal_exp"`
	HomeGoalHTExp sql.NullFloat64 `db:"home_goal_ht_exp"`
	AwayGoalHTExp sql.NullFloat64 `db:"away_goal_ht_exp"`
}

type percentageTableModel struct {
	MatchID             int64  `db:"match_id"`
	HomeGoalPercent     string `db:"home_goal_percent"`
	AwayGoalPercent     string `db:"away_goal_percent"`
	OverPercent1        string `db:"over_percent_1"`
	OverPercent2        string `db:"over_percent_2"`
	OverPercent3        string `db:"over_percent_3"`
	MatchResultPercents string `db:"match_result_percents"`
	HomeGoalHTPercent   string `db:"home_goal_ht_percent"`
	AwayGoalHTPercent   string `db:"away_goal_ht_percent"`
	Over05HTPercent     string `db:"over_05_ht_percent"`
	Over15HTPercent     string `db:"over_15_ht_percent"`
	Over25HTPercent     string `db:"over_25_ht_percent"`
	HTResultPercents    string `db:"ht_result_percents"`
}

type lastTenTableModel struct {
	MatchID         int64  `db:"match_id"`
	HomeTeamResults string `db:"home_team_results"`
	AwayTeamResults string `db:"away_team_results"`
}

type oddsTableModel struct {
	MatchID           int64           `db:"match_id"`
	Bookmaker         string          `db:"bookmaker"`
	MS1Opening        sql.NullFloat64 `db:"ms1_opening"`
	MSXOpening        sql.NullFloat64 `db:"msx_opening"`
	MS2Opening        sql.NullFloat64 `db:"ms2_opening"`
	MS1Closing        sql.NullFloat64 `db:"ms1_closing"`
	MSXClosing        sql.NullFloat64 `db:"msx_closing"`
	MS2Closing        sql.NullFloat64 `db:"ms2_closing"`
	HT1Opening        sql.NullFloat64 `db:"ht1_opening"`
	HTXOpening        sql.NullFloat64 `db:"htx_opening"`
	HT2Opening        sql.NullFloat64 `db:"ht2_opening"`
	HT1Closing        sql.NullFloat64 `db:"ht1_closing"`
	HTXClosing        sql.NullFloat64 `db:"htx_closing"`
	HT2Closing        sql.NullFloat64 `db:"ht2_closing"`
	OpeningOdds       sql.NullFloat64 `db:"opening_odds"`
	OpeningGoalLine   sql.NullFloat64 `db:"opening_goalline"`
	OpeningSide       sql.NullFloat64 `db:"opening_side"`
	OpeningOddsHT     sql.NullFloat64 `db:"opening_odds_ht"`
	OpeningGoalLineHT sql.NullFloat64 `db:"opening_goalline_ht"`
	OpeningSideHT     sql.NullFloat64 `db:"opening_side_ht"`
	ClosingOdds       sql.NullFloat64 `db:"closing_odds"`
	ClosingGoalLine   sql.NullFloat64 `db:"closing_goalline"`
	ClosingSide       sql.NullFloat64 `db:"closing_side"`
	ClosingOddsHT     sql.NullFloat64 `db:"closing_odds_ht"`
	ClosingGoalLineHT sql.NullFloat64 `db:"closing_goalline_ht"`
	ClosingSideHT     sql.NullFloat64 `db:"closing_side_ht"`
}

type cornerOddsTableModel struct {
	MatchID    int64           `db:"match_id"`
	Bookmaker  string          `db:"bookmaker"`
	OverValue  sql.NullFloat64 `db:"over_value"`
	OverLine   sql.NullFloat64 `db:"over_line"`
	UnderValue sql.NullFloat64 `db:"under_value"`
	IsLive     bool            `db:"is_live"`
}

type doubleChanceTableModel struct {
	MatchID       int64           `db:"match_id"`
	Bookmaker     string          `db:"bookmaker"`
	HomeDrawValue sql.NullFloat64 `db:"home_draw_value"`
	HomeAwayValue sql.NullFloat64 `db:"home_away_value"`
	AwayDrawValue sql.NullFloat64 `db:"away_draw_value"`
}

type scoreOddsTableModel struct {
	MatchID   int64   `db:"match_id"`
	Bookmaker string  `db:"bookmaker"`
	ScoreType string  `db:"score_type"`
	OddsValue float64 `db:"odds_value"`
}

type matchStatisticsTableModel struct {
	MatchID        int64         `db:"match_id"`
	TeamType       string        `db:"team_type"`
	Over25Last10   sql.NullInt64 `db:"over_25_last10"`
	BTTSLast10     sql.NullInt64 `db:"btts_last10"`
	HTOver05Last10 sql.NullInt64 `db:"ht_over_05_last10"`
	Over35Last10   sql.NullInt64 `db:"over_35_last10"`
	Over15Last10   sql.NullInt64 `db:"over_15_last10"`
	HTOver15Last10 sql.NullInt64 `db:"ht_over_15_last10"`
}

type h2hMatchTableModel struct {
	MatchID   int64  `db:"match_id"`
	GameDate  string `db:"game_date"`
	League    string `db:"league"`
	HomeTeam  string `db:"home_team"`
	AwayTeam  string `db:"away_team"`
	Score     string `db:"score"`
	HTScore   string `db:"ht_score"`
	Corners   string `db:"corners"`
	HTCorners string `db:"ht_corners"`
}

type h2hStatisticsTableModel struct {
	MatchID       int64         `db:"match_id"`
	TotalMatches  sql.NullInt64 `db:"total_matches"`
	Over25Count   sql.NullInt64 `db:"over_25_count"`
	BTTSCount     sql.NullInt64 `db:"btts_count"`
	HTOver05Count sql.NullInt64 `db:"ht_over_05_count"`
	Over35Count   sql.NullInt64 `db:"over_35_count"`
	Over15Count   sql.NullInt64 `db:"over_15_count"`
	HTOver15Count sql.NullInt64 `db:"ht_over_15_count"`
	HomeWins      sql.NullInt64 `db:"home_wins"`
	AwayWins      sql.NullInt64 `db:"away_wins"`
	Draws         sql.NullInt64 `db:"draws"`
}

type poissonTableModel struct {
	MatchID          int64           `db:"match_id"`
	DistributionType string          `db:"distribution_type"`
	Goals0           sql.NullFloat64 `db:"goals_0"`
	Goals1           sql.NullFloat64 `db:"goals_1"`
	Goals2           sql.NullFloat64 `db:"goals_2"`
	Goals3           sql.NullFloat64 `db:"goals_3"`
	Goals4           sql.NullFloat64 `db:"goals_4"`
	Goals5           sql.NullFloat64 `db:"goals_5"`
}

type matchScoreTableModel struct {
	MatchID     int64         `db:"match_id"`
	HomeScore   sql.NullInt64 `db:"home_score"`
	AwayScore   sql.NullInt64 `db:"away_score"`
	HTHomeScore sql.NullInt64 `db:"ht_home_score"`
	HTAwayScore sql.NullInt64 `db:"ht_away_score"`
}

func (m matchScoreTableModel) toDomain() match.Score {
	return match.Score{
		Home:         nullInt64ToIntPtr(m.HomeScore),
		Away:         nullInt64ToIntPtr(m.AwayScore),
		HalfTimeHome: nullInt64ToIntPtr(m.HTHomeScore),
		HalfTimeAway: nullInt64ToIntPtr(m.HTAwayScore),
	}
}

func scoreModel(matchID int64, s match.Score) matchScoreTableModel {
	return matchScoreTableModel{
		MatchID:     matchID,
		HomeScore:   intPtrToNullInt64(s.Home),
		AwayScore:   intPtrToNullInt64(s.Away),
		HTHomeScore: intPtrToNullInt64(s.HalfTimeHome),
		HTAwayScore: intPtrToNullInt64(s.HalfTimeAway),
	}
}

func matchModel(m match.Match) matchTableModel {
	return matchTableModel{
		MatchID:   m.ID,
		MatchDate: m.Date,
		MatchTime: m.Time,
		League:    m.League,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Stadium:   m.Stadium,
		Weather:   m.Weather,
	}
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:       m.MatchID,
		Date:     m.MatchDate,
		Time:     m.MatchTime,
		League:   m.League,
		HomeTeam: m.HomeTeam,
		AwayTeam: m.AwayTeam,
		Stadium:  m.Stadium,
		Weather:  m.Weather,
	}
}

func oddsModel(matchID int64, q match.OddsQuote) oddsTableModel {
	o, c := q.Opening, q.Closing
	return oddsTableModel{
		MatchID:           matchID,
		Bookmaker:         q.Bookmaker,
		MS1Opening:        floatPtrToNull(o.Home),
		MSXOpening:        floatPtrToNull(o.Draw),
		MS2Opening:        floatPtrToNull(o.Away),
		MS1Closing:        floatPtrToNull(c.Home),
		MSXClosing:        floatPtrToNull(c.Draw),
		MS2Closing:        floatPtrToNull(c.Away),
		HT1Opening:        floatPtrToNull(o.HalfTimeHome),
		HTXOpening:        floatPtrToNull(o.HalfTimeDraw),
		HT2Opening:        floatPtrToNull(o.HalfTimeAway),
		HT1Closing:        floatPtrToNull(c.HalfTimeHome),
		HTXClosing:        floatPtrToNull(c.HalfTimeDraw),
		HT2Closing:        floatPtrToNull(c.HalfTimeAway),
		OpeningOdds:       floatPtrToNull(o.Odds),
		OpeningGoalLine:   floatPtrToNull(o.GoalLine),
		OpeningSide:       floatPtrToNull(o.Side),
		OpeningOddsHT:     floatPtrToNull(o.HalfTimeOdds),
		OpeningGoalLineHT: floatPtrToNull(o.HalfTimeLine),
		OpeningSideHT:     floatPtrToNull(o.HalfTimeSide),
		ClosingOdds:       floatPtrToNull(c.Odds),
		ClosingGoalLine:   floatPtrToNull(c.GoalLine),
		ClosingSide:       floatPtrToNull(c.Side),
		ClosingOddsHT:     floatPtrToNull(c.HalfTimeOdds),
		ClosingGoalLineHT: floatPtrToNull(c.HalfTimeLine),
		ClosingSideHT:     floatPtrToNull(c.HalfTimeSide),
	}
}

func floatPtrToNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
