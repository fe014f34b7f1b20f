package analysisapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// flexText accepts a JSON string, number or bool and keeps its text.
// null, objects and arrays decode to "".
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*t = ""
	case trimmed[0] == '"':
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = flexText(strings.TrimSpace(s))
	case trimmed[0] == '{', trimmed[0] == '[':
		*t = ""
	default:
		*t = flexText(trimmed)
	}
	return nil
}

func (t flexText) String() string {
	return string(t)
}

// flexFloat accepts a number or a numeric string ("1.85", "1,85"). Blank or
// non-numeric values such as "-" are unknown.
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var text flexText
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Value = parseFloat(string(text))
	return nil
}

func parseFloat(raw string) *float64 {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

// flexInt accepts an integer as number or string. Blank or non-numeric values
// are unknown.
type flexInt struct {
	Value *int
}

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var text flexText
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}
	value := strings.TrimSpace(string(text))
	if value == "" {
		i.Value = nil
		return nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		i.Value = &n
		return nil
	}
	if f := parseFloat(value); f != nil && *f == math.Trunc(*f) {
		n := int(*f)
		i.Value = &n
		return nil
	}
	i.Value = nil
	return nil
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var text flexText
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "true", "1", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

type matchListRequest struct {
	Date string `json:"date"`
}

type analyzeMatchRequest struct {
	MatchID int64 `json:"match_id"`
}

// stubRow is one list entry: [id, home team, away team, league, ...].
type stubRow []flexText

type analysisData struct {
	Info         *matchInfo                         `json:"info" validate:"required"`
	Predictions  *predictionsPayload                `json:"tahminler"`
	Goals        *goalsPayload                      `json:"home_away_goal"`
	Percentages  *percentagesPayload                `json:"yuzdeler"`
	LastTen      *lastTenPayload                    `json:"son_10_mac"`
	Odds         map[string]bookmakerOdds           `json:"bahis_oranlari"`
	CornerOdds   *oddsListPayload[cornerOddsItem]   `json:"korner_oranlari"`
	DoubleChance *oddsListPayload[doubleChanceItem] `json:"cifte_sans_oranlari"`
	ScoreOdds    *oddsListPayload[scoreOddsItem]    `json:"skor_oranlari"`
	Statistics   *statisticsPayload                 `json:"match_statistics"`
	H2H          *h2hPayload                        `json:"h2h_matches"`
	Poisson      *poissonPayload                    `json:"poisson"`
	Score        *scorePayload                      `json:"score"`
}

type matchInfo struct {
	ID      flexText `json:"id" validate:"required"`
	Date    flexText `json:"mac_tarihi" validate:"required"`
	Time    flexText `json:"mac_saati"`
	League  flexText `json:"lig" validate:"required"`
	Fixture flexText `json:"mac" validate:"required"`
	Stadium flexText `json:"stadium"`
	Weather flexText `json:"weather"`
}

type predictionsPayload struct {
	OverUnder     flexText `json:"ust_tahmini"`
	BTTS          flexText `json:"kg_tahmini"`
	MatchResult   flexText `json:"ms_tahmini"`
	HalfTimeGoals flexText `json:"iy_gol_tahmini"`
	Corners       flexText `json:"korner_tahmini"`
	Risky         flexText `json:"riskli_tahmin"`
}

type goalsPayload struct {
	HomeGoal   flexFloat `json:"home_goal"`
	AwayGoal   flexFloat `json:"away_goal"`
	HomeGoalHT flexFloat `json:"home_goal_ht"`
	AwayGoalHT flexFloat `json:"away_goal_ht"`
}

type percentagesPayload struct {
	HomeGoal         flexText `json:"ev_gol_yuzdesi"`
	AwayGoal         flexText `json:"dep_gol_yuzdesi"`
	Over1            flexText `json:"ust_yuzdesi_1"`
	Over2            flexText `json:"ust_yuzdesi2"`
	Over3            flexText `json:"ust_yuzdesi3"`
	MatchResult      flexText `json:"ms_yuzdeleri"`
	HomeGoalHalfTime flexText `json:"ev_gol_yuzdesi_ht"`
	AwayGoalHalfTime flexText `json:"dep_gol_yuzdesi_ht"`
	HalfTimeOver05   flexText `json:"ust_yuzdesi_05_ht"`
	HalfTimeOver15   flexText `json:"ust_yuzdesi_15_ht"`
	HalfTimeOver25   flexText `json:"ust_yuzdesi_25_ht"`
	HalfTimeResult   flexText `json:"iy_yuzdeleri_"`
}

type lastTenPayload struct {
	Home flexText `json:"ev_sahibi"`
	Away flexText `json:"deplasman"`
}

type bookmakerOdds struct {
	Opening *openingOdds `json:"acilis"`
	Closing *closingOdds `json:"kapanis"`
}

type openingOdds struct {
	MS1        flexFloat `json:"acilis_ms1"`
	MSX        flexFloat `json:"acilis_msx"`
	MS2        flexFloat `json:"acilis_ms2"`
	HT1        flexFloat `json:"acilis_iy1"`
	HTX        flexFloat `json:"acilis_iyx"`
	HT2        flexFloat `json:"acilis_iy2"`
	Odds       flexFloat `json:"acilis_oran"`
	GoalLine   flexFloat `json:"acilis_goalline"`
	Side       flexFloat `json:"acilis_taraf"`
	OddsHT     flexFloat `json:"acilis_oran_ht"`
	GoalLineHT flexFloat `json:"acilis_goalline_ht"`
	SideHT     flexFloat `json:"acilis_taraf_ht"`
}

type closingOdds struct {
	MS1        flexFloat `json:"kapanis_ms1"`
	MSX        flexFloat `json:"kapanis_msx"`
	MS2        flexFloat `json:"kapanis_ms2"`
	HT1        flexFloat `json:"kapanis_iy1"`
	HTX        flexFloat `json:"kapanis_iyx"`
	HT2        flexFloat `json:"kapanis_iy2"`
	Odds       flexFloat `json:"kapanis_oran"`
	GoalLine   flexFloat `json:"kapanis_goalline"`
	Side       flexFloat `json:"kapanis_taraf"`
	OddsHT     flexFloat `json:"kapanis_oran_ht"`
	GoalLineHT flexFloat `json:"kapanis_goalline_ht"`
	SideHT     flexFloat `json:"kapanis_taraf_ht"`
}

type oddsListPayload[T any] struct {
	Data *struct {
		OddsList []T `json:"oddsList"`
	} `json:"Data"`
}

func (p *oddsListPayload[T]) items() []T {
	if p == nil || p.Data == nil {
		return nil
	}
	return p.Data.OddsList
}

type threeWayPrices struct {
	U flexFloat `json:"u"`
	G flexFloat `json:"g"`
	D flexFloat `json:"d"`
}

type cornerOddsItem struct {
	Bookmaker flexText `json:"cn"`
	IsLive    flexBool `json:"hr"`
	Odds      *struct {
		F *threeWayPrices `json:"f"`
	} `json:"odds"`
}

type doubleChanceItem struct {
	Bookmaker flexText        `json:"cid"`
	Odds      *threeWayPrices `json:"fodds"`
}

type scoreOddsItem struct {
	Bookmaker flexText             `json:"cid"`
	Odds      map[string]flexFloat `json:"odds"`
}

type statisticsPayload struct {
	Home *teamStatisticsPayload `json:"home"`
	Away *teamStatisticsPayload `json:"away"`
}

type teamStatisticsPayload struct {
	LastTen *struct {
		Over25   flexInt `json:"over_25"`
		BTTS     flexInt `json:"btts"`
		HTOver05 flexInt `json:"ht_over_05"`
		Over35   flexInt `json:"over_35"`
		Over15   flexInt `json:"over_15"`
		HTOver15 flexInt `json:"ht_over_15"`
	} `json:"last_10"`
}

type h2hPayload struct {
	Matches    []h2hMatchPayload `json:"matches"`
	Statistics *h2hStatsPayload  `json:"statistics"`
}

type h2hMatchPayload struct {
	Date      flexText `json:"date"`
	League    flexText `json:"league"`
	HomeTeam  flexText `json:"home_team"`
	AwayTeam  flexText `json:"away_team"`
	Score     flexText `json:"score"`
	HTScore   flexText `json:"ht_score"`
	Corners   flexText `json:"corners"`
	HTCorners flexText `json:"ht_corners"`
}

type h2hStatsPayload struct {
	TotalMatches flexInt `json:"total_matches"`
	Over25       flexInt `json:"over_25"`
	BTTS         flexInt `json:"btts"`
	HTOver05     flexInt `json:"ht_over_05"`
	Over35       flexInt `json:"over_35"`
	Over15       flexInt `json:"over_15"`
	HTOver15     flexInt `json:"ht_over_15"`
	HomeWins     flexInt `json:"home_wins"`
	AwayWins     flexInt `json:"away_wins"`
	Draws        flexInt `json:"draws"`
}

type poissonPayload struct {
	Poisson map[string]map[string]flexFloat `json:"poisson"`
}

type scorePayload struct {
	HomeScore flexText `json:"home_score"`
	AwayScore flexText `json:"away_score"`
	HTScore   flexText `json:"ht_score"`
}

type scoreOnlyData struct {
	Score *scorePayload `json:"score"`
}
