package match

import (
	"fmt"
	"strings"
	"time"
)

const (
	TeamTypeHome = "home"
	TeamTypeAway = "away"
)

// Stub is one entry of the daily match list, before analysis.
type Stub struct {
	ID       int64
	HomeTeam string
	AwayTeam string
	League   string
}

// Match is the persisted identity and fixture metadata of one game.
type Match struct {
	ID       int64
	Date     string // YYYY-MM-DD
	Time     string // HH:MM, empty when unknown
	League   string
	HomeTeam string
	AwayTeam string
	Stadium  string
	Weather  string
}

// Kickoff returns the kickoff instant in loc. Matches without a time are
// treated as kicking off at midnight.
func (m Match) Kickoff(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	clock := m.Time
	if clock == "" {
		clock = "00:00"
	}
	return time.ParseInLocation("2006-01-02 15:04", m.Date+" "+clock, loc)
}

type Prediction struct {
	OverUnder      string
	BothTeamsScore string
	MatchResult    string
	HalfTimeGoals  string
	Corners        string
	Risky          string
}

// Empty reports whether no prediction text is set.
func (p Prediction) Empty() bool {
	for _, v := range []string{p.OverUnder, p.BothTeamsScore, p.MatchResult, p.HalfTimeGoals, p.Corners, p.Risky} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// GoalExpectation holds expected goals per side for the full match and first half.
type GoalExpectation struct {
	HomeGoals         *float64
	AwayGoals         *float64
	HomeHalfTimeGoals *float64
	AwayHalfTimeGoals *float64
}

// PercentageBreakdown keeps the upstream percentage strings as published, e.g. "64%".
type PercentageBreakdown struct {
	HomeGoal         string
	AwayGoal         string
	Over1            string
	Over2            string
	Over3            string
	MatchResult      string
	HomeGoalHalfTime string
	AwayGoalHalfTime string
	HalfTimeOver05   string
	HalfTimeOver15   string
	HalfTimeOver25   string
	HalfTimeResult   string
}

type FormSummary struct {
	Home string
	Away string
}

// OddsSide is one snapshot (opening or closing) of a bookmaker's prices.
type OddsSide struct {
	Home         *float64
	Draw         *float64
	Away         *float64
	HalfTimeHome *float64
	HalfTimeDraw *float64
	HalfTimeAway *float64
	Odds         *float64
	GoalLine     *float64
	Side         *float64
	HalfTimeOdds *float64
	HalfTimeLine *float64
	HalfTimeSide *float64
}

type OddsQuote struct {
	Bookmaker string
	Opening   OddsSide
	Closing   OddsSide
}

type CornerOdds struct {
	Bookmaker  string
	OverValue  *float64
	OverLine   *float64
	UnderValue *float64
	IsLive     bool
}

type DoubleChanceOdds struct {
	Bookmaker string
	HomeDraw  *float64
	HomeAway  *float64
	AwayDraw  *float64
}

type ScoreOdds struct {
	Bookmaker string
	ScoreType string
	Value     float64
}

// TeamStatistics counts outcomes over a side's last ten games.
type TeamStatistics struct {
	TeamType string
	Over25   *int
	BTTS     *int
	HTOver05 *int
	Over35   *int
	Over15   *int
	HTOver15 *int
}

type HeadToHeadMatch struct {
	GameDate      string
	League        string
	HomeTeam      string
	AwayTeam      string
	Score         string
	HalfTimeScore string
	Corners       string
	HTCorners     string
}

type HeadToHeadStatistics struct {
	TotalMatches *int
	Over25       *int
	BTTS         *int
	HTOver05     *int
	Over35       *int
	Over15       *int
	HTOver15     *int
	HomeWins     *int
	AwayWins     *int
	Draws        *int
}

// PoissonDistribution is P(goals = k) for k = 0..5 of one distribution type.
type PoissonDistribution struct {
	Type  string
	Goals [6]*float64
}

// Analysis is everything the upstream returns for one match. Nil sections
// and empty slices write no rows.
type Analysis struct {
	Match        Match
	Prediction   *Prediction
	Goals        *GoalExpectation
	Percentages  *PercentageBreakdown
	Form         *FormSummary
	Odds         []OddsQuote
	CornerOdds   []CornerOdds
	DoubleChance []DoubleChanceOdds
	ScoreOdds    []ScoreOdds
	Statistics   []TeamStatistics
	H2HMatches   []HeadToHeadMatch
	H2HStats     *HeadToHeadStatistics
	Poisson      []PoissonDistribution
	Score        *Score
}

// SplitFixture splits "Home - Away" into its two team names.
func SplitFixture(fixture string) (home, away string, err error) {
	parts := strings.Split(fixture, " - ")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedFixture, fixture)
	}
	home, away = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if home == "" || away == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedFixture, fixture)
	}
	return home, away, nil
}
