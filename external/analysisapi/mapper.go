package analysisapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/usecase"
)

func invalidPayload(format string, args ...any) error {
	return fmt.Errorf("%w: %s", usecase.ErrInvalidPayload, fmt.Sprintf(format, args...))
}

func mapStubs(rows []stubRow) ([]match.Stub, error) {
	out := make([]match.Stub, 0, len(rows))
	for i, row := range rows {
		if len(row) < 4 {
			return nil, invalidPayload("match list entry %d has %d fields, want at least 4", i, len(row))
		}
		id, err := parseMatchID(row[0].String())
		if err != nil {
			return nil, invalidPayload("match list entry %d: %v", i, err)
		}
		out = append(out, match.Stub{
			ID:       id,
			HomeTeam: row[1].String(),
			AwayTeam: row[2].String(),
			League:   row[3].String(),
		})
	}
	return out, nil
}

func parseMatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", match.ErrMissingMatchID, raw)
	}
	return id, nil
}

func mapAnalysis(d analysisData) (match.Analysis, error) {
	info := d.Info
	id, err := parseMatchID(info.ID.String())
	if err != nil {
		return match.Analysis{}, invalidPayload("info.id: %v", err)
	}
	date, err := match.NormalizeDate(info.Date.String())
	if err != nil {
		return match.Analysis{}, invalidPayload("match %d: %v", id, err)
	}
	kickoff, err := match.NormalizeKickoff(info.Time.String())
	if err != nil {
		return match.Analysis{}, invalidPayload("match %d: %v", id, err)
	}
	home, away, err := match.SplitFixture(info.Fixture.String())
	if err != nil {
		return match.Analysis{}, invalidPayload("match %d: %v", id, err)
	}

	out := match.Analysis{
		Match: match.Match{
			ID:       id,
			Date:     date,
			Time:     kickoff,
			League:   info.League.String(),
			HomeTeam: home,
			AwayTeam: away,
			Stadium:  info.Stadium.String(),
			Weather:  info.Weather.String(),
		},
	}

	if p := d.Predictions; p != nil {
		out.Prediction = &match.Prediction{
			OverUnder:      p.OverUnder.String(),
			BothTeamsScore: p.BTTS.String(),
			MatchResult:    p.MatchResult.String(),
			HalfTimeGoals:  p.HalfTimeGoals.String(),
			Corners:        p.Corners.String(),
			Risky:          p.Risky.String(),
		}
	}
	if g := d.Goals; g != nil {
		out.Goals = &match.GoalExpectation{
			HomeGoals:         g.HomeGoal.Value,
			AwayGoals:         g.AwayGoal.Value,
			HomeHalfTimeGoals: g.HomeGoalHT.Value,
			AwayHalfTimeGoals: g.AwayGoalHT.Value,
		}
	}
	if p := d.Percentages; p != nil {
		out.Percentages = &match.PercentageBreakdown{
			HomeGoal:         p.HomeGoal.String(),
			AwayGoal:         p.AwayGoal.String(),
			Over1:            p.Over1.String(),
			Over2:            p.Over2.String(),
			Over3:            p.Over3.String(),
			MatchResult:      p.MatchResult.String(),
			HomeGoalHalfTime: p.HomeGoalHalfTime.String(),
			AwayGoalHalfTime: p.AwayGoalHalfTime.String(),
			HalfTimeOver05:   p.HalfTimeOver05.String(),
			HalfTimeOver15:   p.HalfTimeOver15.String(),
			HalfTimeOver25:   p.HalfTimeOver25.String(),
			HalfTimeResult:   p.HalfTimeResult.String(),
		}
	}
	if f := d.LastTen; f != nil {
		out.Form = &match.FormSummary{Home: f.Home.String(), Away: f.Away.String()}
	}

	out.Odds = mapOdds(d.Odds)
	out.CornerOdds = mapCornerOdds(d.CornerOdds.items())
	out.DoubleChance = mapDoubleChance(d.DoubleChance.items())
	out.ScoreOdds = mapScoreOdds(d.ScoreOdds.items())
	out.Statistics = mapStatistics(d.Statistics)

	if h := d.H2H; h != nil {
		for _, item := range h.Matches {
			out.H2HMatches = append(out.H2HMatches, match.HeadToHeadMatch{
				GameDate:      item.Date.String(),
				League:        item.League.String(),
				HomeTeam:      item.HomeTeam.String(),
				AwayTeam:      item.AwayTeam.String(),
				Score:         item.Score.String(),
				HalfTimeScore: item.HTScore.String(),
				Corners:       item.Corners.String(),
				HTCorners:     item.HTCorners.String(),
			})
		}
		if s := h.Statistics; s != nil {
			out.H2HStats = &match.HeadToHeadStatistics{
				TotalMatches: s.TotalMatches.Value,
				Over25:       s.Over25.Value,
				BTTS:         s.BTTS.Value,
				HTOver05:     s.HTOver05.Value,
				Over35:       s.Over35.Value,
				Over15:       s.Over15.Value,
				HTOver15:     s.HTOver15.Value,
				HomeWins:     s.HomeWins.Value,
				AwayWins:     s.AwayWins.Value,
				Draws:        s.Draws.Value,
			}
		}
	}

	if p := d.Poisson; p != nil {
		for _, distType := range sortedKeys(p.Poisson) {
			values := p.Poisson[distType]
			dist := match.PoissonDistribution{Type: distType}
			for goals := range dist.Goals {
				dist.Goals[goals] = values[strconv.Itoa(goals)].Value
			}
			out.Poisson = append(out.Poisson, dist)
		}
	}

	if d.Score != nil {
		score, err := mapScore(*d.Score)
		if err != nil {
			return match.Analysis{}, invalidPayload("match %d: %v", id, err)
		}
		out.Score = &score
	}
	return out, nil
}

// mapOdds keeps bookmakers that carry both an opening and a closing snapshot.
func mapOdds(in map[string]bookmakerOdds) []match.OddsQuote {
	out := make([]match.OddsQuote, 0, len(in))
	for _, bookmaker := range sortedKeys(in) {
		quote := in[bookmaker]
		if quote.Opening == nil || quote.Closing == nil {
			continue
		}
		o, c := quote.Opening, quote.Closing
		out = append(out, match.OddsQuote{
			Bookmaker: bookmaker,
			Opening: match.OddsSide{
				Home:         o.MS1.Value,
				Draw:         o.MSX.Value,
				Away:         o.MS2.Value,
				HalfTimeHome: o.HT1.Value,
				HalfTimeDraw: o.HTX.Value,
				HalfTimeAway: o.HT2.Value,
				Odds:         o.Odds.Value,
				GoalLine:     o.GoalLine.Value,
				Side:         o.Side.Value,
				HalfTimeOdds: o.OddsHT.Value,
				HalfTimeLine: o.GoalLineHT.Value,
				HalfTimeSide: o.SideHT.Value,
			},
			Closing: match.OddsSide{
				Home:         c.MS1.Value,
				Draw:         c.MSX.Value,
				Away:         c.MS2.Value,
				HalfTimeHome: c.HT1.Value,
				HalfTimeDraw: c.HTX.Value,
				HalfTimeAway: c.HT2.Value,
				Odds:         c.Odds.Value,
				GoalLine:     c.GoalLine.Value,
				Side:         c.Side.Value,
				HalfTimeOdds: c.OddsHT.Value,
				HalfTimeLine: c.GoalLineHT.Value,
				HalfTimeSide: c.SideHT.Value,
			},
		})
	}
	return out
}

func mapCornerOdds(items []cornerOddsItem) []match.CornerOdds {
	out := make([]match.CornerOdds, 0, len(items))
	for _, item := range items {
		if item.Odds == nil || item.Odds.F == nil {
			continue
		}
		out = append(out, match.CornerOdds{
			Bookmaker:  item.Bookmaker.String(),
			OverValue:  item.Odds.F.U.Value,
			OverLine:   item.Odds.F.G.Value,
			UnderValue: item.Odds.F.D.Value,
			IsLive:     bool(item.IsLive),
		})
	}
	return out
}

func mapDoubleChance(items []doubleChanceItem) []match.DoubleChanceOdds {
	out := make([]match.DoubleChanceOdds, 0, len(items))
	for _, item := range items {
		if item.Odds == nil {
			continue
		}
		out = append(out, match.DoubleChanceOdds{
			Bookmaker: item.Bookmaker.String(),
			HomeDraw:  item.Odds.U.Value,
			HomeAway:  item.Odds.G.Value,
			AwayDraw:  item.Odds.D.Value,
		})
	}
	return out
}

// mapScoreOdds flattens every bookmaker's correct-score prices, skipping
// blank ones.
func mapScoreOdds(items []scoreOddsItem) []match.ScoreOdds {
	var out []match.ScoreOdds
	for _, item := range items {
		for _, scoreType := range sortedKeys(item.Odds) {
			value := item.Odds[scoreType].Value
			if value == nil {
				continue
			}
			out = append(out, match.ScoreOdds{
				Bookmaker: item.Bookmaker.String(),
				ScoreType: scoreType,
				Value:     *value,
			})
		}
	}
	return out
}

func mapStatistics(s *statisticsPayload) []match.TeamStatistics {
	if s == nil {
		return nil
	}
	out := make([]match.TeamStatistics, 0, 2)
	for _, side := range []struct {
		teamType string
		stats    *teamStatisticsPayload
	}{
		{teamType: match.TeamTypeHome, stats: s.Home},
		{teamType: match.TeamTypeAway, stats: s.Away},
	} {
		if side.stats == nil || side.stats.LastTen == nil {
			continue
		}
		last := side.stats.LastTen
		out = append(out, match.TeamStatistics{
			TeamType: side.teamType,
			Over25:   last.Over25.Value,
			BTTS:     last.BTTS.Value,
			HTOver05: last.HTOver05.Value,
			Over35:   last.Over35.Value,
			Over15:   last.Over15.Value,
			HTOver15: last.HTOver15.Value,
		})
	}
	return out
}

func mapScore(s scorePayload) (match.Score, error) {
	home, err := match.ParseScoreValue(s.HomeScore.String())
	if err != nil {
		return match.Score{}, err
	}
	away, err := match.ParseScoreValue(s.AwayScore.String())
	if err != nil {
		return match.Score{}, err
	}
	htHome, htAway, err := match.ParseHalfTimeScore(s.HTScore.String())
	if err != nil {
		return match.Score{}, err
	}
	return match.Score{Home: home, Away: away, HalfTimeHome: htHome, HalfTimeAway: htAway}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
