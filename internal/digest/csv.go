package digest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/riskibarqy/match-digest/internal/domain/match"
)

var settledHeader = []string{
	"date",
	"league",
	"match",
	"over_prediction",
	"btts_prediction",
	"result_prediction",
	"ht_goal_prediction",
	"risky_prediction",
	"ht_score",
	"ft_score",
}

// WriteSettledCSV writes one row per settled match. Blank predictions and
// unknown scores are written as "-".
func WriteSettledCSV(w io.Writer, results []match.SettledResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(settledHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		p := r.Prediction
		row := []string{
			r.Match.Date,
			r.Match.League,
			fixture(r.Match),
			orDash(p.OverUnder),
			orDash(p.BothTeamsScore),
			orDash(p.MatchResult),
			orDash(p.HalfTimeGoals),
			orDash(p.Risky),
			r.Score.HalfTime(),
			r.Score.FullTime(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row match_id=%d: %w", r.Match.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func orDash(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "-"
	}
	return v
}
