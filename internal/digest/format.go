// Package digest renders stored predictions into channel messages.
package digest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/valyala/bytebufferpool"
)

var ErrNothingToPublish = errors.New("no publishable prediction")

// Field is one labelled line of an operator report.
type Field struct {
	Label string
	Value string
}

// Pick is the single selection a coupon carries for a match.
type Pick struct {
	Match  match.Match
	Market string
	Value  string
}

const (
	MarketResult = "Match result"
	MarketGoals  = "Goals"
	MarketBTTS   = "Both teams to score"
)

// BestPick chooses the coupon selection for p: match result first, then
// goals, then both teams to score.
func BestPick(p match.Prediction) (market, value string, ok bool) {
	switch {
	case strings.TrimSpace(p.MatchResult) != "":
		return MarketResult, strings.TrimSpace(p.MatchResult), true
	case strings.TrimSpace(p.OverUnder) != "":
		return MarketGoals, strings.TrimSpace(p.OverUnder), true
	case strings.TrimSpace(p.BothTeamsScore) != "":
		return MarketBTTS, strings.TrimSpace(p.BothTeamsScore), true
	default:
		return "", "", false
	}
}

// Prediction renders one match card. A match whose prediction carries none
// of result, goals, half-time or risky picks yields ErrNothingToPublish.
func Prediction(view match.PredictionView, footer string) (string, error) {
	lines := predictionLines(view.Prediction)
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: match %d", ErrNothingToPublish, view.Match.ID)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeHeader(buf, view.Match)
	buf.WriteString("\n")
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	writeFooter(buf, footer)
	return strings.TrimRight(buf.String(), "\n"), nil
}

func predictionLines(p match.Prediction) []string {
	lines := make([]string, 0, 4)
	add := func(icon, label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		lines = append(lines, icon+" "+label+": "+value)
	}
	add("🎯", MarketResult, p.MatchResult)
	add("⚽", MarketGoals, p.OverUnder)
	add("⏱", "Half time", p.HalfTimeGoals)
	add("⚠️", "Risky", p.Risky)
	return lines
}

// Coupon renders the daily coupon.
func Coupon(date string, picks []Pick, footer string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("🎟 Daily coupon ")
	buf.WriteString(date)
	buf.WriteString("\n")
	for i, pick := range picks {
		buf.WriteString("\n")
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteString(". ")
		buf.WriteString(fixture(pick.Match))
		buf.WriteString(" (")
		buf.WriteString(pick.Match.League)
		buf.WriteString(")\n   ")
		if pick.Match.Time != "" {
			buf.WriteString("⏰ ")
			buf.WriteString(pick.Match.Time)
			buf.WriteString(" | ")
		}
		buf.WriteString(pick.Market)
		buf.WriteString(": ")
		buf.WriteString(pick.Value)
		buf.WriteString("\n")
	}
	writeFooter(buf, footer)
	return strings.TrimRight(buf.String(), "\n")
}

// HalfTimeGoals renders the half-time goal table.
func HalfTimeGoals(date string, picks []match.HalfTimeGoalPick, footer string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("⏱ Half-time goal picks ")
	buf.WriteString(date)
	buf.WriteString("\n\n")
	for _, pick := range picks {
		buf.WriteString(pick.Match.Time)
		buf.WriteString(" ")
		buf.WriteString(fixture(pick.Match))
		buf.WriteString("\n   ")
		buf.WriteString(pick.Prediction)
		buf.WriteString(" | HT 0.5+ ")
		buf.WriteString(strconv.Itoa(pick.Over05))
		buf.WriteString("% | HT 1.5+ ")
		buf.WriteString(strconv.Itoa(pick.Over15))
		buf.WriteString("%\n")
	}
	writeFooter(buf, footer)
	return strings.TrimRight(buf.String(), "\n")
}

var greetings = map[time.Weekday]string{
	time.Monday:    "☀️ Good morning! A new week of football starts today.",
	time.Tuesday:   "☀️ Good morning! Tuesday's matches are being analysed.",
	time.Wednesday: "☀️ Good morning! Midweek fixtures are on the way.",
	time.Thursday:  "☀️ Good morning! European nights bring new picks.",
	time.Friday:    "☀️ Good morning! The weekend programme opens tonight.",
	time.Saturday:  "☀️ Good morning! A full Saturday card is ahead.",
	time.Sunday:    "☀️ Good morning! Sunday's matches are ready for analysis.",
}

func GoodMorning(day time.Weekday) string {
	return greetings[day]
}

const (
	MatchesReady         = "📋 Today's matches are analysed. Predictions start at noon."
	CouponAnnouncement   = "🎟 The daily coupon will be shared in 30 minutes."
	HalfTimeAnnouncement = "⏱ Half-time goal picks are coming in 30 minutes."
	NoPredictions        = "No predictions for today's league matches yet."
	NoHalfTimePicks      = "No half-time goal picks for today."
	NotEnoughCouponPicks = "Not enough matches with a confident pick to build today's coupon."
)

// Report renders an operator report with one "label: value" line per field.
func Report(title string, fields []Field) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(title)
	for _, f := range fields {
		buf.WriteString("\n")
		buf.WriteString(f.Label)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
	}
	return buf.String()
}

func writeHeader(buf *bytebufferpool.ByteBuffer, m match.Match) {
	buf.WriteString("🏆 ")
	buf.WriteString(m.League)
	buf.WriteString("\n⚽ ")
	buf.WriteString(fixture(m))
	buf.WriteString("\n📅 ")
	buf.WriteString(m.Date)
	if m.Time != "" {
		buf.WriteString(" | ⏰ ")
		buf.WriteString(m.Time)
	}
	buf.WriteString("\n")
}

func writeFooter(buf *bytebufferpool.ByteBuffer, footer string) {
	footer = strings.TrimSpace(footer)
	if footer == "" {
		return
	}
	buf.WriteString("\n")
	buf.WriteString(footer)
}

func fixture(m match.Match) string {
	return m.HomeTeam + " - " + m.AwayTeam
}
