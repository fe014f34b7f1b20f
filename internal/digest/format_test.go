package digest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/match-digest/internal/domain/match"
)

func sampleMatch() match.Match {
	return match.Match{
		ID:       101,
		Date:     "2024-05-01",
		Time:     "20:00",
		League:   "Turkey Super Lig",
		HomeTeam: "Galatasaray",
		AwayTeam: "Fenerbahce",
	}
}

func TestPrediction(t *testing.T) {
	t.Parallel()

	got, err := Prediction(match.PredictionView{
		Match:      sampleMatch(),
		Prediction: match.Prediction{MatchResult: "MS 1", OverUnder: "2.5 UST", Corners: "9.5 UST"},
	}, "example.com")
	if err != nil {
		t.Fatalf("format prediction: %v", err)
	}

	want := strings.Join([]string{
		"🏆 Turkey Super Lig",
		"⚽ Galatasaray - Fenerbahce",
		"📅 2024-05-01 | ⏰ 20:00",
		"",
		"🎯 Match result: MS 1",
		"⚽ Goals: 2.5 UST",
		"",
		"example.com",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected message:\nwant: %q\ngot:  %q", want, got)
	}
}

func TestPrediction_NothingToPublish(t *testing.T) {
	t.Parallel()

	_, err := Prediction(match.PredictionView{
		Match:      sampleMatch(),
		Prediction: match.Prediction{Corners: "9.5 UST", BothTeamsScore: "KG VAR"},
	}, "")
	if !errors.Is(err, ErrNothingToPublish) {
		t.Fatalf("expected ErrNothingToPublish, got %v", err)
	}
}

func TestBestPick(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prediction match.Prediction
		market     string
		ok         bool
	}{
		{prediction: match.Prediction{MatchResult: "MS 2", OverUnder: "2.5 ALT"}, market: MarketResult, ok: true},
		{prediction: match.Prediction{OverUnder: "2.5 ALT", BothTeamsScore: "KG YOK"}, market: MarketGoals, ok: true},
		{prediction: match.Prediction{BothTeamsScore: "KG YOK"}, market: MarketBTTS, ok: true},
		{prediction: match.Prediction{Risky: "MS X"}, ok: false},
	}
	for _, tc := range cases {
		market, _, ok := BestPick(tc.prediction)
		if market != tc.market || ok != tc.ok {
			t.Fatalf("unexpected pick for %+v: market=%q ok=%t", tc.prediction, market, ok)
		}
	}
}

func TestCoupon(t *testing.T) {
	t.Parallel()

	got := Coupon("2024-05-01", []Pick{
		{Match: sampleMatch(), Market: MarketResult, Value: "MS 1"},
	}, "")
	if !strings.HasPrefix(got, "🎟 Daily coupon 2024-05-01") {
		t.Fatalf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "1. Galatasaray - Fenerbahce (Turkey Super Lig)") {
		t.Fatalf("missing coupon line: %q", got)
	}
	if !strings.Contains(got, "⏰ 20:00 | Match result: MS 1") {
		t.Fatalf("missing pick line: %q", got)
	}
}

func TestHalfTimeGoals(t *testing.T) {
	t.Parallel()

	got := HalfTimeGoals("2024-05-01", []match.HalfTimeGoalPick{
		{Match: sampleMatch(), Prediction: "IY 0.5 UST", Over05: 78, Over15: 41},
	}, "example.com")
	if !strings.Contains(got, "20:00 Galatasaray - Fenerbahce\n   IY 0.5 UST | HT 0.5+ 78% | HT 1.5+ 41%") {
		t.Fatalf("unexpected table: %q", got)
	}
	if !strings.HasSuffix(got, "example.com") {
		t.Fatalf("missing footer: %q", got)
	}
}

func TestGoodMorningCoversEveryDay(t *testing.T) {
	t.Parallel()

	for day := time.Sunday; day <= time.Saturday; day++ {
		if GoodMorning(day) == "" {
			t.Fatalf("missing greeting for %s", day)
		}
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	got := Report("✅ Ingestion 2024-05-01", []Field{{Label: "stored", Value: "3"}, {Label: "failed", Value: "1"}})
	if got != "✅ Ingestion 2024-05-01\nstored: 3\nfailed: 1" {
		t.Fatalf("unexpected report: %q", got)
	}
}
