package match

import (
	"errors"
	"testing"
	"time"
)

func TestSplitFixture(t *testing.T) {
	t.Parallel()

	home, away, err := SplitFixture("Galatasaray - Fenerbahce")
	if err != nil {
		t.Fatalf("split fixture: %v", err)
	}
	if home != "Galatasaray" || away != "Fenerbahce" {
		t.Fatalf("unexpected teams %q %q", home, away)
	}

	for _, raw := range []string{"Galatasaray vs Fenerbahce", " - Fenerbahce", "A - B - C"} {
		if _, _, err := SplitFixture(raw); !errors.Is(err, ErrMalformedFixture) {
			t.Fatalf("split %q: expected ErrMalformedFixture, got %v", raw, err)
		}
	}
}

func TestMatchKickoff(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("TRT", 3*60*60)
	m := Match{Date: "2024-05-01", Time: "20:00"}
	got, err := m.Kickoff(loc)
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if !got.Equal(time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected kickoff %s", got)
	}
}

func TestPredictionEmpty(t *testing.T) {
	t.Parallel()

	if !(Prediction{Risky: "  "}).Empty() {
		t.Fatalf("expected blank prediction to be empty")
	}
	if (Prediction{Corners: "9.5 UST"}).Empty() {
		t.Fatalf("expected prediction with corners to be non-empty")
	}
}
