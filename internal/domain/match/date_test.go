package match

import (
	"errors"
	"testing"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{raw: "2024-05-01", want: "2024-05-01"},
		{raw: "01-05-2024", want: "2024-05-01"},
		{raw: "01/05/2024", want: "2024-05-01"},
		{raw: "2024/05/01", want: "2024-05-01"},
		{raw: " 2024-05-01 ", want: "2024-05-01"},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.raw)
		if err != nil {
			t.Fatalf("normalize %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("normalize %q: expected %s, got=%s", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizeDate_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "May 1 2024", "2024.05.01", "32-01-2024"} {
		if _, err := NormalizeDate(raw); !errors.Is(err, ErrUnrecognizedDate) {
			t.Fatalf("normalize %q: expected ErrUnrecognizedDate, got %v", raw, err)
		}
	}
}

func TestNormalizeKickoff(t *testing.T) {
	t.Parallel()

	got, err := NormalizeKickoff("19:45:00")
	if err != nil || got != "19:45" {
		t.Fatalf("expected 19:45, got=%q err=%v", got, err)
	}
	got, err = NormalizeKickoff("")
	if err != nil || got != "" {
		t.Fatalf("expected empty kickoff, got=%q err=%v", got, err)
	}
	if _, err := NormalizeKickoff("TBD"); !errors.Is(err, ErrInvalidKickoff) {
		t.Fatalf("expected ErrInvalidKickoff, got %v", err)
	}
}
