package match

import (
	"fmt"
	"strconv"
	"strings"
)

// Score is a final and half-time result. Nil fields are unknown.
type Score struct {
	Home         *int
	Away         *int
	HalfTimeHome *int
	HalfTimeAway *int
}

// Known reports whether the full-time result is present.
func (s Score) Known() bool {
	return s.Home != nil && s.Away != nil
}

// Unknown reports whether neither full-time side is present.
func (s Score) Unknown() bool {
	return s.Home == nil && s.Away == nil
}

// IsPlaceholder reports the all-zero score written before a match is played.
func (s Score) IsPlaceholder() bool {
	return isZero(s.Home) && isZero(s.Away) && isZero(s.HalfTimeHome) && isZero(s.HalfTimeAway)
}

func (s Score) Equal(other Score) bool {
	return sameInt(s.Home, other.Home) &&
		sameInt(s.Away, other.Away) &&
		sameInt(s.HalfTimeHome, other.HalfTimeHome) &&
		sameInt(s.HalfTimeAway, other.HalfTimeAway)
}

// FullTime renders "2-1", or "-" when unknown.
func (s Score) FullTime() string {
	return formatPair(s.Home, s.Away)
}

// HalfTime renders "1-0", or "-" when unknown.
func (s Score) HalfTime() string {
	return formatPair(s.HalfTimeHome, s.HalfTimeAway)
}

// ParseScoreValue maps "" to unknown and "0" to zero; anything non-numeric is rejected.
func ParseScoreValue(raw string) (*int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return &n, nil
}

// ParseHalfTimeScore splits "H-A". Empty input is unknown on both sides.
func ParseHalfTimeScore(raw string) (home, away *int, err error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil, nil
	}
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("%w: half-time %q", ErrInvalidScore, raw)
	}
	if home, err = ParseScoreValue(parts[0]); err != nil {
		return nil, nil, err
	}
	if away, err = ParseScoreValue(parts[1]); err != nil {
		return nil, nil, err
	}
	return home, away, nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

func isZero(v *int) bool {
	return v != nil && *v == 0
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatPair(a, b *int) string {
	if a == nil || b == nil {
		return "-"
	}
	return strconv.Itoa(*a) + "-" + strconv.Itoa(*b)
}
