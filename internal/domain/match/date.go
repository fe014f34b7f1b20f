package match

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// NormalizeDate converts any of the accepted upstream date formats to YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedDate, raw)
}

// NormalizeKickoff converts "15:04" or "15:04:05" to "15:04". Empty stays empty.
func NormalizeKickoff(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKickoff, raw)
}
