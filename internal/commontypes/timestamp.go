package commontypes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp parses a Slack timestamp string ("1700000000.123456").
// Fractional digits beyond microseconds are dropped.
func ParseTimestamp(ts string) (time.Time, error) {
	secStr, fracStr, _ := strings.Cut(strings.TrimSpace(ts), ".")
	if secStr == "" {
		return time.Time{}, fmt.Errorf("invalid ts: %q", ts)
	}
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid sec in ts %q: %w", ts, err)
	}
	nsec := int64(0)
	if fracStr != "" {
		if len(fracStr) > 6 {
			fracStr = fracStr[:6]
		}
		for len(fracStr) < 6 {
			fracStr += "0"
		}
		micro, err := strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid fraction in ts %q: %w", ts, err)
		}
		nsec = micro * 1000
	}
	return time.Unix(sec, nsec), nil
}

// DateOf returns the UTC calendar date of a Slack timestamp, or UnknownDate.
func DateOf(ts string) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return UnknownDate
	}
	return t.UTC().Format(DateLayout)
}
