package parse

import (
	"math"
	"strings"
	"time"
)

// Infinity is the sentinel for a missing or unparsable instant.
var Infinity = math.Inf(1)

// MsPerHour and MsPerMinute are used for window arithmetic on epoch milliseconds.
const (
	MsPerMinute = 60 * 1000
	MsPerHour   = 60 * MsPerMinute
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // no zone: read as UTC
	"2006-01-02T15:04",
	"2006-01-02",
}

// Instant parses an ISO-8601 timestamp. ok is false for empty or malformed input.
func Instant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Millis returns the epoch milliseconds of an ISO timestamp, or +Inf when it
// cannot be parsed so the value never looks overdue.
func Millis(s string) float64 {
	t, ok := Instant(s)
	if !ok {
		return Infinity
	}
	return float64(t.UnixMilli())
}

// TimeMillis returns t as epoch milliseconds.
func TimeMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// ISO formats t the way timestamps are stored: UTC with millisecond precision.
func ISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
