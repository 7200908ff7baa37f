package parse

import (
	"time"
)

// ParseTimestamp accepts the ISO-8601 shapes seen in session logs and returns
// the zero time when none match.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// try RFC3339
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// try RFC3339Nano
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// try ISO8601 without timezone
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t
	}
	return time.Time{}
}

// TimestampMillis returns epoch milliseconds for s, or 0 if unparseable.
func TimestampMillis(s string) int64 {
	t := ParseTimestamp(s)
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FormatTime renders t as ISO-8601 UTC with milliseconds, "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// MillisToISO renders epoch milliseconds, "" for non-positive input.
func MillisToISO(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return FormatTime(time.UnixMilli(ms))
}
