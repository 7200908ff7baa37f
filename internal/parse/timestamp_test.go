package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, want.Equal(ParseTimestamp("2025-06-01T10:00:00Z")))
	assert.True(t, want.Equal(ParseTimestamp("2025-06-01T12:00:00+02:00")))
	assert.True(t, want.Add(123*time.Millisecond).Equal(ParseTimestamp("2025-06-01T10:00:00.123Z")))
	assert.True(t, want.Equal(ParseTimestamp("2025-06-01T10:00:00")))
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("yesterday").IsZero())
}

func TestTimestampMillis(t *testing.T) {
	assert.Equal(t, int64(1748772000000), TimestampMillis("2025-06-01T10:00:00Z"))
	assert.Zero(t, TimestampMillis("garbage"))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2025-06-01T10:00:00.000Z", FormatTime(time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))))
	assert.Empty(t, FormatTime(time.Time{}))
}

func TestMillisToISO(t *testing.T) {
	assert.Equal(t, "2025-06-01T10:00:00.000Z", MillisToISO(1748772000000))
	assert.Empty(t, MillisToISO(0))
	assert.Empty(t, MillisToISO(-5))
}
