package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLines_SkipsNothingButEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n\nnot json\n{\"b\":2}\n"), 0644))

	var got []string
	err := ScanLines(path, func(_ int, line []byte) bool {
		got = append(got, string(line))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, "not json", `{"b":2}`}, got)
}

func TestScanLines_StopsEarly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n"), 0644))

	n := 0
	require.NoError(t, ScanLines(path, func(int, []byte) bool {
		n++
		return n < 2
	}))
	assert.Equal(t, 2, n)
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString(`{"type":"noise","id":"` + strings.Repeat("x", 40) + `"}` + "\n")
	}
	sb.WriteString(`{"type":"abort","data":{"reason":"crash"}}` + "\n")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))

	lines, err := TailLines(path, 2048, 5)
	require.NoError(t, err)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[4], `"abort"`)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "{"), l)
	}
}

func TestScanLines_DropsOverlongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := "{\"a\":1}\n" + strings.Repeat("x", maxLineSize+1) + "\n{\"b\":2}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got := map[int]string{}
	require.NoError(t, ScanLines(path, func(lineNum int, line []byte) bool {
		got[lineNum] = string(line)
		return true
	}))

	assert.Equal(t, map[int]string{1: `{"a":1}`, 3: `{"b":2}`}, got)
}

func TestTailLines_WindowOnLineBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	first := strings.Repeat("a", 99) + "\n"
	last := `{"type":"abort"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(first+last), 0644))

	lines, err := TailLines(path, int64(len(last)), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"type":"abort"}`}, lines)

	lines, err = TailLines(path, int64(len(last)-3), 5)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStatWithinLimit_Oversize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.NoError(t, os.Truncate(path, MaxFileSize+1))

	_, err := StatWithinLimit(path)
	assert.ErrorIs(t, err, model.ErrOversize)

	require.NoError(t, os.Truncate(path, MaxFileSize))
	info, err := StatWithinLimit(path)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxFileSize), info.Size())
}

func TestStatWithinLimit_Missing(t *testing.T) {
	_, err := StatWithinLimit(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestFinalize(t *testing.T) {
	d := &model.SessionDetail{Events: []model.SessionEvent{
		MessageEvent(model.EventUserMessage, "1", "2025-01-01T10:00:00Z", "hi"),
		MessageEvent(model.EventAssistantMessage, "2", "2025-01-01T10:00:05Z", "hello"),
		MessageEvent(model.EventAssistantMessage, "3", "garbage", "ignored for duration"),
		MessageEvent(model.EventUserMessage, "4", "2025-01-01T12:00:00Z", "back"),
	}}
	Finalize(d)

	assert.Equal(t, map[string]int{model.EventUserMessage: 2, model.EventAssistantMessage: 2}, d.EventCounts)
	assert.Equal(t, int64(5000+MaxGapMs), d.Duration)
	assert.Equal(t, "2025-01-01T10:00:00.000Z", d.CreatedAt)
	assert.Equal(t, "2025-01-01T12:00:00.000Z", d.UpdatedAt)
	assert.Len(t, d.Events, 4)
}

func TestOrderTimes(t *testing.T) {
	c, u := OrderTimes("2025-01-02T00:00:00Z", "2025-01-01T00:00:00Z")
	assert.Equal(t, "2025-01-01T00:00:00Z", c)
	assert.Equal(t, "2025-01-02T00:00:00Z", u)
}
