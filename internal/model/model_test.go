package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRef(t *testing.T) {
	src, id, ok := ParseRef("claude-code:abc-123")
	assert.True(t, ok)
	assert.Equal(t, SourceClaudeCode, src)
	assert.Equal(t, "abc-123", id)

	src, id, ok = ParseRef("cli:7f3c")
	assert.True(t, ok)
	assert.Equal(t, SourceCLI, src)
	assert.Equal(t, "7f3c", id)

	_, id, ok = ParseRef("abc-123")
	assert.False(t, ok)
	assert.Equal(t, "abc-123", id)

	_, _, ok = ParseRef("vscode:")
	assert.False(t, ok)
}

func TestKeyRoundTrip(t *testing.T) {
	m := SessionMeta{ID: "s1", Source: SourceVSCode}
	src, id, ok := ParseRef(m.Key())
	assert.True(t, ok)
	assert.Equal(t, SourceVSCode, src)
	assert.Equal(t, "s1", id)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "s1", SessionMeta{ID: "s1"}.DisplayTitle())
	assert.Equal(t, "Fix login", SessionMeta{ID: "s1", Title: "Fix login"}.DisplayTitle())
}

func TestSkipUnwrap(t *testing.T) {
	s := Skip{Source: SourceCLI, ID: "x", Err: ErrNoUserMessages}
	assert.True(t, errors.Is(s, ErrNoUserMessages))
	assert.Contains(t, s.Error(), "no user messages")
}

func TestValidSource(t *testing.T) {
	for _, s := range Sources {
		assert.True(t, ValidSource(string(s)))
	}
	assert.False(t, ValidSource(""))
	assert.False(t, ValidSource("codex"))
}
