package open

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := "{\"a\":\"intro\"}\n\n{\"a\":\"Retry logic\"}\n{\"a\":\"retry with BACKOFF\"}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	assert.Equal(t, 4, MatchLine(path, "retry backoff"))
	assert.Equal(t, 3, MatchLine(path, "retry"))
	assert.Equal(t, 1, MatchLine(path, "missing"))
	assert.Equal(t, 1, MatchLine(path, ""))
	assert.Equal(t, 1, MatchLine(filepath.Join(t.TempDir(), "nope"), "retry"))
}

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		args   []string
	}{
		{"nvim", []string{"nvim", "+7", "/f"}},
		{"code", []string{"code", "--goto", "/f:7"}},
		{"less", []string{"less", "+7", "/f"}},
		{"nano", []string{"nano", "/f"}},
	}
	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			assert.Equal(t, tt.args, editorCommand(tt.editor, "/f", 7).Args)
		})
	}
}

func TestSession_MissingFile(t *testing.T) {
	err := Session(model.SessionMeta{ID: "x", Source: model.SourceCLI}, "")
	assert.Error(t, err)

	err = Session(model.SessionMeta{ID: "x", Source: model.SourceCLI, FilePath: "/does/not/exist"}, "")
	assert.Error(t, err)
}
