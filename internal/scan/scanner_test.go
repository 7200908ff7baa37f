package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
}

func TestScanCopilot(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a", CopilotWorkspaceFile))
	mustWrite(t, filepath.Join(root, "b", CopilotEventsFile))
	mustWrite(t, filepath.Join(root, "stray.txt"))

	files := ScanCopilot(root)

	require.Len(t, files, 1)
	assert.Equal(t, "a", files[0].ID)
	assert.Equal(t, filepath.Join(root, "a"), files[0].Path)
	assert.Equal(t, model.SourceCLI, files[0].Source)
}

func TestScanVSCode(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "ws1", VSCodeStateDB))
	mustWrite(t, filepath.Join(root, "ws1", VSCodeSessionsDir, "s1.json"))
	mustWrite(t, filepath.Join(root, "ws1", VSCodeSessionsDir, "notes.txt"))
	mustWrite(t, filepath.Join(root, "ws2", VSCodeWorkspaceFile))
	mustWrite(t, filepath.Join(root, "ws3", VSCodeSessionsDir, "s3.json"))

	dirs := ScanVSCode(root)
	require.Equal(t, []string{filepath.Join(root, "ws1"), filepath.Join(root, "ws3")}, dirs)

	files := ScanVSCodeSessions(dirs[0])
	require.Len(t, files, 1)
	assert.Equal(t, "s1", files[0].ID)
	assert.Equal(t, model.SourceVSCode, files[0].Source)
}

func TestScanClaude_SkipsNestedDirectories(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "-home-dev", "s1.jsonl"))
	mustWrite(t, filepath.Join(root, "-home-dev", "sessions-index.jsonl"))
	mustWrite(t, filepath.Join(root, "-home-dev", "subagents", "agent.jsonl"))
	mustWrite(t, filepath.Join(root, "top.jsonl"))

	files := ScanClaude(root)

	require.Len(t, files, 1)
	assert.Equal(t, "s1", files[0].ID)
	assert.Equal(t, model.SourceClaudeCode, files[0].Source)
}

func TestScanRoots_MissingRoots(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	assert.Empty(t, ScanRoots(Roots{Copilot: missing, VSCode: missing, Claude: missing}))
	assert.Empty(t, ScanRoots(Roots{}))
}

func TestSafeID(t *testing.T) {
	assert.True(t, SafeID("3f1b6c2e-8d4a-4e57-9a1c-0b2d3e4f5a6b"))
	for _, id := range []string{"", ".", "..", "a/b", `a\b`, "*", "a?", "[x]"} {
		assert.False(t, SafeID(id), id)
	}
}
