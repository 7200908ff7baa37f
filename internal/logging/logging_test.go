package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("AISH_DEBUG", "")
	t.Setenv("AISH_DEBUG_FILE", "")
	t.Setenv("AISH_MAX_LOG_FILES", "")
}

func TestInitialize_DisabledDiscards(t *testing.T) {
	clearEnv(t)

	path, err := Initialize(Options{MaxFiles: 10})

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, Logger)
}

func TestInitialize_FileRecordsRunID(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), "nested", "debug.log")

	path, err := Initialize(Options{File: file})
	require.NoError(t, err)
	assert.Equal(t, file, path)

	Logger.Debug("Skipping session", "file", "x.jsonl")
	data, err := os.ReadFile(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "Debug logging initialized", first["msg"])
	assert.Equal(t, "Skipping session", second["msg"])
	assert.NotEmpty(t, second["run"])
	assert.Equal(t, first["run"], second["run"])
}

func TestInitialize_RotatedRunFile(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("log dir comes from XDG_STATE_HOME only on linux")
	}
	clearEnv(t)
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	path, err := Initialize(Options{Debug: true, MaxFiles: 3})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(state, "aish"), filepath.Dir(path))
	assert.Equal(t, ".log", filepath.Ext(path))
}

func TestOptions_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AISH_DEBUG", "true")
	t.Setenv("AISH_DEBUG_FILE", "/tmp/env.log")
	t.Setenv("AISH_MAX_LOG_FILES", "7")

	got := Options{}.FromEnv()
	assert.Equal(t, Options{Debug: true, File: "/tmp/env.log", MaxFiles: 7}, got)

	got = Options{File: "/tmp/flag.log"}.FromEnv()
	assert.Equal(t, "/tmp/flag.log", got.File)
}

func TestPrune_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.log", "b.log", "c.log", "d.log"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, ts, ts))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	require.NoError(t, prune(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"c.log", "d.log", "notes.txt"}, names)
}
