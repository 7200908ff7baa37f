package vscode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	t0       = fixedNow.Add(-24 * time.Hour).UnixMilli()
)

func doneDocument() string {
	return fmt.Sprintf(`{
  "version": 3,
  "sessionId": "s-done",
  "creationDate": %[1]d,
  "lastMessageDate": %[2]d,
  "customTitle": "Fix flaky test",
  "requests": [
    {
      "requestId": "r1",
      "timestamp": %[1]d,
      "message": {"text": "Why does TestRetry flake?"},
      "variableData": {"variables": [{"id": "file:retry_test.go"}]},
      "modelId": "copilot/gpt-4.1",
      "response": [
        {"value": "Looking at "},
        {"kind": "toolInvocationSerialized", "toolId": "copilot_readFile", "toolCallId": "tc1", "isComplete": true, "invocationMessage": {"value": "Reading retry_test.go"}},
        {"value": "the test, it sleeps on a real clock."}
      ],
      "result": {"timings": {"totalElapsed": 4000}}
    },
    {
      "requestId": "r2",
      "timestamp": %[2]d,
      "message": {"text": "Fix it"},
      "response": [{"value": "Done."}]
    }
  ]
}`, t0, t0+60000)
}

func liveDocument() string {
	return fmt.Sprintf(`{"version":3,"sessionId":"s-live","creationDate":%d,"requests":[{"requestId":"r1","timestamp":%d,"message":{"text":"Explain the build pipeline"},"response":[]}]}`,
		fixedNow.Add(-20*time.Minute).UnixMilli(), fixedNow.Add(-20*time.Minute).UnixMilli())
}

func indexJSON() string {
	return fmt.Sprintf(`{"version":1,"entries":{
  "s-done":{"sessionId":"s-done","title":"Fix flaky test","lastMessageDate":%d,"isEmpty":false,"timing":{"startTime":%d,"endTime":%d}},
  "s-live":{"sessionId":"s-live","title":"","lastMessageDate":%d,"isEmpty":false,"timing":{"startTime":%d}},
  "s-empty":{"sessionId":"s-empty","title":"","lastMessageDate":%d,"isEmpty":true,"timing":{"startTime":%d}},
  "s-missing":{"sessionId":"s-missing","title":"Gone","lastMessageDate":%d,"isEmpty":false,"timing":{"startTime":%d,"endTime":%d}}
}}`,
		t0+60000, t0, t0+60000,
		fixedNow.Add(-2*time.Minute).UnixMilli(), fixedNow.Add(-20*time.Minute).UnixMilli(),
		t0, t0,
		t0, t0, t0+1000)
}

// writeStore creates a state.vscdb with an ItemTable; index may be empty
// to leave the index row out.
func writeStore(t *testing.T, ws, index string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(ws, 0755))
	db, err := sql.Open("sqlite", filepath.Join(ws, "state.vscdb"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, "workbench.panel.chat", "{}")
	require.NoError(t, err)
	if index != "" {
		_, err = db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, indexKey, index)
		require.NoError(t, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupWorkspace(t *testing.T) (root, ws string) {
	t.Helper()
	root = t.TempDir()
	ws = filepath.Join(root, "a1b2c3")
	writeStore(t, ws, indexJSON())
	writeFile(t, filepath.Join(ws, "workspace.json"), `{"folder":"file:///home/dev/flaky"}`)
	writeFile(t, filepath.Join(ws, "chatSessions", "s-done.json"), doneDocument())
	writeFile(t, filepath.Join(ws, "chatSessions", "s-live.json"), liveDocument())
	writeFile(t, filepath.Join(ws, "chatSessions", "s-empty.json"), `{"requests":[]}`)
	return root, ws
}

func newTestAdapter(root string) *Adapter {
	return New(root, WithClock(func() time.Time { return fixedNow }))
}

func TestListMetadata_MissingRoot(t *testing.T) {
	res := newTestAdapter(filepath.Join(t.TempDir(), "missing")).ListMetadata(context.Background())

	assert.Empty(t, res.Sessions)
	assert.Empty(t, res.Skipped)
}

func TestListMetadata_ReadsIndex(t *testing.T) {
	root, ws := setupWorkspace(t)

	res := newTestAdapter(root).ListMetadata(context.Background())

	require.Len(t, res.Sessions, 2)
	done, live := res.Sessions[0], res.Sessions[1]

	assert.Equal(t, "s-done", done.ID)
	assert.Equal(t, model.SourceVSCode, done.Source)
	assert.Equal(t, "Fix flaky test", done.Title)
	assert.Equal(t, filepath.FromSlash("/home/dev/flaky"), done.WorkingDirectory)
	assert.Equal(t, parse.MillisToISO(t0), done.CreatedAt)
	assert.Equal(t, parse.MillisToISO(t0+60000), done.UpdatedAt)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, filepath.Join(ws, "chatSessions", "s-done.json"), done.FilePath)

	assert.Equal(t, "s-live", live.ID)
	assert.Equal(t, "Explain the build pipeline", live.Title)
	assert.Equal(t, model.StatusRunning, live.Status)

	require.Len(t, res.Skipped, 2)
	reasons := map[string]error{}
	for _, s := range res.Skipped {
		reasons[s.ID] = s.Err
	}
	assert.ErrorIs(t, reasons["s-empty"], model.ErrNoUserMessages)
	assert.ErrorIs(t, reasons["s-missing"], model.ErrSessionNotFound)
}

func TestListMetadata_FallsBackToDocuments(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, "legacy")
	writeStore(t, ws, "")
	writeFile(t, filepath.Join(ws, "chatSessions", "s-done.json"), doneDocument())
	writeFile(t, filepath.Join(ws, "chatSessions", "blank.json"), `{"requests":[{"message":{"text":"  "}}]}`)

	res := newTestAdapter(root).ListMetadata(context.Background())

	require.Len(t, res.Sessions, 1)
	assert.Equal(t, "Fix flaky test", res.Sessions[0].Title)
	assert.Empty(t, res.Sessions[0].WorkingDirectory)
	require.Len(t, res.Skipped, 1)
	assert.ErrorIs(t, res.Skipped[0], model.ErrNoUserMessages)
}

func TestListMetadata_CorruptIndex(t *testing.T) {
	root := t.TempDir()
	writeStore(t, filepath.Join(root, "broken"), "{not json")
	good := filepath.Join(root, "good")
	writeStore(t, good, indexJSON())
	writeFile(t, filepath.Join(good, "chatSessions", "s-done.json"), doneDocument())

	res := newTestAdapter(root).ListMetadata(context.Background())

	require.Len(t, res.Sessions, 1)
	var corrupt int
	for _, s := range res.Skipped {
		if assert.Error(t, s.Err) && s.Path == filepath.Join(root, "broken", "state.vscdb") {
			assert.ErrorIs(t, s.Err, model.ErrCorrupt)
			corrupt++
		}
	}
	assert.Equal(t, 1, corrupt)
}

func TestStatus(t *testing.T) {
	a := newTestAdapter("")
	now := fixedNow.UnixMilli()
	minute := int64(time.Minute / time.Millisecond)

	tests := []struct {
		name     string
		entry    indexEntry
		expected model.Status
	}{
		{"ended", indexEntry{LastMessageDate: now, Timing: timing{StartTime: now - minute, EndTime: now}}, model.StatusCompleted},
		{"never started", indexEntry{LastMessageDate: now}, model.StatusCompleted},
		{"recent activity", indexEntry{LastMessageDate: now - 3*minute, Timing: timing{StartTime: now - 30*minute}}, model.StatusRunning},
		{"stale activity", indexEntry{LastMessageDate: now - 11*minute, Timing: timing{StartTime: now - 30*minute}}, model.StatusCompleted},
		{"start only", indexEntry{Timing: timing{StartTime: now - minute}}, model.StatusRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.status(tt.entry))
		})
	}
}

func TestIsMember(t *testing.T) {
	root, _ := setupWorkspace(t)
	a := newTestAdapter(root)

	assert.True(t, a.IsMember("s-done"))
	assert.False(t, a.IsMember("s-missing"))
	assert.False(t, a.IsMember("*"))
	assert.False(t, New("").IsMember("s-done"))
}

func TestLoadDetail(t *testing.T) {
	root, _ := setupWorkspace(t)

	d, err := newTestAdapter(root).LoadDetail(context.Background(), "s-done")
	require.NoError(t, err)

	assert.Equal(t, "Fix flaky test", d.Title)
	assert.Equal(t, "3", d.Version)
	assert.Equal(t, filepath.FromSlash("/home/dev/flaky"), d.WorkingDirectory)
	assert.Equal(t, model.StatusCompleted, d.Status)

	var types []string
	for _, e := range d.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		model.EventUserMessage,
		model.EventTurnStart,
		model.EventToolStart,
		model.EventToolComplete,
		model.EventAssistantMessage,
		model.EventUserMessage,
		model.EventTurnStart,
		model.EventAssistantMessage,
	}, types)

	assert.Equal(t, 1, d.Events[0].Data["attachments"])
	assert.Equal(t, "read", d.Events[2].Data["toolName"])
	assert.Equal(t, "Reading retry_test.go", d.Events[2].Data["arguments"])
	assert.Equal(t, "Looking at the test, it sleeps on a real clock.", d.Events[4].Text())
	assert.Equal(t, "copilot/gpt-4.1", d.Events[4].Data["model"])
	assert.Equal(t, parse.MillisToISO(t0+4000), d.Events[4].Timestamp)

	assert.Equal(t, 2, d.EventCounts[model.EventUserMessage])
	assert.Equal(t, int64(60000), d.Duration)
}

func TestLoadDetail_RedactsInlineImages(t *testing.T) {
	root, ws := setupWorkspace(t)
	big := make([]byte, 4096)
	for i := range big {
		big[i] = 'A'
	}
	doc := fmt.Sprintf(`{"sessionId":"s-img","requests":[{"requestId":"r1","timestamp":%d,"message":{"text":"what is this?"},"variableData":{"variables":[{"kind":"image","value":"%s"}]},"response":[]}]}`, t0, big)
	writeFile(t, filepath.Join(ws, "chatSessions", "s-img.json"), doc)

	a := newTestAdapter(root)
	path := a.find("s-img")
	require.NotEmpty(t, path)
	parsed, err := readDocument(path)
	require.NoError(t, err)

	vars := parse.Arr(parse.Obj(parsed.requests()[0], "variableData"), "variables")
	require.Len(t, vars, 1)
	assert.Equal(t, parse.ImagePlaceholder, vars[0].(map[string]any)["value"])

	d, err := a.LoadDetail(context.Background(), "s-img")
	require.NoError(t, err)
	assert.Equal(t, "what is this?", d.Title)
}

func TestLoadDetail_NotFound(t *testing.T) {
	root, _ := setupWorkspace(t)

	_, err := newTestAdapter(root).LoadDetail(context.Background(), "s-missing")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestOversizeDocumentIsSkipped(t *testing.T) {
	root, ws := setupWorkspace(t)
	require.NoError(t, os.Truncate(filepath.Join(ws, "chatSessions", "s-done.json"), parse.MaxFileSize+1))
	a := newTestAdapter(root)

	res := a.ListMetadata(context.Background())

	for _, m := range res.Sessions {
		assert.NotEqual(t, "s-done", m.ID)
	}
	var oversize []model.Skip
	for _, sk := range res.Skipped {
		if errors.Is(sk, model.ErrOversize) {
			oversize = append(oversize, sk)
		}
	}
	require.Len(t, oversize, 1)
	assert.Equal(t, "s-done", oversize[0].ID)

	_, err := a.LoadDetail(context.Background(), "s-done")
	assert.ErrorIs(t, err, model.ErrOversize)
}

func TestListMetadata_WorkspaceWithoutStore(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, "nostore")
	writeFile(t, filepath.Join(ws, "chatSessions", "s-done.json"), doneDocument())
	a := newTestAdapter(root)

	res := a.ListMetadata(context.Background())

	require.Len(t, res.Sessions, 1)
	assert.Equal(t, "s-done", res.Sessions[0].ID)
	assert.True(t, a.IsMember("s-done"))
}

func TestUriToPath(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("/home/dev/my project"), uriToPath("file:///home/dev/my%20project/"))
	assert.Equal(t, "vscode-remote://ssh/x", uriToPath("vscode-remote://ssh/x"))
}
