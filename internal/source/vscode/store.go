package vscode

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/scan"
)

// indexKey is the ItemTable row holding the chat session index.
const indexKey = "chat.ChatSessionStore.index"

type timing struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// indexEntry is one session as recorded in the shared state store.
type indexEntry struct {
	SessionID       string `json:"sessionId"`
	Title           string `json:"title"`
	LastMessageDate int64  `json:"lastMessageDate"`
	IsEmpty         bool   `json:"isEmpty"`
	Timing          timing `json:"timing"`
}

type chatIndex struct {
	Version int                   `json:"version"`
	Entries map[string]indexEntry `json:"entries"`
}

// readIndex loads the session index of one workspace's state.vscdb. A
// store without the index row yields a nil map and no error.
func readIndex(ctx context.Context, workspaceDir string) (map[string]indexEntry, error) {
	dbPath := filepath.Join(workspaceDir, scan.VSCodeStateDB)
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	db, err := sql.Open("sqlite", readOnlyDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()

	var raw []byte
	err = db.QueryRowContext(ctx, `SELECT value FROM ItemTable WHERE key = ?`, indexKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %v: %w", dbPath, err, model.ErrCorrupt)
	}

	var idx chatIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("decode index in %s: %v: %w", dbPath, err, model.ErrCorrupt)
	}
	for id, e := range idx.Entries {
		if e.SessionID == "" {
			e.SessionID = id
			idx.Entries[id] = e
		}
	}
	return idx.Entries, nil
}

// readOnlyDSN opens the store without taking write locks; VS Code may hold
// the database open while we read.
func readOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "busy_timeout(2000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// workspaceFolder resolves workspace.json's folder URI to a local path.
func workspaceFolder(workspaceDir string) string {
	data, err := os.ReadFile(filepath.Join(workspaceDir, scan.VSCodeWorkspaceFile))
	if err != nil {
		return ""
	}
	var ws struct {
		Folder    string `json:"folder"`
		Workspace string `json:"workspace"`
	}
	if err := json.Unmarshal(data, &ws); err != nil {
		return ""
	}
	if ws.Folder != "" {
		return uriToPath(ws.Folder)
	}
	if ws.Workspace != "" {
		return filepath.Dir(uriToPath(ws.Workspace))
	}
	return ""
}

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	p := u.Path
	// file:///c%3A/src -> c:/src
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(strings.TrimRight(p, "/"))
}
