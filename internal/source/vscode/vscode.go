// Package vscode reads VS Code Copilot Chat sessions: a per-workspace
// state.vscdb holding the session index and one JSON document per
// session under chatSessions/.
package vscode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
	"github.com/Zuo-Peng/ai-session-hub/internal/scan"
	"github.com/Zuo-Peng/ai-session-hub/internal/source"
)

const activeWindow = 10 * time.Minute

type Adapter struct {
	root string
	now  source.Clock
}

var _ source.Adapter = (*Adapter)(nil)

type Option func(*Adapter)

// WithClock overrides time.Now for status classification.
func WithClock(now source.Clock) Option {
	return func(a *Adapter) { a.now = now }
}

// New returns an adapter over a workspaceStorage directory.
func New(root string, opts ...Option) *Adapter {
	a := &Adapter{root: root, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Source() model.Source { return model.SourceVSCode }

func (a *Adapter) Root() string { return a.root }

func (a *Adapter) ListMetadata(ctx context.Context) source.ListResult {
	var result source.ListResult
	if a.root == "" {
		return result
	}

	for _, ws := range scan.ScanVSCode(a.root) {
		if ctx.Err() != nil {
			break
		}
		a.listWorkspace(ctx, ws, &result)
	}
	return result
}

func (a *Adapter) listWorkspace(ctx context.Context, ws string, result *source.ListResult) {
	entries, err := readIndex(ctx, ws)
	if err != nil {
		logging.Logger.Debug("Skipping VS Code workspace", "dir", ws, "error", err)
		result.Skip(model.SourceVSCode, "", filepath.Join(ws, scan.VSCodeStateDB), err)
		return
	}

	cwd := workspaceFolder(ws)
	sessionsDir := filepath.Join(ws, scan.VSCodeSessionsDir)

	// Older stores carry no index; fall back to the documents themselves.
	if entries == nil {
		entries = make(map[string]indexEntry)
		for _, fi := range scan.ScanVSCodeSessions(ws) {
			doc, err := readDocument(fi.Path)
			if err != nil {
				logging.Logger.Debug("Skipping VS Code session", "file", fi.Path, "error", err)
				result.Skip(model.SourceVSCode, fi.ID, fi.Path, err)
				continue
			}
			entries[fi.ID] = doc.entry(fi.ID)
		}
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		path := filepath.Join(sessionsDir, id+".json")
		meta, err := a.meta(entries[id], cwd, path)
		if err != nil {
			logging.Logger.Debug("Skipping VS Code session", "file", path, "error", err)
			result.Skip(model.SourceVSCode, id, path, err)
			continue
		}
		result.Sessions = append(result.Sessions, *meta)
	}
}

func (a *Adapter) meta(e indexEntry, cwd, path string) (*model.SessionMeta, error) {
	if !scan.SafeID(e.SessionID) {
		return nil, fmt.Errorf("invalid session id %q: %w", e.SessionID, model.ErrCorrupt)
	}
	if e.IsEmpty {
		return nil, fmt.Errorf("%s: %w", e.SessionID, model.ErrNoUserMessages)
	}
	info, err := parse.StatWithinLimit(path)
	if err != nil {
		return nil, err
	}

	title := e.Title
	if title == "" {
		// The index has no title until VS Code generates one.
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		title = doc.firstUserText()
		if title == "" {
			return nil, fmt.Errorf("%s: %w", e.SessionID, model.ErrNoUserMessages)
		}
	}

	m := &model.SessionMeta{
		ID:               e.SessionID,
		WorkingDirectory: cwd,
		CreatedAt:        parse.MillisToISO(e.Timing.StartTime),
		UpdatedAt:        parse.MillisToISO(lastActivity(e)),
		Status:           a.status(e),
		Source:           model.SourceVSCode,
		Title:            parse.Title(title),
		FilePath:         path,
	}
	if m.CreatedAt == "" {
		m.CreatedAt = parse.FormatTime(info.ModTime())
	}
	if m.UpdatedAt == "" {
		m.UpdatedAt = parse.FormatTime(info.ModTime())
	}
	m.CreatedAt, m.UpdatedAt = parse.OrderTimes(m.CreatedAt, m.UpdatedAt)
	return m, nil
}

func lastActivity(e indexEntry) int64 {
	last := e.LastMessageDate
	if e.Timing.EndTime > last {
		last = e.Timing.EndTime
	}
	return last
}

// status: an end time means completed, as does a missing start time;
// otherwise the session runs while its last activity is recent.
func (a *Adapter) status(e indexEntry) model.Status {
	if e.Timing.EndTime > 0 || e.Timing.StartTime <= 0 {
		return model.StatusCompleted
	}
	last := e.LastMessageDate
	if last <= 0 {
		last = e.Timing.StartTime
	}
	if source.Within(a.now(), time.UnixMilli(last), activeWindow) {
		return model.StatusRunning
	}
	return model.StatusCompleted
}

// find returns the document path for id, or "" when no workspace has it.
func (a *Adapter) find(id string) string {
	if a.root == "" || !scan.SafeID(id) {
		return ""
	}
	matches, _ := filepath.Glob(filepath.Join(a.root, "*", scan.VSCodeSessionsDir, id+".json"))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			return m
		}
	}
	return ""
}

func (a *Adapter) IsMember(id string) bool {
	return a.find(id) != ""
}

func (a *Adapter) LoadDetail(ctx context.Context, id string) (*model.SessionDetail, error) {
	path := a.find(id)
	if path == "" {
		return nil, fmt.Errorf("vscode %s: %w", id, model.ErrSessionNotFound)
	}
	ws := filepath.Dir(filepath.Dir(path))

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := doc.entry(id)
	if entries, err := readIndex(ctx, ws); err != nil {
		logging.Logger.Debug("VS Code index unreadable, using document metadata", "dir", ws, "error", err)
	} else if indexed, ok := entries[id]; ok {
		e = indexed
	}

	title := parse.Str(doc, "customTitle")
	if title == "" {
		title = e.Title
	}
	if title == "" {
		title = doc.firstUserText()
	}

	d := &model.SessionDetail{
		SessionMeta: model.SessionMeta{
			ID:               id,
			WorkingDirectory: workspaceFolder(ws),
			CreatedAt:        parse.MillisToISO(e.Timing.StartTime),
			UpdatedAt:        parse.MillisToISO(lastActivity(e)),
			Status:           a.status(e),
			Source:           model.SourceVSCode,
			Title:            parse.Title(title),
			FilePath:         path,
		},
		Events: doc.events(),
	}
	if v := parse.Int64(doc, "version"); v > 0 {
		d.Version = fmt.Sprintf("%d", v)
	}

	parse.Finalize(d)
	d.CreatedAt, d.UpdatedAt = parse.OrderTimes(d.CreatedAt, d.UpdatedAt)
	return d, nil
}
