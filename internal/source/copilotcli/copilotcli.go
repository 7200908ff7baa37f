// Package copilotcli reads Copilot CLI session-state directories: one
// directory per session holding workspace.yaml and an append-only
// events.jsonl.
package copilotcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
	"github.com/Zuo-Peng/ai-session-hub/internal/scan"
	"github.com/Zuo-Peng/ai-session-hub/internal/source"
)

const (
	lockWindow   = 10 * time.Minute
	activeWindow = 5 * time.Minute

	tailBytes = 2048
	tailLines = 5

	planFile       = "plan.md"
	checkpointsDir = "checkpoints"
	lockPattern    = "inuse.*.lock"
)

// cancelReasons are abort reasons that mean the user stopped the session.
var cancelReasons = map[string]bool{
	"user_initiated": true,
	"user_cancelled": true,
	"user_canceled":  true,
	"user_abort":     true,
}

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

func New(root string, opts ...Option) *Adapter {
	a := &Adapter{root: root, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Source() model.Source { return model.SourceCLI }

func (a *Adapter) Root() string { return a.root }

// workspace mirrors workspace.yaml.
type workspace struct {
	ID        string `yaml:"id"`
	Cwd       string `yaml:"cwd"`
	GitRoot   string `yaml:"git_root"`
	Branch    string `yaml:"branch"`
	Summary   string `yaml:"summary"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

// event is one events.jsonl line.
type event struct {
	Type      string         `json:"type"`
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	ParentID  string         `json:"parentId"`
	Data      map[string]any `json:"data"`
}

func readWorkspace(dir string) (*workspace, error) {
	data, err := os.ReadFile(filepath.Join(dir, scan.CopilotWorkspaceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, model.ErrSessionNotFound)
		}
		return nil, err
	}
	var ws workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", scan.CopilotWorkspaceFile, err, model.ErrCorrupt)
	}
	return &ws, nil
}

func (a *Adapter) ListMetadata(ctx context.Context) source.ListResult {
	var result source.ListResult
	if a.root == "" {
		return result
	}

	for _, fi := range scan.ScanCopilot(a.root) {
		if ctx.Err() != nil {
			break
		}
		meta, err := a.readMeta(fi.ID, fi.Path)
		if err != nil {
			logging.Logger.Debug("Skipping Copilot CLI session", "dir", fi.Path, "error", err)
			result.Skip(model.SourceCLI, fi.ID, fi.Path, err)
			continue
		}
		result.Sessions = append(result.Sessions, *meta)
	}
	return result
}

func (a *Adapter) readMeta(id, dir string) (*model.SessionMeta, error) {
	ws, err := readWorkspace(dir)
	if err != nil {
		return nil, err
	}

	eventsPath := filepath.Join(dir, scan.CopilotEventsFile)
	info, err := parse.StatWithinLimit(eventsPath)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, fmt.Errorf("%s: no events: %w", dir, model.ErrNoUserMessages)
		}
		return nil, err
	}

	// Only read up to the first user message.
	var firstUser, firstTS string
	err = parse.ScanLines(eventsPath, func(_ int, line []byte) bool {
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			return true
		}
		if firstTS == "" && parse.TimestampMillis(ev.Timestamp) > 0 {
			firstTS = ev.Timestamp
		}
		if ev.Type != "user.message" {
			return true
		}
		firstUser = strings.TrimSpace(parse.Str(ev.Data, "content"))
		return firstUser == ""
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %v: %w", eventsPath, err, model.ErrCorrupt)
	}
	if firstUser == "" {
		return nil, fmt.Errorf("%s: %w", dir, model.ErrNoUserMessages)
	}

	meta := &model.SessionMeta{
		ID:               id,
		WorkingDirectory: ws.Cwd,
		RepositoryRoot:   ws.GitRoot,
		Branch:           ws.Branch,
		Source:           model.SourceCLI,
		FilePath:         eventsPath,
	}
	if ws.Summary != "" {
		meta.Title = parse.Title(ws.Summary)
	} else {
		meta.Title = parse.Title(firstUser)
	}

	meta.CreatedAt = normalizeTime(ws.CreatedAt)
	if meta.CreatedAt == "" {
		meta.CreatedAt = normalizeTime(firstTS)
	}
	meta.UpdatedAt = normalizeTime(ws.UpdatedAt)
	if meta.UpdatedAt == "" {
		meta.UpdatedAt = parse.FormatTime(info.ModTime())
	}
	meta.CreatedAt, meta.UpdatedAt = parse.OrderTimes(meta.CreatedAt, meta.UpdatedAt)
	meta.Status = a.status(dir, eventsPath, info)
	return meta, nil
}

// status classifies a session directory: a fresh lock file means running;
// an abort near the end of the log means error (completed when the user
// cancelled); otherwise a recently written log means running.
func (a *Adapter) status(dir, eventsPath string, eventsInfo os.FileInfo) model.Status {
	now := a.now()

	locks, _ := filepath.Glob(filepath.Join(dir, lockPattern))
	for _, lock := range locks {
		if info, err := os.Stat(lock); err == nil && source.Within(now, info.ModTime(), lockWindow) {
			return model.StatusRunning
		}
	}

	if eventsInfo == nil {
		return model.StatusCompleted
	}

	if lines, err := parse.TailLines(eventsPath, tailBytes, tailLines); err == nil {
		for i := len(lines) - 1; i >= 0; i-- {
			var ev event
			if err := json.Unmarshal([]byte(lines[i]), &ev); err != nil || ev.Type != "abort" {
				continue
			}
			if cancelReasons[strings.ToLower(parse.Str(ev.Data, "reason"))] {
				return model.StatusCompleted
			}
			return model.StatusError
		}
	}

	if source.Within(now, eventsInfo.ModTime(), activeWindow) {
		return model.StatusRunning
	}
	return model.StatusCompleted
}

func (a *Adapter) IsMember(id string) bool {
	if a.root == "" || !scan.SafeID(id) {
		return false
	}
	info, err := os.Stat(filepath.Join(a.root, id, scan.CopilotWorkspaceFile))
	return err == nil && !info.IsDir()
}

func (a *Adapter) LoadDetail(ctx context.Context, id string) (*model.SessionDetail, error) {
	if !a.IsMember(id) {
		return nil, fmt.Errorf("cli %s: %w", id, model.ErrSessionNotFound)
	}
	dir := filepath.Join(a.root, id)
	ws, err := readWorkspace(dir)
	if err != nil {
		return nil, err
	}

	eventsPath := filepath.Join(dir, scan.CopilotEventsFile)
	info, err := parse.StatWithinLimit(eventsPath)
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		return nil, err
	}

	d := &model.SessionDetail{
		SessionMeta: model.SessionMeta{
			ID:               id,
			WorkingDirectory: ws.Cwd,
			RepositoryRoot:   ws.GitRoot,
			Branch:           ws.Branch,
			CreatedAt:        normalizeTime(ws.CreatedAt),
			UpdatedAt:        normalizeTime(ws.UpdatedAt),
			Source:           model.SourceCLI,
			FilePath:         eventsPath,
		},
	}

	var firstUser string
	if info != nil {
		err = parse.ScanLines(eventsPath, func(_ int, line []byte) bool {
			var raw any
			if err := json.Unmarshal(line, &raw); err != nil {
				return true
			}
			obj, ok := parse.Sanitize(raw).(map[string]any)
			if !ok {
				return true
			}
			ev := event{
				Type:      parse.Str(obj, "type"),
				ID:        parse.Str(obj, "id"),
				Timestamp: parse.Str(obj, "timestamp"),
				ParentID:  parse.Str(obj, "parentId"),
				Data:      parse.Obj(obj, "data"),
			}
			if ev.Data == nil {
				ev.Data = map[string]any{}
			}
			if ce, ok := convert(d, &ev); ok {
				if ce.Type == model.EventUserMessage && firstUser == "" {
					firstUser = ce.Text()
				}
				d.Events = append(d.Events, ce)
			}
			return ctx.Err() == nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %v: %w", eventsPath, err, model.ErrCorrupt)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if ws.Summary != "" {
		d.Title = parse.Title(ws.Summary)
	} else {
		d.Title = parse.Title(firstUser)
	}
	d.PlanContent = readPlan(dir)
	d.HasSnapshots = hasEntries(filepath.Join(dir, checkpointsDir))

	parse.Finalize(d)
	if d.UpdatedAt == "" && info != nil {
		d.UpdatedAt = parse.FormatTime(info.ModTime())
	}
	d.CreatedAt, d.UpdatedAt = parse.OrderTimes(d.CreatedAt, d.UpdatedAt)
	d.Status = a.status(dir, eventsPath, info)
	return d, nil
}

func normalizeTime(s string) string {
	t := parse.ParseTimestamp(strings.TrimSpace(s))
	return parse.FormatTime(t)
}

func readPlan(dir string) string {
	path := filepath.Join(dir, planFile)
	info, err := os.Stat(path)
	if err != nil || info.Size() > parse.MaxFileSize {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func hasEntries(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
