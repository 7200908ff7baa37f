// Package claudecode reads Claude Code transcripts: one append-only JSONL
// file per session under ~/.claude/projects/<encoded-cwd>/.
package claudecode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
	"github.com/Zuo-Peng/ai-session-hub/internal/scan"
	"github.com/Zuo-Peng/ai-session-hub/internal/source"
)

// runningWindow is how recently the transcript must have been written for
// the session to count as running. Transcripts carry no error signal.
const runningWindow = 5 * time.Minute

const planTool = "ExitPlanMode"

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

func (a *Adapter) Source() model.Source { return model.SourceClaudeCode }

func (a *Adapter) Root() string { return a.root }

// record is one transcript line.
type record struct {
	Type        string          `json:"type"`
	UUID        string          `json:"uuid"`
	ParentUUID  string          `json:"parentUuid"`
	IsSidechain bool            `json:"isSidechain"`
	IsMeta      bool            `json:"isMeta"`
	SessionID   string          `json:"sessionId"`
	Cwd         string          `json:"cwd"`
	GitBranch   string          `json:"gitBranch"`
	Version     string          `json:"version"`
	Timestamp   string          `json:"timestamp"`
	Summary     string          `json:"summary"`
	Message     json.RawMessage `json:"message"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// sidechains tracks side-channel records and their descendants.
type sidechains map[string]bool

// exclude reports whether rec belongs to a side channel, remembering it so
// its children are excluded too.
func (s sidechains) exclude(rec *record) bool {
	if rec.IsSidechain || (rec.ParentUUID != "" && s[rec.ParentUUID]) {
		if rec.UUID != "" {
			s[rec.UUID] = true
		}
		return true
	}
	return false
}

func (a *Adapter) ListMetadata(ctx context.Context) source.ListResult {
	var result source.ListResult
	if a.root == "" {
		return result
	}

	for _, fi := range scan.ScanClaude(a.root) {
		if ctx.Err() != nil {
			break
		}
		meta, err := a.readMeta(fi.Path)
		if err != nil {
			logging.Logger.Debug("Skipping Claude Code transcript", "file", fi.Path, "error", err)
			result.Skip(model.SourceClaudeCode, fi.ID, fi.Path, err)
			continue
		}
		result.Sessions = append(result.Sessions, *meta)
	}
	return result
}

// readMeta scans the envelope of every line but decodes message bodies
// only until a title is found.
func (a *Adapter) readMeta(path string) (*model.SessionMeta, error) {
	info, err := parse.StatWithinLimit(path)
	if err != nil {
		return nil, err
	}

	meta := &model.SessionMeta{
		ID:       strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		Source:   model.SourceClaudeCode,
		FilePath: path,
	}

	side := make(sidechains)
	valid := 0
	hasUser := false
	var firstUserText, summary string
	var first, last time.Time

	err = parse.ScanLines(path, func(_ int, line []byte) bool {
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return true
		}
		valid++

		if rec.Type == "summary" {
			if rec.Summary != "" {
				summary = rec.Summary
			}
			return true
		}
		if side.exclude(&rec) {
			return true
		}
		if meta.WorkingDirectory == "" && rec.Cwd != "" {
			meta.WorkingDirectory = rec.Cwd
		}
		if meta.Branch == "" && rec.GitBranch != "" {
			meta.Branch = rec.GitBranch
		}
		if ts := parse.ParseTimestamp(rec.Timestamp); !ts.IsZero() {
			if first.IsZero() || ts.Before(first) {
				first = ts
			}
			if ts.After(last) {
				last = ts
			}
		}

		if rec.Type != "user" || rec.IsMeta || hasUser {
			return true
		}
		var msg message
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			return true
		}
		if text := userText(msg.Content); text != "" {
			hasUser = true
			firstUserText = text
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %v: %w", path, err, model.ErrCorrupt)
	}
	if valid == 0 {
		return nil, fmt.Errorf("%s: no valid records: %w", path, model.ErrCorrupt)
	}
	if !hasUser {
		return nil, fmt.Errorf("%s: %w", path, model.ErrNoUserMessages)
	}

	if summary != "" {
		meta.Title = parse.Title(summary)
	} else {
		meta.Title = parse.Title(firstUserText)
	}
	if first.IsZero() {
		first = info.ModTime()
		last = info.ModTime()
	}
	meta.CreatedAt = parse.FormatTime(first)
	meta.UpdatedAt = parse.FormatTime(last)
	meta.Status = a.status(info)
	return meta, nil
}

func (a *Adapter) status(info os.FileInfo) model.Status {
	if source.Within(a.now(), info.ModTime(), runningWindow) {
		return model.StatusRunning
	}
	return model.StatusCompleted
}

func (a *Adapter) IsMember(id string) bool {
	_, ok := a.find(id)
	return ok
}

func (a *Adapter) find(id string) (string, bool) {
	if a.root == "" || !scan.SafeID(id) {
		return "", false
	}
	matches, err := filepath.Glob(filepath.Join(a.root, "*", id+".jsonl"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

func (a *Adapter) LoadDetail(ctx context.Context, id string) (*model.SessionDetail, error) {
	path, ok := a.find(id)
	if !ok {
		return nil, fmt.Errorf("claude-code %s: %w", id, model.ErrSessionNotFound)
	}
	info, err := parse.StatWithinLimit(path)
	if err != nil {
		return nil, err
	}

	b := newBuilder(id, path)
	err = parse.ScanLines(path, func(_ int, line []byte) bool {
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return true
		}
		b.add(&rec)
		return ctx.Err() == nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %v: %w", path, err, model.ErrCorrupt)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.valid == 0 {
		return nil, fmt.Errorf("%s: no valid records: %w", path, model.ErrCorrupt)
	}

	d := b.detail()
	d.Status = a.status(info)
	if d.CreatedAt == "" {
		d.CreatedAt = parse.FormatTime(info.ModTime())
		d.UpdatedAt = d.CreatedAt
	}
	return d, nil
}
