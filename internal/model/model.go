// Package model holds the source-agnostic session shapes every adapter produces.
package model

import "strings"

type Source string

const (
	SourceCLI        Source = "cli"         // Copilot CLI session-state directories
	SourceVSCode     Source = "vscode"      // VS Code chat sessions behind state.vscdb
	SourceClaudeCode Source = "claude-code" // Claude Code JSONL transcripts
)

// Sources lists every source in membership priority order.
var Sources = []Source{SourceCLI, SourceVSCode, SourceClaudeCode}

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Event types. Every adapter maps its native records onto this vocabulary.
const (
	EventUserMessage      = "user.message"
	EventAssistantMessage = "assistant.message"
	EventToolStart        = "tool.execution_start"
	EventToolComplete     = "tool.execution_complete"
	EventTurnStart        = "assistant.turn_start"
)

type SessionMeta struct {
	ID               string `json:"id"`
	WorkingDirectory string `json:"workingDirectory"`
	RepositoryRoot   string `json:"repositoryRoot,omitempty"`
	Branch           string `json:"branch,omitempty"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	Status           Status `json:"status"`
	Source           Source `json:"source"`
	Title            string `json:"title,omitempty"`
	FilePath         string `json:"filePath,omitempty"`
}

// Key returns the composite "source:id" reference. Ids are only unique
// within a source, so anything that crosses sources should use this.
func (m SessionMeta) Key() string {
	return Ref(m.Source, m.ID)
}

// DisplayTitle falls back to the id when no title could be derived.
func (m SessionMeta) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.ID
}

type SessionEvent struct {
	Type      string         `json:"type"`
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Text returns the message body of user/assistant events.
func (e SessionEvent) Text() string {
	if e.Data == nil {
		return ""
	}
	s, _ := e.Data["content"].(string)
	return s
}

type SessionDetail struct {
	SessionMeta
	Events       []SessionEvent `json:"events"`
	PlanContent  string         `json:"planContent,omitempty"`
	HasSnapshots bool           `json:"hasSnapshots"`
	Version      string         `json:"version,omitempty"`
	EventCounts  map[string]int `json:"eventCounts"`
	Duration     int64          `json:"duration"` // active milliseconds
}

// Ref builds a composite session reference.
func Ref(source Source, id string) string {
	return string(source) + ":" + id
}

// ParseRef splits a composite reference. ok is false for bare ids.
func ParseRef(ref string) (Source, string, bool) {
	for _, s := range Sources {
		prefix := string(s) + ":"
		if strings.HasPrefix(ref, prefix) && len(ref) > len(prefix) {
			return s, ref[len(prefix):], true
		}
	}
	return "", ref, false
}

// ValidSource reports whether s names a known source.
func ValidSource(s string) bool {
	for _, src := range Sources {
		if string(src) == s {
			return true
		}
	}
	return false
}
