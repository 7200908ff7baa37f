package claudecode

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
)

// builder accumulates the main-thread timeline of one transcript.
type builder struct {
	d            *model.SessionDetail
	side         sidechains
	valid        int
	summary      string
	firstUser    string
	awaitingTurn bool
	turns        int
}

func newBuilder(id, path string) *builder {
	return &builder{
		d: &model.SessionDetail{
			SessionMeta: model.SessionMeta{
				ID:       id,
				Source:   model.SourceClaudeCode,
				FilePath: path,
			},
		},
		side: make(sidechains),
	}
}

type assistantMessage struct {
	Model   string `json:"model"`
	Content any    `json:"content"`
}

func (b *builder) add(rec *record) {
	b.valid++

	switch rec.Type {
	case "summary":
		if rec.Summary != "" {
			b.summary = rec.Summary
		}
		return
	case "file-history-snapshot":
		b.d.HasSnapshots = true
		return
	}

	if b.side.exclude(rec) {
		return
	}
	if rec.Version != "" {
		b.d.Version = rec.Version
	}
	if b.d.WorkingDirectory == "" && rec.Cwd != "" {
		b.d.WorkingDirectory = rec.Cwd
	}
	if b.d.Branch == "" && rec.GitBranch != "" {
		b.d.Branch = rec.GitBranch
	}
	if rec.IsMeta {
		return
	}

	switch rec.Type {
	case "user":
		var msg message
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			return
		}
		b.addUser(rec, parse.Sanitize(msg.Content))
	case "assistant":
		var msg assistantMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			return
		}
		b.addAssistant(rec, msg.Model, parse.Sanitize(msg.Content))
	}
}

func (b *builder) addUser(rec *record, content any) {
	var texts []string
	images := 0

	switch c := content.(type) {
	case string:
		texts = append(texts, c)
	case []any:
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch parse.Str(block, "type") {
			case "text":
				texts = append(texts, parse.Str(block, "text"))
			case "image":
				images++
			case "tool_result":
				b.push(model.SessionEvent{
					Type:      model.EventToolComplete,
					ID:        parse.Str(block, "tool_use_id"),
					Timestamp: rec.Timestamp,
					Data: map[string]any{
						"toolCallId": parse.Str(block, "tool_use_id"),
						"success":    !parse.Bool(block, "is_error"),
						"result":     parse.TruncateText(resultText(block["content"]), parse.MaxTextChars),
					},
				})
			}
		}
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if text == "" {
		return
	}
	ev := parse.MessageEvent(model.EventUserMessage, rec.UUID, rec.Timestamp, text)
	if images > 0 {
		ev.Data["images"] = images
	}
	b.push(ev)
	if b.firstUser == "" {
		b.firstUser = text
	}
	b.awaitingTurn = true
}

func (b *builder) addAssistant(rec *record, modelID string, content any) {
	if b.awaitingTurn {
		b.push(model.SessionEvent{
			Type:      model.EventTurnStart,
			ID:        rec.UUID + "-turn",
			Timestamp: rec.Timestamp,
			Data:      map[string]any{"turnId": strconv.Itoa(b.turns)},
		})
		b.turns++
		b.awaitingTurn = false
	}

	var texts []string
	var tools []model.SessionEvent

	switch c := content.(type) {
	case string:
		texts = append(texts, c)
	case []any:
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch parse.Str(block, "type") {
			case "text":
				texts = append(texts, parse.Str(block, "text"))
			case "tool_use":
				name := parse.Str(block, "name")
				input := parse.Obj(block, "input")
				if name == planTool {
					if plan := parse.Str(input, "plan"); plan != "" {
						b.d.PlanContent = plan
					}
				}
				tools = append(tools, model.SessionEvent{
					Type:      model.EventToolStart,
					ID:        parse.Str(block, "id"),
					Timestamp: rec.Timestamp,
					Data: map[string]any{
						"toolCallId": parse.Str(block, "id"),
						"toolName":   parse.NormalizeToolName(name),
						"rawName":    name,
						"arguments":  input,
					},
				})
			}
		}
	}

	if text := strings.TrimSpace(strings.Join(texts, "\n")); text != "" {
		ev := parse.MessageEvent(model.EventAssistantMessage, rec.UUID, rec.Timestamp, text)
		if modelID != "" {
			ev.Data["model"] = modelID
		}
		b.push(ev)
	}
	for _, ev := range tools {
		b.push(ev)
	}
}

func (b *builder) push(ev model.SessionEvent) {
	b.d.Events = append(b.d.Events, ev)
}

func (b *builder) detail() *model.SessionDetail {
	d := b.d
	if b.summary != "" {
		d.Title = parse.Title(b.summary)
	} else {
		d.Title = parse.Title(b.firstUser)
	}
	parse.Finalize(d)
	d.CreatedAt, d.UpdatedAt = parse.OrderTimes(d.CreatedAt, d.UpdatedAt)
	return d
}

// userText returns the typed text of a user message, ignoring tool results
// and attachments.
func userText(content any) string {
	switch c := content.(type) {
	case string:
		return strings.TrimSpace(c)
	case []any:
		var parts []string
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok || parse.Str(block, "type") != "text" {
				continue
			}
			if t := strings.TrimSpace(parse.Str(block, "text")); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// resultText flattens tool_result content, which is a string or a list of
// text blocks.
func resultText(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			if block, ok := item.(map[string]any); ok {
				if t := parse.Str(block, "text"); t != "" {
					parts = append(parts, t)
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}
