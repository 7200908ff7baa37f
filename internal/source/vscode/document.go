package vscode

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
)

const toolInvocationKind = "toolInvocationSerialized"

// document is a sanitized chatSessions/<id>.json tree.
type document map[string]any

func readDocument(path string) (document, error) {
	if _, err := parse.StatWithinLimit(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", path, err, model.ErrCorrupt)
	}
	obj, ok := parse.Sanitize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: not an object: %w", path, model.ErrCorrupt)
	}
	return document(obj), nil
}

func (doc document) requests() []map[string]any {
	var out []map[string]any
	for _, r := range parse.Arr(doc, "requests") {
		if m, ok := r.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// firstUserText returns the first non-empty prompt of the document.
func (doc document) firstUserText() string {
	for _, r := range doc.requests() {
		if text := requestText(r); text != "" {
			return text
		}
	}
	return ""
}

// entry synthesizes index metadata for a document the store does not list.
func (doc document) entry(id string) indexEntry {
	return indexEntry{
		SessionID:       id,
		Title:           parse.Str(doc, "customTitle"),
		LastMessageDate: parse.Int64(doc, "lastMessageDate"),
		IsEmpty:         doc.firstUserText() == "",
		Timing:          timing{StartTime: parse.Int64(doc, "creationDate")},
	}
}

func requestText(r map[string]any) string {
	return strings.TrimSpace(parse.Str(parse.Obj(r, "message"), "text"))
}

// events converts each request into a user prompt, a turn marker, the
// tool invocations of its response and the assistant reply.
func (doc document) events() []model.SessionEvent {
	var out []model.SessionEvent
	for i, r := range doc.requests() {
		id := parse.Str(r, "requestId")
		if id == "" {
			id = "request-" + strconv.Itoa(i)
		}
		start := parse.Int64(r, "timestamp")
		end := start
		if elapsed := parse.Int64(parse.Obj(parse.Obj(r, "result"), "timings"), "totalElapsed"); start > 0 && elapsed > 0 {
			end = start + elapsed
		}
		startTS, endTS := parse.MillisToISO(start), parse.MillisToISO(end)

		text := requestText(r)
		if text == "" {
			continue
		}
		user := parse.MessageEvent(model.EventUserMessage, id, startTS, text)
		if n := len(parse.Arr(parse.Obj(r, "variableData"), "variables")); n > 0 {
			user.Data["attachments"] = n
		}
		out = append(out, user, model.SessionEvent{
			Type:      model.EventTurnStart,
			ID:        id + "-turn",
			Timestamp: startTS,
			Data:      map[string]any{"turnId": strconv.Itoa(i)},
		})

		var texts []string
		for _, p := range parse.Arr(r, "response") {
			part, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if parse.Str(part, "kind") == toolInvocationKind {
				out = append(out, toolEvents(part, startTS, endTS)...)
				continue
			}
			if v := parse.Str(part, "value"); v != "" {
				texts = append(texts, v)
			}
		}

		if reply := strings.TrimSpace(strings.Join(texts, "")); reply != "" {
			ev := parse.MessageEvent(model.EventAssistantMessage, id+"-response", endTS, reply)
			if m := parse.Str(r, "modelId"); m != "" {
				ev.Data["model"] = m
			}
			out = append(out, ev)
		}
	}
	return out
}

func toolEvents(part map[string]any, startTS, endTS string) []model.SessionEvent {
	name := parse.Str(part, "toolId")
	callID := parse.Str(part, "toolCallId")
	evs := []model.SessionEvent{{
		Type:      model.EventToolStart,
		ID:        callID,
		Timestamp: startTS,
		Data: map[string]any{
			"toolCallId": callID,
			"toolName":   parse.NormalizeToolName(name),
			"rawName":    name,
			"arguments":  invocationMessage(part),
		},
	}}
	if parse.Bool(part, "isComplete") {
		evs = append(evs, model.SessionEvent{
			Type:      model.EventToolComplete,
			ID:        callID,
			Timestamp: endTS,
			Data: map[string]any{
				"toolCallId": callID,
				"success":    !parse.Bool(part, "isError"),
			},
		})
	}
	return evs
}

// invocationMessage is either a plain string or a markdown object.
func invocationMessage(part map[string]any) string {
	switch m := part["invocationMessage"].(type) {
	case string:
		return m
	case map[string]any:
		return parse.Str(m, "value")
	}
	return ""
}
