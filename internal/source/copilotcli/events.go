package copilotcli

import (
	"strings"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
)

// convert maps one native event onto the canonical vocabulary. Session
// bookkeeping records update d and produce no timeline entry.
func convert(d *model.SessionDetail, ev *event) (model.SessionEvent, bool) {
	switch ev.Type {
	case "session.start":
		if v := parse.Str(ev.Data, "copilotVersion"); v != "" {
			d.Version = v
		}
		if d.WorkingDirectory == "" {
			d.WorkingDirectory = parse.Str(parse.Obj(ev.Data, "context"), "cwd")
		}
		return model.SessionEvent{}, false

	case "user.message":
		content := strings.TrimSpace(parse.Str(ev.Data, "content"))
		if content == "" {
			return model.SessionEvent{}, false
		}
		out := parse.MessageEvent(model.EventUserMessage, ev.ID, ev.Timestamp, content)
		if n := len(parse.Arr(ev.Data, "attachments")); n > 0 {
			out.Data["attachments"] = n
		}
		return out, true

	case "assistant.message":
		content := strings.TrimSpace(parse.Str(ev.Data, "content"))
		requests := parse.Arr(ev.Data, "toolRequests")
		if content == "" && len(requests) == 0 {
			return model.SessionEvent{}, false
		}
		out := parse.MessageEvent(model.EventAssistantMessage, ev.ID, ev.Timestamp, content)
		if len(requests) > 0 {
			out.Data["toolRequests"] = len(requests)
		}
		return out, true

	case "assistant.turn_start":
		return model.SessionEvent{
			Type:      model.EventTurnStart,
			ID:        ev.ID,
			Timestamp: ev.Timestamp,
			Data:      map[string]any{"turnId": parse.Str(ev.Data, "turnId")},
		}, true

	case "tool.execution_start":
		name := parse.Str(ev.Data, "toolName")
		return model.SessionEvent{
			Type:      model.EventToolStart,
			ID:        ev.ID,
			Timestamp: ev.Timestamp,
			Data: map[string]any{
				"toolCallId": parse.Str(ev.Data, "toolCallId"),
				"toolName":   parse.NormalizeToolName(name),
				"rawName":    name,
				"arguments":  ev.Data["arguments"],
			},
		}, true

	case "tool.execution_complete":
		success := true
		if v, ok := ev.Data["success"].(bool); ok {
			success = v
		}
		return model.SessionEvent{
			Type:      model.EventToolComplete,
			ID:        ev.ID,
			Timestamp: ev.Timestamp,
			Data: map[string]any{
				"toolCallId": parse.Str(ev.Data, "toolCallId"),
				"success":    success,
				"result":     resultText(ev.Data["result"]),
			},
		}, true
	}
	return model.SessionEvent{}, false
}

// resultText accepts a plain string or an object with a content field.
func resultText(v any) string {
	switch r := v.(type) {
	case string:
		return r
	case map[string]any:
		if s := parse.Str(r, "content"); s != "" {
			return s
		}
		return parse.Str(r, "detailedContent")
	}
	return ""
}
