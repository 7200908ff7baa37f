package parse

import "github.com/Zuo-Peng/ai-session-hub/internal/model"

// Finalize fills the derived fields of d from its events: eventCounts,
// the gap-capped duration, and createdAt/updatedAt where the metadata
// left them empty.
func Finalize(d *model.SessionDetail) {
	d.EventCounts = CountEvents(d.Events)

	ts := EventTimestamps(d.Events)
	d.Duration = EstimateDuration(ts)

	if len(ts) == 0 {
		return
	}
	minTS, maxTS := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t < minTS {
			minTS = t
		}
		if t > maxTS {
			maxTS = t
		}
	}
	if d.CreatedAt == "" {
		d.CreatedAt = MillisToISO(minTS)
	}
	if d.UpdatedAt == "" {
		d.UpdatedAt = MillisToISO(maxTS)
	}
}

// CountEvents tallies events by type.
func CountEvents(events []model.SessionEvent) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}

// EventTimestamps returns the positive epoch-millisecond timestamps of
// events; unparseable ones are left out.
func EventTimestamps(events []model.SessionEvent) []int64 {
	ts := make([]int64, 0, len(events))
	for _, e := range events {
		if ms := TimestampMillis(e.Timestamp); ms > 0 {
			ts = append(ts, ms)
		}
	}
	return ts
}

// MessageEvent builds a user or assistant message event.
func MessageEvent(eventType, id, timestamp, content string) model.SessionEvent {
	return model.SessionEvent{
		Type:      eventType,
		ID:        id,
		Timestamp: timestamp,
		Data:      map[string]any{"content": TruncateText(content, MaxTextChars)},
	}
}

// OrderTimes keeps createdAt <= updatedAt when both are set.
func OrderTimes(createdAt, updatedAt string) (string, string) {
	if createdAt == "" || updatedAt == "" {
		return createdAt, updatedAt
	}
	c, u := ParseTimestamp(createdAt), ParseTimestamp(updatedAt)
	if !c.IsZero() && !u.IsZero() && c.After(u) {
		return updatedAt, createdAt
	}
	return createdAt, updatedAt
}
