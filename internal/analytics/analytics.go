// Package analytics aggregates usage figures over canonical sessions.
package analytics

import (
	"sort"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
)

// DefaultTopN bounds the ranked lists of a report.
const DefaultTopN = 10

// Count is one row of a ranked or bucketed list.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Report struct {
	TotalSessions   int                  `json:"totalSessions"`
	BySource        map[model.Source]int `json:"bySource"`
	ByStatus        map[model.Status]int `json:"byStatus"`
	AnalyzedDetails int                  `json:"analyzedDetails"`
	TotalDuration   int64                `json:"totalDurationMs"`
	AverageDuration int64                `json:"averageDurationMs"`
	EventCounts     map[string]int       `json:"eventCounts"`
	TopTools        []Count              `json:"topTools"`
	SessionsPerDay  []Count              `json:"sessionsPerDay"`
	TopDirectories  []Count              `json:"topDirectories"`
}

// Compute builds a report. sessions drives the counts by source, status,
// day and directory; details, which may be a subset and may contain nils
// for sessions that failed to load, drive durations, event and tool totals.
func Compute(sessions []model.SessionMeta, details []*model.SessionDetail, topN int) *Report {
	if topN <= 0 {
		topN = DefaultTopN
	}
	r := &Report{
		TotalSessions: len(sessions),
		BySource:      make(map[model.Source]int),
		ByStatus:      make(map[model.Status]int),
		EventCounts:   make(map[string]int),
	}

	days := make(map[string]int)
	dirs := make(map[string]int)
	for _, s := range sessions {
		r.BySource[s.Source]++
		r.ByStatus[s.Status]++
		if day := dayOf(s.CreatedAt); day != "" {
			days[day]++
		}
		if s.WorkingDirectory != "" {
			dirs[s.WorkingDirectory]++
		}
	}

	tools := make(map[string]int)
	for _, d := range details {
		if d == nil {
			continue
		}
		r.AnalyzedDetails++
		r.TotalDuration += d.Duration
		for typ, n := range d.EventCounts {
			r.EventCounts[typ] += n
		}
		for _, ev := range d.Events {
			if ev.Type != model.EventToolStart {
				continue
			}
			if name, _ := ev.Data["toolName"].(string); name != "" {
				tools[name]++
			}
		}
	}
	if r.AnalyzedDetails > 0 {
		r.AverageDuration = r.TotalDuration / int64(r.AnalyzedDetails)
	}

	r.TopTools = ranked(tools, topN)
	r.TopDirectories = ranked(dirs, topN)
	r.SessionsPerDay = chronological(days)
	return r
}

// dayOf returns the UTC calendar date of an ISO timestamp.
func dayOf(ts string) string {
	t := parse.ParseTimestamp(ts)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// ranked sorts by count descending, then name, and keeps the first n.
func ranked(m map[string]int, n int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func chronological(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func toCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Count: v})
	}
	return out
}
