package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorTool    = "\033[2;36m" // dim cyan for tool calls
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
	colorFailed  = "\033[31m"

	maxToolLine = 160
)

type Options struct {
	Context int    // messages before/after the hit to show; <0 shows all
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting and hit selection
	Tools   bool   // include tool start/complete lines
}

// highlightKeywords wraps case-insensitive matches of the query tokens in
// bold red ANSI codes.
func highlightKeywords(text string, tokens []string) string {
	if len(tokens) == 0 {
		return text
	}
	runes := []rune(text)
	lower := []rune(strings.Map(unicode.ToLower, text))
	marked := make([]bool, len(runes))
	for _, tok := range tokens {
		t := []rune(tok)
		for i := 0; i+len(t) <= len(lower); i++ {
			if string(lower[i:i+len(t)]) == tok {
				for k := i; k < i+len(t); k++ {
					marked[k] = true
				}
			}
		}
	}

	var b strings.Builder
	in := false
	for i, r := range runes {
		if marked[i] != in {
			if marked[i] {
				b.WriteString(colorBoldRed)
			} else {
				b.WriteString(colorReset)
			}
			in = marked[i]
		}
		b.WriteRune(r)
	}
	if in {
		b.WriteString(colorReset)
	}
	return b.String()
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Header summarizes a session in one line.
func Header(d *model.SessionDetail) string {
	parts := []string{model.Ref(d.Source, d.ID), string(d.Status)}
	if d.WorkingDirectory != "" {
		parts = append(parts, d.WorkingDirectory)
	}
	if d.Branch != "" {
		parts = append(parts, "@"+d.Branch)
	}
	parts = append(parts, FormatDuration(d.Duration))
	return strings.Join(parts, "  ")
}

// FormatDuration renders milliseconds as a short human duration.
func FormatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

type line struct {
	ev    model.SessionEvent
	label string
	color string
	text  string
}

// visible turns events into renderable messages.
func visible(d *model.SessionDetail, tools bool) []line {
	var out []line
	for _, ev := range d.Events {
		switch ev.Type {
		case model.EventUserMessage:
			out = append(out, line{ev: ev, label: "USER", color: colorUser, text: ev.Text()})
		case model.EventAssistantMessage:
			out = append(out, line{ev: ev, label: "ASST", color: colorAssist, text: ev.Text()})
		case model.EventToolStart:
			if tools {
				name, _ := ev.Data["toolName"].(string)
				out = append(out, line{ev: ev, label: "TOOL", color: colorTool, text: name + " " + toolArgs(ev.Data["arguments"])})
			}
		case model.EventToolComplete:
			if tools {
				if ok, _ := ev.Data["success"].(bool); !ok {
					out = append(out, line{ev: ev, label: "FAIL", color: colorFailed, text: fmt.Sprint(ev.Data["toolCallId"])})
				}
			}
		}
	}
	return out
}

func toolArgs(v any) string {
	var s string
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		s = a
	default:
		s = fmt.Sprint(a)
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxToolLine {
		s = string([]rune(s)[:maxToolLine]) + "..."
	}
	return s
}

// hitIndex returns the first message containing every query token, else
// the first containing any, else -1.
func hitIndex(lines []line, tokens []string) int {
	if len(tokens) == 0 {
		return -1
	}
	anyHit := -1
	for i, l := range lines {
		lower := strings.Map(unicode.ToLower, l.text)
		n := 0
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				n++
			}
		}
		if n == len(tokens) {
			return i
		}
		if n > 0 && anyHit < 0 {
			anyHit = i
		}
	}
	return anyHit
}

// Conversation renders d as an ANSI transcript and returns it with the
// 0-based line number of the hit message header (-1 if none).
func Conversation(d *model.SessionDetail, opts Options) (string, int) {
	if opts.Context == 0 {
		opts.Context = 10
	}

	lines := visible(d, opts.Tools)
	if len(lines) == 0 {
		return "(empty session)", -1
	}

	tokens := search.Tokenize(opts.Query)
	hit := hitIndex(lines, tokens)

	start, end := 0, len(lines)
	if opts.Context > 0 && hit >= 0 {
		start = max(0, hit-opts.Context)
		end = min(len(lines), hit+opts.Context+1)
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + strings.Repeat("-", 50) + colorReset

	// wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(colorDim + "--- " + Header(d) + " ---" + colorReset)
	if d.Title != "" {
		writeLine(d.Title)
	}

	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		l := lines[i]
		if i > start {
			writeLine(separator)
		}
		if i == hit {
			hitLine = lineCount
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, l.label, l.ev.Timestamp, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", l.color, l.label, colorReset, colorDim, l.ev.Timestamp, colorReset))
		}

		text := highlightKeywords(l.text, tokens)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("")
	}

	if rest := len(lines) - end; rest > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, rest, colorReset))
	}

	return b.String(), hitLine
}
