package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
)

// linesPerItem is the number of terminal lines each row occupies.
const linesPerItem = 2

// item is one row of the list panel: a session plus an optional snippet.
type item struct {
	meta    model.SessionMeta
	snippet string
}

func itemsFromResults(results []search.Result) []item {
	items := make([]item, 0, len(results))
	for _, r := range results {
		e := r.Entry
		it := item{meta: model.SessionMeta{
			ID:               e.ID,
			Source:           e.Source,
			Title:            e.Title,
			WorkingDirectory: e.WorkingDirectory,
			UpdatedAt:        e.Date,
		}}
		if len(r.Highlights) > 0 {
			it.snippet = r.Highlights[0]
		}
		items = append(items, it)
	}
	return items
}

func itemsFromSessions(sessions []model.SessionMeta) []item {
	items := make([]item, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, item{meta: s, snippet: s.WorkingDirectory})
	}
	return items
}

// renderList renders the left panel with scrolling.
func (m appModel) renderList(width, height int) string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i, it := range m.items {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatItem(it, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatItem formats a row as two lines:
//
//	line 1: [>] status source  MM-DD  title
//	line 2:    snippet (dimmed)
func formatItem(it item, width int, selected bool) []string {
	date := it.meta.UpdatedAt
	if date == "" {
		date = it.meta.CreatedAt
	}
	if len(date) >= 10 {
		date = date[5:10]
	} else {
		date = "     "
	}

	title := strings.ReplaceAll(it.meta.DisplayTitle(), "\n", " ")
	titleMax := width - 2 - 2 - 7 - 6 - 1
	if titleMax < 0 {
		titleMax = 0
	}
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	mark := statusMarks[it.meta.Status]
	if mark == "" {
		mark = " "
	}
	line1 := fmt.Sprintf("%s %s %s %s", mark, sourceLabel(it.meta.Source), date, title)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.Join(strings.Fields(it.snippet), " ")
	snippetMax := width - 4
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + styleSnippet.Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *appModel) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
