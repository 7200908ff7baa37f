package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/ai-session-hub/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	hitLine int
	err     error
}

// loadPreviewCmd loads and renders one session off the UI goroutine.
func loadPreviewCmd(b Backend, it item, query string, width int, tools bool) tea.Cmd {
	key := previewKey(it, query, tools)
	return func() tea.Msg {
		d, err := b.GetSession(context.Background(), it.meta.Key())
		if err != nil {
			return previewRenderedMsg{key: key, err: err}
		}
		content, hitLine := render.Conversation(d, render.Options{
			Context: -1,
			Width:   width,
			Query:   query,
			Tools:   tools,
		})
		return previewRenderedMsg{key: key, content: content, hitLine: hitLine}
	}
}

// previewKey identifies a rendered preview so duplicate renders are skipped.
func previewKey(it item, query string, tools bool) string {
	k := it.meta.Key() + "|" + query
	if tools {
		k += "|tools"
	}
	return k
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
