package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
)

const debounceDelay = 200 * time.Millisecond

// Backend is the slice of the hub the TUI needs.
type Backend interface {
	ListSessions(ctx context.Context) ([]model.SessionMeta, error)
	GetSession(ctx context.Context, ref string) (*model.SessionDetail, error)
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
	Refresh()
}

type tuiMode int

const (
	modeSearch tuiMode = iota
	modeList
)

// message types

type resultsMsg struct {
	query string
	items []item
	err   error
}

type debounceTickMsg struct {
	query string
}

// model

type appModel struct {
	backend     Backend
	searchOpts  search.Options
	mode        tuiMode
	query       string
	items       []item
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // avoids duplicate renders
	showTools   bool
	width       int
	height      int
	ready       bool
	quitting    bool
	selected    *item
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.SetValue(value)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256
	return ti
}

func initialModel(b Backend, mode tuiMode, query string, opts search.Options) appModel {
	placeholder := "Search..."
	if mode == modeList {
		placeholder = "Filter..."
	}
	return appModel{
		backend:     b,
		searchOpts:  opts,
		mode:        mode,
		query:       query,
		filterInput: newInput(placeholder, query),
		preview:     viewport.New(0, 0),
	}
}

// Run starts the TUI in search mode and blocks until it exits. Selecting
// a result copies its resume command to the clipboard.
func Run(b Backend, query string, opts search.Options) error {
	return run(initialModel(b, modeSearch, query, opts))
}

// RunList starts the TUI in list mode, showing every session newest first.
func RunList(b Backend, opts search.Options) error {
	return run(initialModel(b, modeList, "", opts))
}

func run(m appModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(appModel)
	if fm.selected != nil {
		return copyResumeCommand(fm.selected.meta)
	}
	return nil
}

// ResumeCommand returns the shell command that reopens a session in the
// assistant that recorded it, prefixed with a cd into its directory.
func ResumeCommand(meta model.SessionMeta) string {
	var resumeCmd string
	switch meta.Source {
	case model.SourceCLI:
		resumeCmd = "copilot --resume " + meta.ID
	case model.SourceClaudeCode:
		resumeCmd = "claude --resume " + meta.ID
	case model.SourceVSCode:
		if meta.WorkingDirectory != "" {
			return "code " + shellQuote(meta.WorkingDirectory)
		}
		resumeCmd = meta.ID
	default:
		resumeCmd = meta.ID
	}

	if meta.WorkingDirectory != "" {
		return fmt.Sprintf("cd %s && %s", shellQuote(meta.WorkingDirectory), resumeCmd)
	}
	return resumeCmd
}

func shellQuote(s string) string {
	if !strings.ContainsAny(s, " '\"$`\\&;|<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func copyResumeCommand(meta model.SessionMeta) error {
	fullCmd := ResumeCommand(meta)
	if err := clipboard.WriteAll(fullCmd); err != nil {
		fmt.Printf("%s\n", fullCmd)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", fullCmd)
	return nil
}

// Init triggers the initial search/list load.
func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == modeList || m.query != "" {
		cmds = append(cmds, m.doQuery(m.query))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if m.cursor < len(m.items) {
				it := m.items[m.cursor]
				m.selected = &it
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.Refresh):
			m.backend.Refresh()
			m.previewKey = ""
			return m, m.doQuery(m.query)

		case key.Matches(msg, keys.Tools):
			m.showTools = !m.showTools
			return m, m.loadCurrentPreview()
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if newQuery := m.filterInput.Value(); newQuery != m.query {
			m.query = newQuery
			cmds = append(cmds, m.scheduleDebouncedQuery(newQuery))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.items) == 0 {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			maxOffset := max(0, len(m.items)-m.panelHeight()/linesPerItem)
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.items) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			if vpCmd != nil {
				cmds = append(cmds, vpCmd)
			}
			return m, tea.Batch(cmds...)
		}
		return m, nil

	case debounceTickMsg:
		// Only fire if the query hasn't changed since the tick was scheduled
		if msg.query == m.query {
			cmds = append(cmds, m.doQuery(msg.query))
		}
		return m, tea.Batch(cmds...)

	case resultsMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.cursor = 0
		m.listOffset = 0
		m.previewKey = ""
		if msg.err != nil {
			m.items = nil
			m.preview.SetContent("Error: " + msg.err.Error())
			return m, nil
		}
		m.items = msg.items
		if len(m.items) == 0 {
			m.preview.SetContent("")
			return m, nil
		}
		return m, m.loadCurrentPreview()

	case previewRenderedMsg:
		if msg.key == m.previewKey {
			return m, nil
		}
		if m.cursor < len(m.items) && msg.key != previewKey(m.items[m.cursor], m.query, m.showTools) {
			return m, nil // stale preview
		}
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			if msg.hitLine > 0 {
				m.preview.SetYOffset(msg.hitLine)
			} else {
				m.preview.GotoTop()
			}
		}
		m.previewKey = msg.key
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m appModel) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, m.filterInput.View(), panels, m.statusBar())
}

// helper methods

func (m appModel) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	return max(20, m.width*40/100-4)
}

func (m appModel) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for preview, minus border padding
	return max(20, m.width*60/100-4)
}

func (m appModel) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// input row (1) + status bar (1) + borders (4)
	return max(5, m.height-6)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m appModel) hitTest(x, y int) (mouseRegion, int) {
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + m.panelHeight() - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + relY/linesPerItem
	}
	if x > listBoxRight+1 {
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m appModel) statusBar() string {
	noun := "results"
	if m.mode == modeList && m.query == "" {
		noun = "sessions"
	}
	tools := "off"
	if m.showTools {
		tools = "on"
	}
	parts := []string{
		fmt.Sprintf("%d %s", len(m.items), noun),
		"click/up/dn navigate",
		"scroll/C-u/C-d preview",
		"C-t tools " + tools,
		"C-r rescan",
		"Enter copy resume cmd",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

// doQuery lists every session when query is empty in list mode and runs a
// full-text search otherwise.
func (m appModel) doQuery(query string) tea.Cmd {
	b := m.backend
	opts := m.searchOpts
	listMode := m.mode == modeList
	return func() tea.Msg {
		ctx := context.Background()
		if strings.TrimSpace(query) == "" {
			if !listMode {
				return resultsMsg{query: query}
			}
			sessions, err := b.ListSessions(ctx)
			if err != nil {
				return resultsMsg{query: query, err: err}
			}
			if opts.Source != "" && opts.Source != search.SourceAll {
				sessions = filterSource(sessions, opts.Source)
			}
			return resultsMsg{query: query, items: itemsFromSessions(sessions)}
		}
		results, err := b.Search(ctx, query, opts)
		return resultsMsg{query: query, items: itemsFromResults(results), err: err}
	}
}

func filterSource(sessions []model.SessionMeta, src string) []model.SessionMeta {
	var out []model.SessionMeta
	for _, s := range sessions {
		if string(s.Source) == src {
			out = append(out, s)
		}
	}
	return out
}

func (m appModel) scheduleDebouncedQuery(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m appModel) loadCurrentPreview() tea.Cmd {
	if m.cursor >= len(m.items) {
		return nil
	}
	it := m.items[m.cursor]
	if previewKey(it, m.query, m.showTools) == m.previewKey {
		return nil // already showing this preview
	}
	return loadPreviewCmd(m.backend, it, m.query, m.previewWidth(), m.showTools)
}
