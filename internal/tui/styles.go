package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
)

var (
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorTertiary  = lipgloss.Color("13")  // bright magenta
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray
	colorRunning   = lipgloss.Color("10")
	colorError     = lipgloss.Color("9")

	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleListSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleSnippet = lipgloss.NewStyle().
			Foreground(colorDim)

	sourceStyles = map[model.Source]lipgloss.Style{
		model.SourceCLI:        lipgloss.NewStyle().Foreground(colorSecondary),
		model.SourceVSCode:     lipgloss.NewStyle().Foreground(colorPrimary),
		model.SourceClaudeCode: lipgloss.NewStyle().Foreground(colorTertiary),
	}

	statusMarks = map[model.Status]string{
		model.StatusRunning:   lipgloss.NewStyle().Foreground(colorRunning).Render("●"),
		model.StatusError:     lipgloss.NewStyle().Foreground(colorError).Render("✗"),
		model.StatusCompleted: " ",
	}
)

// sourceLabel renders a fixed-width, colored source tag.
func sourceLabel(s model.Source) string {
	label := string(s)
	if s == model.SourceClaudeCode {
		label = "claude"
	}
	for len(label) < 6 {
		label += " "
	}
	if st, ok := sourceStyles[s]; ok {
		return st.Render(label)
	}
	return label
}
