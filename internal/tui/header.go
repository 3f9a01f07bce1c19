package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/altinukshini/urlgrep/internal/ui"
)

func RenderHeader(version, root string, running bool, width int) string {
	title := " urlgrep " + version
	if root != "" {
		title += " | " + root
	}
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(text.Truncate(max(width-12, 10), title))

	state := ""
	if running {
		state = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSuccess).Render("[RUNNING] ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(state)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#1F2937")).
		Width(width).
		Render(fmt.Sprint(left, padding, state))
}
