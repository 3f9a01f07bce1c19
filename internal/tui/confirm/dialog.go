// Package confirm is a yes/no dialog for destructive cache actions.
package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/urlgrep/internal/ui"
)

// Action names what the dialog guards.
type Action string

const (
	ActionPurgeCache  Action = "purge-cache"
	ActionDeleteEntry Action = "delete-entry"
)

type ResultMsg struct {
	Confirmed bool
	Action    Action
	// Target is the action's argument, e.g. a cache bucket hash.
	Target string
}

type Model struct {
	title    string
	message  string
	action   Action
	target   string
	active   bool
	selected bool // true = "Yes" highlighted
}

func New(title, message string, action Action, target string) Model {
	return Model{
		title:   title,
		message: message,
		action:  action,
		target:  target,
		active:  true,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		return m.resolve(true)
	case "n", "N", "esc":
		return m.resolve(false)
	case "enter":
		return m.resolve(m.selected)
	case "tab", "left", "right", "h", "l":
		m.selected = !m.selected
	}
	return m, nil
}

func (m Model) resolve(confirmed bool) (Model, tea.Cmd) {
	m.active = false
	res := ResultMsg{Confirmed: confirmed, Action: m.action, Target: m.target}
	return m, func() tea.Msg { return res }
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(56)

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render(m.title)

	yes := lipgloss.NewStyle().Padding(0, 1)
	no := lipgloss.NewStyle().Padding(0, 1)
	if m.selected {
		yes = yes.Bold(true).Background(ui.ColorSuccess).Foreground(lipgloss.Color("#F9FAFB"))
		no = no.Foreground(ui.ColorMuted)
	} else {
		yes = yes.Foreground(ui.ColorMuted)
		no = no.Bold(true).Background(ui.ColorFailure).Foreground(lipgloss.Color("#F9FAFB"))
	}

	content := fmt.Sprintf("%s\n\n%s\n\n%s  %s\n\ny/n to confirm, esc to cancel",
		title, m.message, yes.Render("Yes"), no.Render("No"))
	return style.Render(content)
}
