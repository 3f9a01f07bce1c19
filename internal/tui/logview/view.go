// Package logview is the append-only search log with in-log search.
package logview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Model struct {
	viewport viewport.Model
	lines    []string
	title    string
	width    int
	height   int
	ready    bool
	focused  bool

	// In-log search
	searchInput textinput.Model
	searching   bool
	searchQuery string
	matchLines  []int // 0-based line indices of matches
	matchIndex  int
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search in log..."
	ti.CharLimit = 256
	return Model{searchInput: ti, title: "Log"}
}

// Clear empties the log for a new run.
func (m *Model) Clear() {
	m.lines = nil
	m.searchQuery = ""
	m.matchLines = nil
	m.matchIndex = 0
	if m.ready {
		m.viewport.SetContent("")
		m.viewport.GotoTop()
	}
}

// Append adds lines. A viewport that was at the bottom keeps following;
// otherwise the scroll position is preserved.
func (m *Model) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	m.lines = append(m.lines, lines...)
	if m.searchQuery != "" {
		m.findMatches()
	}
	if !m.ready {
		return
	}

	wasAtBottom := m.viewport.AtBottom()
	prevOffset := m.viewport.YOffset

	m.viewport.SetContent(m.applyHighlights())

	if wasAtBottom {
		m.viewport.GotoBottom()
	} else {
		m.viewport.SetYOffset(prevOffset)
	}
}

// Lines returns the log content.
func (m Model) Lines() []string {
	return m.lines
}

func (m *Model) SetFocused(focused bool) {
	m.focused = focused
	if !focused && m.searching {
		m.searching = false
		m.searchInput.Blur()
	}
}

func (m Model) IsSearching() bool {
	return m.searching
}

func (m Model) MatchCount() int {
	return len(m.matchLines)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searchQuery = m.searchInput.Value()
				m.findMatches()
				m.refresh()
				if len(m.matchLines) > 0 {
					m.matchIndex = 0
					m.viewport.SetYOffset(m.matchLines[0])
				}
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.searching = true
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			return m, textinput.Blink
		case "n":
			m.jump(1)
			return m, nil
		case "N":
			m.jump(-1)
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 1
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
			m.viewport.SetContent(m.applyHighlights())
			m.viewport.GotoBottom()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		return m, nil
	}

	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// JumpTo highlights the lines containing query and scrolls to the first.
func (m *Model) JumpTo(query string) {
	m.searching = false
	m.searchInput.Blur()
	m.searchQuery = query
	m.matchIndex = 0
	m.findMatches()
	m.refresh()
	if m.ready && len(m.matchLines) > 0 {
		m.viewport.SetYOffset(m.matchLines[0])
	}
}

func (m *Model) jump(delta int) {
	if len(m.matchLines) == 0 {
		return
	}
	m.matchIndex = (m.matchIndex + delta + len(m.matchLines)) % len(m.matchLines)
	m.refresh()
	m.viewport.SetYOffset(m.matchLines[m.matchIndex])
}

func (m *Model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.applyHighlights())
	}
}

func (m *Model) findMatches() {
	m.matchLines = nil
	if m.searchQuery == "" {
		return
	}
	query := strings.ToLower(m.searchQuery)
	for i, line := range m.lines {
		if strings.Contains(strings.ToLower(line), query) {
			m.matchLines = append(m.matchLines, i)
		}
	}
	if m.matchIndex >= len(m.matchLines) {
		m.matchIndex = 0
	}
}

// applyHighlights returns the content with matching lines highlighted.
func (m Model) applyHighlights() string {
	if m.searchQuery == "" || len(m.matchLines) == 0 {
		return strings.Join(m.lines, "\n")
	}

	highlight := lipgloss.NewStyle().Background(lipgloss.Color("#374151"))
	current := lipgloss.NewStyle().Background(lipgloss.Color("#92400E")).Bold(true)

	out := make([]string, len(m.lines))
	copy(out, m.lines)
	for n, idx := range m.matchLines {
		if n == m.matchIndex {
			out[idx] = current.Render(out[idx])
		} else {
			out[idx] = highlight.Render(out[idx])
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) View() string {
	header := fmt.Sprintf(" %s  %d lines", m.title, len(m.lines))
	if m.ready && len(m.lines) > 0 {
		header += fmt.Sprintf("  %3.f%%", m.viewport.ScrollPercent()*100)
	}
	if m.searchQuery != "" && len(m.matchLines) > 0 {
		header += fmt.Sprintf("  [%d/%d matches]", m.matchIndex+1, len(m.matchLines))
	} else if m.searchQuery != "" {
		header += "  [no matches]"
	}
	headerLine := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Render(header)

	if m.searching {
		headerLine = "  /" + m.searchInput.View()
	}

	if len(m.lines) == 0 {
		return headerLine + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).
			Render("  Fill in the form and press enter to search.")
	}
	return headerLine + "\n" + m.viewport.View()
}
