// Package form is the search form: root address, extensions, pattern,
// credentials and the basic-auth switch.
package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/urlgrep/internal/config"
	"github.com/altinukshini/urlgrep/internal/ui"
)

type field int

const (
	fieldRoot field = iota
	fieldExtensions
	fieldPattern
	fieldLogin
	fieldPassword
	fieldBasic
	fieldCount
)

var labels = [fieldCount]string{
	fieldRoot:       "URL / path:",
	fieldExtensions: "Extensions:",
	fieldPattern:    "Pattern:",
	fieldLogin:      "Login:",
	fieldPassword:   "Password:",
	fieldBasic:      "Basic auth:",
}

// Model holds one textinput per text field; the basic-auth switch is a
// plain bool toggled with space.
type Model struct {
	inputs   [fieldBasic]textinput.Model
	basic    bool
	focused  field
	active   bool
	disabled bool
	width    int
}

func New() Model {
	m := Model{}
	placeholders := [fieldBasic]string{
		fieldRoot:       "https://host/logs/ or /var/log/app",
		fieldExtensions: "log, txt (empty: search the root itself)",
		fieldPattern:    `regular expression, e.g. ERROR \d+`,
		fieldLogin:      "optional",
		fieldPassword:   "optional",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 2048
		ti.Prompt = ""
		m.inputs[i] = ti
	}
	m.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[fieldPassword].EchoCharacter = '*'
	return m
}

// SetValues fills the form from saved configuration.
func (m *Model) SetValues(cfg config.Config) {
	m.inputs[fieldRoot].SetValue(cfg.Root)
	m.inputs[fieldExtensions].SetValue(cfg.Extensions)
	m.inputs[fieldPattern].SetValue(cfg.Pattern)
	m.inputs[fieldLogin].SetValue(cfg.Login)
	m.inputs[fieldPassword].SetValue(cfg.Secret)
	m.basic = cfg.BasicAuth
}

// Apply copies the form values onto cfg, leaving other settings alone.
func (m Model) Apply(cfg config.Config) config.Config {
	cfg.Root = strings.TrimSpace(m.inputs[fieldRoot].Value())
	cfg.Extensions = m.inputs[fieldExtensions].Value()
	cfg.Pattern = m.inputs[fieldPattern].Value()
	cfg.Login = m.inputs[fieldLogin].Value()
	cfg.Secret = m.inputs[fieldPassword].Value()
	cfg.BasicAuth = m.basic
	return cfg
}

// Focus activates the form at its first or last field.
func (m *Model) Focus(last bool) tea.Cmd {
	m.active = true
	m.focused = fieldRoot
	if last {
		m.focused = fieldBasic
	}
	return m.focusCurrent()
}

func (m *Model) Blur() {
	m.active = false
	m.blurAll()
}

func (m Model) IsActive() bool { return m.active }

// SetDisabled locks the fields while a search runs.
func (m *Model) SetDisabled(disabled bool) {
	m.disabled = disabled
}

func (m *Model) SetWidth(w int) {
	m.width = w
	inputW := w - 18
	if inputW < 10 {
		inputW = 10
	}
	for i := range m.inputs {
		m.inputs[i].Width = inputW
	}
}

// AtFirst and AtLast report whether focus would leave the form on the next
// shift+tab or tab.
func (m Model) AtFirst() bool { return m.focused == fieldRoot }
func (m Model) AtLast() bool  { return m.focused == fieldBasic }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.focused < fieldBasic {
			var cmd tea.Cmd
			m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "tab", "down":
		m.moveFocus(1)
		return m, m.focusCurrent()
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, m.focusCurrent()
	}

	if m.disabled {
		return m, nil
	}
	if m.focused == fieldBasic {
		if keyMsg.String() == " " {
			m.basic = !m.basic
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(keyMsg)
	return m, cmd
}

func (m Model) View() string {
	labelStyle := lipgloss.NewStyle().Width(13).Foreground(ui.ColorMuted)
	focusedLabelStyle := lipgloss.NewStyle().Width(13).Bold(true).Foreground(ui.ColorPrimary)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	if m.disabled {
		valueStyle = ui.StyleMuted
	}

	rows := make([]string, 0, int(fieldCount))
	for f := field(0); f < fieldCount; f++ {
		ls := labelStyle
		cursor := "  "
		if m.active && f == m.focused {
			ls = focusedLabelStyle
			cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
		}

		var value string
		if f == fieldBasic {
			box := "[ ]"
			if m.basic {
				box = "[x]"
			}
			value = valueStyle.Render(box + " send credentials up front")
		} else if m.disabled {
			value = valueStyle.Render(m.displayValue(f))
		} else {
			value = m.inputs[f].View()
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, ls.Render(labels[f]), value))
	}
	return strings.Join(rows, "\n")
}

// Height is the number of lines View renders.
func (m Model) Height() int { return int(fieldCount) }

func (m Model) displayValue(f field) string {
	v := m.inputs[f].Value()
	if f == fieldPassword {
		return strings.Repeat("*", len(v))
	}
	return v
}

func (m *Model) moveFocus(delta int) {
	next := int(m.focused) + delta
	if next < 0 {
		next = int(fieldCount) - 1
	}
	if next >= int(fieldCount) {
		next = 0
	}
	m.focused = field(next)
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) focusCurrent() tea.Cmd {
	m.blurAll()
	if m.focused < fieldBasic {
		return m.inputs[m.focused].Focus()
	}
	return nil
}
