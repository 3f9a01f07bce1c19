// Package resultsview lists the resources of the last search with their
// match counts.
package resultsview

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/altinukshini/urlgrep/internal/ui"
)

// Row is one searched resource.
type Row struct {
	Name  string
	Found int
	State string // done, failed or not finished
	Err   string
}

// JumpMsg asks the app to show the log lines of a resource.
type JumpMsg struct {
	Name string
}

// --- Custom delegate (avoids DefaultDelegate ANSI corruption during filtering) ---

type rowDelegate struct{}

func (d rowDelegate) Height() int                              { return 2 }
func (d rowDelegate) Spacing() int                             { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(rowItem)
	if !ok {
		return
	}

	kind := kindOf(ri.row)
	found := ui.StyleMuted.Render("no matches")
	if ri.row.Found > 0 {
		found = ui.StyleWarning.Render(fmt.Sprintf("%d found", ri.row.Found))
	}

	line1 := fmt.Sprintf(" %s %s  %s", ui.StatusIcon(kind), ri.row.Name, found)
	line2 := "    " + ui.StyleMuted.Render(ri.row.State)
	if ri.row.Err != "" {
		line2 = "    " + ui.StyleFailure.Render(text.Truncate(max(m.Width()-4, 10), ri.row.Err))
	}

	if index == m.Index() {
		hl := lipgloss.NewStyle().Background(ui.ColorHighlight).Width(m.Width())
		line1 = hl.Render(line1)
		line2 = hl.Render(line2)
	}

	fmt.Fprintf(w, "%s\n%s", line1, line2)
}

func kindOf(r Row) ui.StatusKind {
	switch r.State {
	case "failed":
		return ui.StatusError
	case "done":
		return ui.StatusDone
	default:
		return ui.StatusCancelled
	}
}

// --- Item ---

type rowItem struct {
	row Row
}

func (r rowItem) FilterValue() string {
	return r.row.Name
}

// --- Model ---

type Model struct {
	list   list.Model
	rows   []Row
	width  int
	height int
}

func New() Model {
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowFilter(true)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Filter = ui.Keys.Filter
	l.KeyMap.NextPage = ui.Keys.PageDown
	l.KeyMap.PrevPage = ui.Keys.PageUp
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("resource", "resources")

	return Model{list: l}
}

// SetRows replaces the rows with a new snapshot and moves the cursor to
// the first one.
func (m *Model) SetRows(rows []Row) tea.Cmd {
	m.rows = rows
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowItem{row: r}
	}
	m.list.ResetFilter()
	cmd := m.list.SetItems(items)
	m.list.Select(0)
	return cmd
}

func (m Model) SelectedRow() *Row {
	if item, ok := m.list.SelectedItem().(rowItem); ok {
		return &item.row
	}
	return nil
}

func (m Model) Len() int {
	return len(m.rows)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.IsFiltering() {
			break
		}
		// The list's updateKeybindings can disable the filter key (e.g.
		// after SetSize with zero items).
		if key.Matches(msg, ui.Keys.Filter) && len(m.list.Items()) > 0 {
			m.list.KeyMap.Filter.SetEnabled(true)
		}
		if key.Matches(msg, ui.Keys.Open) {
			if row := m.SelectedRow(); row != nil {
				name := row.Name
				return m, func() tea.Msg { return JumpMsg{Name: name} }
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve one line for the summary.
		m.list.SetSize(msg.Width, max(msg.Height-1, 1))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "\n  No finished search yet.\n\n  Results of the last search are listed here."
	}

	var found, failed int
	for _, r := range m.rows {
		found += r.Found
		if r.State == "failed" {
			failed++
		}
	}
	summary := fmt.Sprintf("  %s | %d found", text.Pluralize(len(m.rows), "resource"), found)
	if failed > 0 {
		summary += fmt.Sprintf(" | %d failed", failed)
	}
	summary += " | enter: show in log  f: filter"
	return ui.StyleMuted.Render(summary) + "\n" + m.list.View()
}

func (m Model) IsFiltering() bool {
	return m.list.FilterState() == list.Filtering
}
