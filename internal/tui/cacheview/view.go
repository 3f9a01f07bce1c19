// Package cacheview lists the on-disk resource cache, one row per root.
package cacheview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/ui"
)

type entryItem struct {
	entry cache.Entry
}

func (c entryItem) Title() string {
	root := c.entry.Root
	if root == "" {
		root = ui.StyleMuted.Render("(unknown root)")
	}
	size := ui.StyleWarning.Render(FormatSize(c.entry.Size))
	return fmt.Sprintf("%s  %s", root, size)
}

func (c entryItem) Description() string {
	parts := []string{
		ui.StyleInfo.Render(text.Pluralize(c.entry.Files, "file")),
		ui.StyleMuted.Render(c.entry.Hash),
	}
	if !c.entry.CreatedAt.IsZero() {
		parts = append(parts, ui.StyleMuted.Render("cached "+text.RelativeTimeAgo(time.Now(), c.entry.CreatedAt)))
	}
	if !c.entry.LastAccessed.IsZero() {
		parts = append(parts, ui.StyleMuted.Render("last used "+text.RelativeTimeAgo(time.Now(), c.entry.LastAccessed)))
	}
	return strings.Join(parts, "  ")
}

func (c entryItem) FilterValue() string {
	return c.entry.Root + " " + c.entry.Hash
}

// SortMode determines how cache entries are ordered.
type SortMode int

const (
	SortByAccessed SortMode = iota
	SortByDate
	SortBySize
)

func (s SortMode) String() string {
	switch s {
	case SortByDate:
		return "created"
	case SortBySize:
		return "size"
	default:
		return "last used"
	}
}

// Model is the cache browser.
type Model struct {
	list      list.Model
	entries   []cache.Entry
	sortMode  SortMode
	totalSize int64
	loading   bool
	err       error
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.KeyMap.Filter = ui.Keys.Filter
	l.DisableQuitKeybindings()

	return Model{list: l, loading: true}
}

// SetLoading shows the loading state until the next CacheEntriesLoadedMsg.
func (m *Model) SetLoading() {
	m.loading = true
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.CacheEntriesLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.entries = msg.Entries
		m.totalSize = 0
		for _, e := range m.entries {
			m.totalSize += e.Size
		}
		m.sortEntries()
		cmd := m.list.SetItems(m.buildItems())
		return m, cmd

	case tea.WindowSizeMsg:
		// Reserve one line for the header.
		m.list.SetSize(msg.Width, msg.Height-1)

	case tea.KeyMsg:
		if key.Matches(msg, ui.Keys.Sort) && !m.IsFiltering() {
			m.sortMode = (m.sortMode + 1) % 3
			m.sortEntries()
			cmd := m.list.SetItems(m.buildItems())
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading cache..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press r to retry.", m.err)
	}
	if len(m.entries) == 0 {
		return "\n  Cache is empty.\n\n  Resources are cached here after the first search.\n  Press r to refresh."
	}

	header := fmt.Sprintf("  %s | Total: %s | Sort: %s | s: sort  d: delete  x: clear all",
		text.Pluralize(len(m.entries), "root"),
		FormatSize(m.totalSize),
		m.sortMode.String(),
	)
	return ui.StyleMuted.Render(header) + "\n" + m.list.View()
}

// SelectedEntry returns the highlighted entry, or nil.
func (m Model) SelectedEntry() *cache.Entry {
	if item, ok := m.list.SelectedItem().(entryItem); ok {
		return &item.entry
	}
	return nil
}

func (m Model) Len() int {
	return len(m.entries)
}

// IsFiltering returns true when the user is actively typing a filter.
func (m Model) IsFiltering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) sortEntries() {
	switch m.sortMode {
	case SortByAccessed:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].LastAccessed.After(m.entries[j].LastAccessed)
		})
	case SortByDate:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].CreatedAt.After(m.entries[j].CreatedAt)
		})
	case SortBySize:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].Size > m.entries[j].Size
		})
	}
}

func (m Model) buildItems() []list.Item {
	items := make([]list.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = entryItem{entry: e}
	}
	return items
}

// FormatSize formats a byte count into a human-readable string.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
