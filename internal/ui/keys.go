package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Search     key.Binding
	Stop       key.Binding
	Back       key.Binding
	CleanCache key.Binding
	CacheView  key.Binding
	Results    key.Binding
	Open       key.Binding
	Refresh    key.Binding
	Delete     key.Binding
	PurgeAll   key.Binding
	Sort       key.Binding
	Filter     key.Binding
	LogSearch  key.Binding
	NextMatch  key.Binding
	PrevMatch  key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

var Keys = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev field")),
	Search:     key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "search/stop")),
	Stop:       key.NewBinding(key.WithKeys("esc", "ctrl+x"), key.WithHelp("esc", "stop")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	CleanCache: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "clean cache")),
	CacheView:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "cache")),
	Results:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "results")),
	Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show in log")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	PurgeAll:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear all")),
	Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	LogSearch:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search log")),
	NextMatch:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	PrevMatch:  key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	Top:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
	Bottom:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
}
