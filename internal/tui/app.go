package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/config"
	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
	"github.com/altinukshini/urlgrep/internal/report"
	"github.com/altinukshini/urlgrep/internal/search"
	"github.com/altinukshini/urlgrep/internal/tui/cacheview"
	"github.com/altinukshini/urlgrep/internal/tui/confirm"
	"github.com/altinukshini/urlgrep/internal/tui/form"
	"github.com/altinukshini/urlgrep/internal/tui/logview"
	"github.com/altinukshini/urlgrep/internal/tui/resultsview"
	"github.com/altinukshini/urlgrep/internal/ui"
)

type View int

const (
	ViewSearch View = iota
	ViewCache
	ViewResults
)

type Focus int

const (
	FocusForm Focus = iota
	FocusLog
)

// eventBuffer is how many reporter events the worker may queue ahead of
// the UI before it blocks.
const eventBuffer = 1024

type Options struct {
	Version string
	// AutoStart runs a search with the loaded values right away.
	AutoStart bool
}

type App struct {
	cfg     config.Config
	store   *config.Store
	session *search.Session
	cache   *cache.ResourceCache
	log     logger.Interface
	opts    Options

	// Views
	form          form.Model
	logView       logview.Model
	cacheView     cacheview.Model
	resultsView   resultsview.Model
	confirmDialog confirm.Model

	// State
	currentView View
	focus       Focus
	width       int
	height      int
	status      string
	statusKind  ui.StatusKind

	// Running search
	running    bool
	cancelling bool
	cancel     context.CancelFunc
	events     *ui.ChannelReporter

	showHelp bool
}

func NewApp(cfg config.Config, store *config.Store, session *search.Session, rc *cache.ResourceCache, log logger.Interface, opts Options) App {
	if log == nil {
		log = logger.NewNoOp()
	}
	f := form.New()
	f.SetValues(cfg)
	f.Focus(false)

	return App{
		cfg:         cfg,
		store:       store,
		session:     session,
		cache:       rc,
		log:         log.WithComponent("tui"),
		opts:        opts,
		form:        f,
		logView:     logview.New(),
		cacheView:   cacheview.New(),
		resultsView: resultsview.New(),
		status:      "Version: " + opts.Version,
	}
}

func (a App) Init() tea.Cmd {
	if a.opts.AutoStart {
		return tea.Batch(textinput.Blink, func() tea.Msg { return ui.StartSearchMsg{} })
	}
	return textinput.Blink
}

// --- Commands ---

func runSearch(ctx context.Context, s *search.Session, req model.SearchRequest, rep *ui.ChannelReporter) tea.Cmd {
	return func() tea.Msg {
		res := search.Run(ctx, s, req, rep)
		rep.Finish(res)
		return nil
	}
}

func (a App) saveConfig() tea.Cmd {
	store, cfg := a.store, a.cfg
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return ui.ConfigSavedMsg{Err: store.Save(cfg)}
	}
}

func (a App) purgeCache() tea.Cmd {
	rc := a.cache
	return func() tea.Msg {
		return ui.CachePurgedMsg{Err: rc.PurgeAll()}
	}
}

func (a App) loadCacheEntries() tea.Cmd {
	rc := a.cache
	return func() tea.Msg {
		entries, err := rc.ListEntries()
		return ui.CacheEntriesLoadedMsg{Entries: entries, Err: err}
	}
}

func (a App) deleteCacheEntry(hash string) tea.Cmd {
	rc := a.cache
	return func() tea.Msg {
		return ui.CacheEntryDeletedMsg{Hash: hash, Err: rc.DeleteEntry(hash)}
	}
}

// --- Search lifecycle ---

func (a *App) startSearch() tea.Cmd {
	if a.running {
		return nil
	}
	a.cfg = a.form.Apply(a.cfg)
	req := a.cfg.Request()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.events = ui.NewChannelReporter(eventBuffer)
	a.running = true
	a.cancelling = false
	a.form.SetDisabled(true)
	a.logView.Clear()
	a.setStatus("Searching...", ui.StatusBusy)
	a.log.Info("search started", "root", req.Root, "extensions", req.Extensions, "auth", req.Auth.Mode.String())

	return tea.Batch(
		a.saveConfig(),
		runSearch(ctx, a.session, req, a.events),
		a.events.Next(),
	)
}

// stopSearch requests cancellation once; the button stays disabled until
// the worker reports the final result.
func (a *App) stopSearch() {
	if !a.running || a.cancelling {
		return
	}
	a.cancelling = true
	a.setStatus("Cancelling...", ui.StatusCancelled)
	a.cancel()
}

// finishSearch runs after the worker has returned, so the session's units
// can be read from here.
func (a *App) finishSearch(res search.Result) tea.Cmd {
	a.running = false
	a.cancelling = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.events = nil
	a.form.SetDisabled(false)
	a.setStatus(res.StatusLine(), ui.KindOf(res.Outcome.String()))
	a.log.Info("search finished", "run_id", res.RunID, "outcome", res.Outcome.String(), "found", res.Stat.AllFound, "took", res.Took)

	units := a.session.Units()
	rows := make([]resultsview.Row, len(units))
	for i, u := range units {
		rows[i] = resultsview.Row{Name: u.Name(), Found: u.Found(), State: report.UnitState(u)}
		if err := u.Err(); err != nil {
			rows[i].Err = err.Error()
		}
	}
	return a.resultsView.SetRows(rows)
}

func (a *App) quit() tea.Cmd {
	if a.running {
		a.cancel()
		a.events.Abandon()
	}
	if a.store != nil {
		a.cfg = a.form.Apply(a.cfg)
		if err := a.store.Save(a.cfg); err != nil {
			a.log.WithError(err).Warn("save config on quit failed")
		}
	}
	return tea.Quit
}

func (a *App) setStatus(text string, kind ui.StatusKind) {
	a.status = text
	a.statusKind = kind
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle confirm dialog result (arrives AFTER dialog deactivates itself)
	if result, ok := msg.(confirm.ResultMsg); ok {
		if result.Confirmed {
			switch result.Action {
			case confirm.ActionPurgeCache:
				a.logView.Append("Cleaning cache...")
				a.setStatus("Cleaning cache...", ui.StatusBusy)
				cmds = append(cmds, a.purgeCache())
			case confirm.ActionDeleteEntry:
				a.setStatus("Deleting cache entry...", ui.StatusBusy)
				cmds = append(cmds, a.deleteCacheEntry(result.Target))
			}
		}
		return &a, tea.Batch(cmds...)
	}

	// Key events go to the dialog while it is showing; worker messages
	// still need to reach the app.
	if _, isKey := msg.(tea.KeyMsg); isKey && a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return &a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()

	case ui.StartSearchMsg:
		cmds = append(cmds, a.startSearch())

	case ui.SearchEventsMsg:
		a.logView.Append(msg.Lines...)
		if msg.Done != nil {
			return &a, a.finishSearch(*msg.Done)
		}
		if msg.Stat != nil && !a.cancelling {
			a.setStatus(msg.Stat.String(), ui.StatusBusy)
		}
		if a.events != nil {
			cmds = append(cmds, a.events.Next())
		}

	case ui.CachePurgedMsg:
		if msg.Err == "" {
			a.logView.Append("Cleaned!")
			a.setStatus("Cleaned!", ui.StatusDone)
		} else {
			a.logView.Append(msg.Err)
			a.setStatus(msg.Err, ui.StatusError)
		}
		if a.currentView == ViewCache {
			cmds = append(cmds, a.loadCacheEntries())
		}

	case ui.CacheEntriesLoadedMsg:
		var cmd tea.Cmd
		a.cacheView, cmd = a.cacheView.Update(msg)
		cmds = append(cmds, cmd)
		if msg.Err != nil {
			a.setStatus(fmt.Sprintf("Error: %v", msg.Err), ui.StatusError)
		} else {
			a.setStatus(fmt.Sprintf("%d cached roots", len(msg.Entries)), ui.StatusIdle)
		}

	case ui.CacheEntryDeletedMsg:
		if msg.Err != nil {
			a.setStatus(fmt.Sprintf("Error: %v", msg.Err), ui.StatusError)
		} else {
			a.setStatus("Deleted "+msg.Hash, ui.StatusDone)
		}
		cmds = append(cmds, a.loadCacheEntries())

	case ui.ConfigSavedMsg:
		if msg.Err != nil {
			a.log.WithError(msg.Err).Warn("save config failed")
		}

	case ui.StatusMsg:
		a.setStatus(msg.Text, ui.StatusIdle)

	case resultsview.JumpMsg:
		a.currentView = ViewSearch
		a.focusLog()
		a.logView.JumpTo(msg.Name)

	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(msg))

	default:
		// Cursor blink and other component ticks.
		var cmd tea.Cmd
		a.form, cmd = a.form.Update(msg)
		cmds = append(cmds, cmd)
	}

	return &a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Help overlay dismisses on any key
	if a.showHelp {
		a.showHelp = false
		return nil
	}

	// The in-log search prompt owns the keyboard while open.
	if a.currentView == ViewSearch && a.focus == FocusLog && a.logView.IsSearching() {
		var cmd tea.Cmd
		a.logView, cmd = a.logView.Update(msg)
		return cmd
	}
	if a.currentView == ViewCache && a.cacheView.IsFiltering() {
		var cmd tea.Cmd
		a.cacheView, cmd = a.cacheView.Update(msg)
		return cmd
	}
	if a.currentView == ViewResults && a.resultsView.IsFiltering() {
		var cmd tea.Cmd
		a.resultsView, cmd = a.resultsView.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, ui.Keys.Quit):
		return a.quit()
	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
		return nil
	case key.Matches(msg, ui.Keys.CacheView):
		if a.currentView == ViewCache {
			a.currentView = ViewSearch
			return nil
		}
		a.currentView = ViewCache
		a.cacheView.SetLoading()
		a.setStatus("Loading cache...", ui.StatusBusy)
		return a.loadCacheEntries()
	case key.Matches(msg, ui.Keys.Results):
		if a.currentView == ViewResults {
			a.currentView = ViewSearch
		} else {
			a.currentView = ViewResults
		}
		return nil
	case key.Matches(msg, ui.Keys.CleanCache):
		a.askPurge()
		return nil
	}

	switch a.currentView {
	case ViewCache:
		return a.handleCacheKey(msg)
	case ViewResults:
		if key.Matches(msg, ui.Keys.Back) {
			a.currentView = ViewSearch
			return nil
		}
		var cmd tea.Cmd
		a.resultsView, cmd = a.resultsView.Update(msg)
		return cmd
	}
	return a.handleSearchKey(msg)
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ui.Keys.Search):
		if a.running {
			a.stopSearch()
			return nil
		}
		return a.startSearch()

	case key.Matches(msg, ui.Keys.Stop):
		a.stopSearch()
		return nil

	case key.Matches(msg, ui.Keys.NextField):
		if a.focus == FocusLog {
			return a.focusForm(false)
		}
		if a.form.AtLast() {
			a.focusLog()
			return nil
		}

	case key.Matches(msg, ui.Keys.PrevField):
		if a.focus == FocusLog {
			return a.focusForm(true)
		}
		if a.form.AtFirst() {
			a.focusLog()
			return nil
		}
	}

	var cmd tea.Cmd
	if a.focus == FocusLog {
		a.logView, cmd = a.logView.Update(msg)
	} else {
		a.form, cmd = a.form.Update(msg)
	}
	return cmd
}

func (a *App) handleCacheKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ui.Keys.Back):
		a.currentView = ViewSearch
		return nil
	case key.Matches(msg, ui.Keys.Refresh):
		a.setStatus("Refreshing cache...", ui.StatusBusy)
		return a.loadCacheEntries()
	case key.Matches(msg, ui.Keys.PurgeAll):
		a.askPurge()
		return nil
	case key.Matches(msg, ui.Keys.Delete):
		if a.running {
			a.setStatus("Stop the search before changing the cache", ui.StatusError)
			return nil
		}
		if entry := a.cacheView.SelectedEntry(); entry != nil {
			root := entry.Root
			if root == "" {
				root = entry.Hash
			}
			a.confirmDialog = confirm.New(
				"Delete Cache Entry",
				fmt.Sprintf("Delete cached files for %s?", root),
				confirm.ActionDeleteEntry, entry.Hash,
			)
		}
		return nil
	}

	var cmd tea.Cmd
	a.cacheView, cmd = a.cacheView.Update(msg)
	return cmd
}

func (a *App) askPurge() {
	if a.running {
		a.setStatus("Stop the search before changing the cache", ui.StatusError)
		return
	}
	a.confirmDialog = confirm.New(
		"Clean Cache",
		"Delete every cached resource? The next search fetches everything again.",
		confirm.ActionPurgeCache, "",
	)
}

func (a *App) focusForm(last bool) tea.Cmd {
	a.focus = FocusForm
	a.logView.SetFocused(false)
	return a.form.Focus(last)
}

func (a *App) focusLog() {
	a.focus = FocusLog
	a.form.Blur()
	a.logView.SetFocused(true)
}

func (a *App) propagateSize() {
	// header(1) + status(1), form pane = fields + blank + button + border(2),
	// log pane border(2).
	formH := a.form.Height() + 2
	logH := a.height - 2 - (formH + 2) - 2
	if logH < 1 {
		logH = 1
	}
	a.form.SetWidth(a.width - 4)
	a.logView, _ = a.logView.Update(tea.WindowSizeMsg{Width: a.width - 4, Height: logH})

	contentH := a.height - 4
	if contentH < 1 {
		contentH = 1
	}
	a.cacheView, _ = a.cacheView.Update(tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.resultsView, _ = a.resultsView.Update(tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
}

// --- View ---

func (a App) View() string {
	header := RenderHeader(a.opts.Version, a.cfg.Root, a.running, a.width)

	var content string
	switch a.currentView {
	case ViewSearch:
		content = a.renderSearchLayout()
	case ViewCache:
		contentH := a.height - 4
		if contentH < 1 {
			contentH = 1
		}
		style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
		content = style.Render(a.cacheView.View())
	case ViewResults:
		contentH := a.height - 4
		if contentH < 1 {
			contentH = 1
		}
		style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
		content = style.Render(a.resultsView.View())
	}

	if a.showHelp {
		content = a.renderHelp()
	} else if a.confirmDialog.IsActive() {
		content = a.confirmDialog.View()
		if a.width > 0 && a.height > 2 {
			content = lipgloss.Place(a.width, a.height-2, lipgloss.Center, lipgloss.Center, content)
		}
	}

	statusBar := RenderStatusBar(a.status, a.statusKind, a.contextHints(), a.width)

	// Hard clamp: header(1) + statusbar(1) = 2 lines of chrome.
	maxContentLines := a.height - 2
	if maxContentLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxContentLines {
			lines = lines[:maxContentLines]
			content = strings.Join(lines, "\n")
		}
	}

	return header + "\n" + content + "\n" + statusBar
}

func (a App) renderSearchLayout() string {
	formH := a.form.Height() + 2
	logH := a.height - 2 - (formH + 2) - 2
	if logH < 1 {
		logH = 1
	}

	formStyle := ui.StylePane.Width(a.width - 2).Height(formH)
	logStyle := ui.StylePane.Width(a.width - 2).Height(logH)
	if a.focus == FocusForm {
		formStyle = ui.StylePaneFocused.Width(a.width - 2).Height(formH)
	} else {
		logStyle = ui.StylePaneFocused.Width(a.width - 2).Height(logH)
	}

	formBody := a.form.View() + "\n\n  " + a.renderButton()
	return lipgloss.JoinVertical(lipgloss.Left,
		formStyle.Render(formBody),
		logStyle.Render(a.logView.View()),
	)
}

// renderButton mirrors the Search/Stop toggle: it reads Stop while a run
// is active and is greyed out while cancelling.
func (a App) renderButton() string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 2).Foreground(lipgloss.Color("#F9FAFB"))
	switch {
	case a.cancelling:
		return style.Background(ui.ColorMuted).Render("Cancelling")
	case a.running:
		return style.Background(ui.ColorFailure).Render("Stop")
	default:
		return style.Background(ui.ColorPrimary).Render("Search")
	}
}

func (a App) contextHints() string {
	if a.showHelp {
		return "any key: close"
	}
	if a.confirmDialog.IsActive() {
		return "y/n: answer  tab: switch  esc: cancel"
	}
	if a.currentView == ViewCache {
		if a.cacheView.IsFiltering() {
			return "enter:apply  esc:cancel"
		}
		return "d:delete  x:clear all  s:sort  r:refresh  f:filter  esc:back  f1:help"
	}
	if a.currentView == ViewResults {
		if a.resultsView.IsFiltering() {
			return "enter:apply  esc:cancel"
		}
		return "enter:show in log  f:filter  esc:back  f1:help"
	}
	if a.focus == FocusLog {
		if a.logView.IsSearching() {
			return "enter:confirm  esc:cancel"
		}
		return "/:search  n/N:match  j/k:scroll  g/G:top/bot  tab:form  f1:help"
	}
	if a.running {
		return "enter/esc:stop  tab:log  ctrl+c:quit"
	}
	return "enter:search  tab:next  space:toggle  ctrl+r:results  ctrl+o:cache  f1:help"
}

func (a App) renderHelp() string {
	contentH := a.height - 4
	if contentH < 1 {
		contentH = 1
	}

	bold := lipgloss.NewStyle().Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + keyStyle.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Search") + "\n\n")
	b.WriteString(row("enter", "Start the search, or stop it while running"))
	b.WriteString(row("esc", "Stop the running search"))
	b.WriteString(row("tab", "Next field (past the last field: log)"))
	b.WriteString(row("shift+tab", "Previous field"))
	b.WriteString(row("space", "Toggle basic authentication"))
	b.WriteString(row("ctrl+c", "Quit (form values are saved)"))

	b.WriteString("\n" + bold.Render("  Fields") + "\n\n")
	b.WriteString(row("URL / path", "Index page, single resource or local file"))
	b.WriteString(row("Extensions", "Comma separated; empty searches the root itself"))
	b.WriteString(row("Pattern", "Regular expression"))
	b.WriteString(row("Basic auth", "Send credentials up front instead of on 401"))

	b.WriteString("\n" + bold.Render("  Log") + "\n\n")
	b.WriteString(row("/", "Search in log"))
	b.WriteString(row("n / N", "Next / previous match"))
	b.WriteString(row("g / G", "Go to top / bottom"))
	b.WriteString(row("PgUp/PgDn", "Page up / page down"))

	b.WriteString("\n" + bold.Render("  Results") + "\n\n")
	b.WriteString(row("ctrl+r", "Open / close the resources of the last search"))
	b.WriteString(row("enter", "Show the selected resource in the log"))

	b.WriteString("\n" + bold.Render("  Cache") + "\n\n")
	b.WriteString(row("ctrl+k", "Clean the whole cache"))
	b.WriteString(row("ctrl+o", "Open / close the cache browser"))
	b.WriteString(row("d", "Delete the selected root's files"))
	b.WriteString(row("s", "Cycle sort mode (last used / created / size)"))

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  Press any key to close") + "\n")

	style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
	return style.Render(b.String())
}
