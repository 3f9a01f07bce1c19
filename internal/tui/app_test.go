package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/config"
	"github.com/altinukshini/urlgrep/internal/fetch"
	"github.com/altinukshini/urlgrep/internal/model"
	"github.com/altinukshini/urlgrep/internal/search"
	"github.com/altinukshini/urlgrep/internal/tui/confirm"
	"github.com/altinukshini/urlgrep/internal/ui"
)

// cancelledFetcher behaves like a fetch whose context is already gone.
type cancelledFetcher struct{}

func (cancelledFetcher) Fetch(ctx context.Context, _ string, _ model.Credentials) (string, error) {
	<-ctx.Done()
	return "", fetch.ErrCancelled
}

func newTestApp(t *testing.T, cfg config.Config, f search.Fetcher) (App, *config.Store, *cache.ResourceCache) {
	t.Helper()
	dir := t.TempDir()
	rc, err := cache.New(dir)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	store := config.NewStore(dir)
	session := search.NewSession(f, rc, nil)

	app := NewApp(cfg, store, session, rc, nil, Options{Version: "test"})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return *m.(*App), store, rc
}

func press(app App, msg tea.KeyMsg) (App, tea.Cmd) {
	m, cmd := app.Update(msg)
	return *m.(*App), cmd
}

// pump executes cmd and every follow-up command, feeding their messages
// back into the app until a search reports its result.
func pump(t *testing.T, app App, cmd tea.Cmd) App {
	t.Helper()
	msgs := make(chan tea.Msg, 256)

	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			if msg != nil {
				select {
				case msgs <- msg:
				default:
				}
			}
		}()
	}
	run(cmd)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-msgs:
			m, next := app.Update(msg)
			app = *m.(*App)
			if ev, ok := msg.(ui.SearchEventsMsg); ok && ev.Done != nil {
				return app
			}
			run(next)
		case <-deadline:
			t.Fatal("search did not finish")
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func logContains(app App, substr string) bool {
	for _, line := range app.logView.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestAppSearchOverIndexPage(t *testing.T) {
	site := t.TempDir()
	index := writeFile(t, site, "index.html", `<html><body><a href="a.log">a</a><a href="b.txt">b</a></body></html>`)
	writeFile(t, site, "a.log", "ok\nERR one\nok\nERR two\n")

	cfg := config.Config{Root: index, Extensions: "log", Pattern: "ERR"}
	app, store, _ := newTestApp(t, cfg, fetch.New())

	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.running {
		t.Fatal("expected search to be running after enter")
	}
	if app.status != "Searching..." {
		t.Errorf("expected Searching... status, got %q", app.status)
	}

	app = pump(t, app, cmd)

	if app.running {
		t.Error("expected search to be finished")
	}
	if app.status != "Done! Found: 2 in 1/1 (100%)" {
		t.Errorf("unexpected final status %q", app.status)
	}
	if app.statusKind != ui.StatusDone {
		t.Errorf("expected done status kind, got %v", app.statusKind)
	}
	if !logContains(app, "'ERR' found at position 3") {
		t.Errorf("log should report the first match, got %v", app.logView.Lines())
	}
	if !logContains(app, "Found new file:a.log") {
		t.Error("log should list the discovered file")
	}

	saved, err := store.Load()
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if saved.Pattern != "ERR" || saved.Extensions != "log" {
		t.Errorf("form values should be saved when a search starts, got %+v", saved)
	}
}

func TestAppSearchClearsLogBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "alpha beta alpha")

	app, _, _ := newTestApp(t, config.Config{Root: path, Pattern: "alpha"}, fetch.New())

	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, app, cmd)
	first := len(app.logView.Lines())
	if first == 0 {
		t.Fatal("expected log lines after the first run")
	}

	app, cmd = press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, app, cmd)
	if !logContains(app, "Read cached file") {
		t.Error("second run should read the cached file")
	}
	if got := len(app.logView.Lines()); got != first {
		t.Errorf("log should be cleared before each run: got %d lines, first run had %d", got, first)
	}
}

func TestAppStopCancelsSearch(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{Root: "https://example.com/file.txt", Pattern: "x"}, cancelledFetcher{})

	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.running {
		t.Fatal("expected search to be running")
	}
	if got := app.renderButton(); !strings.Contains(got, "Stop") {
		t.Errorf("button should read Stop while running, got %q", got)
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyEsc})
	if !app.cancelling {
		t.Fatal("expected cancelling after esc")
	}
	if app.status != "Cancelling..." {
		t.Errorf("expected Cancelling... status, got %q", app.status)
	}
	if got := app.renderButton(); !strings.Contains(got, "Cancelling") {
		t.Errorf("button should read Cancelling, got %q", got)
	}

	// A second stop request is ignored.
	app, _ = press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.cancelling || !app.running {
		t.Error("second stop should leave the run cancelling")
	}

	app = pump(t, app, cmd)
	if app.running || app.cancelling {
		t.Error("expected search to be finished")
	}
	if !strings.HasPrefix(app.status, "Cancelled! ") {
		t.Errorf("expected cancelled status, got %q", app.status)
	}
	if app.statusKind != ui.StatusCancelled {
		t.Errorf("expected cancelled kind, got %v", app.statusKind)
	}
}

func TestAppFormDisabledWhileRunning(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{Root: "https://example.com/a.txt", Pattern: "p"}, cancelledFetcher{})

	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app, _ = press(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if got := app.form.Apply(app.cfg).Root; got != "https://example.com/a.txt" {
		t.Errorf("typing while running should not edit the form, root is %q", got)
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyEsc})
	app = pump(t, app, cmd)

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if got := app.form.Apply(app.cfg).Root; got != "https://example.com/a.txtz" {
		t.Errorf("form should accept input after the run, root is %q", got)
	}
}

func TestAppCleanCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "needle")

	app, _, rc := newTestApp(t, config.Config{Root: path, Pattern: "needle"}, fetch.New())
	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, app, cmd)

	entries, err := rc.ListEntries()
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cached root, got %d (err %v)", len(entries), err)
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyCtrlK})
	if !app.confirmDialog.IsActive() {
		t.Fatal("ctrl+k should ask for confirmation")
	}

	app, cmd = press(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	result, ok := cmd().(confirm.ResultMsg)
	if !ok || !result.Confirmed || result.Action != confirm.ActionPurgeCache {
		t.Fatalf("expected confirmed purge, got %#v", result)
	}

	m, cmd := app.Update(result)
	app = *m.(*App)
	if !logContains(app, "Cleaning cache...") {
		t.Error("log should show Cleaning cache...")
	}

	m, _ = app.Update(cmd())
	app = *m.(*App)
	lines := app.logView.Lines()
	if lines[len(lines)-1] != "Cleaned!" {
		t.Errorf("expected Cleaned! as last log line, got %q", lines[len(lines)-1])
	}

	entries, err = rc.ListEntries()
	if err != nil || len(entries) != 0 {
		t.Errorf("cache should be empty after purge, got %d (err %v)", len(entries), err)
	}
}

func TestAppCleanCacheRefusedWhileRunning(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{Root: "https://example.com/a.txt", Pattern: "p"}, cancelledFetcher{})

	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app, _ = press(app, tea.KeyMsg{Type: tea.KeyCtrlK})
	if app.confirmDialog.IsActive() {
		t.Error("purge must not be offered while a search runs")
	}
	if app.statusKind != ui.StatusError {
		t.Errorf("expected an error status, got %v", app.statusKind)
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyEsc})
	pump(t, app, cmd)
}

func TestAppCacheView(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "needle")

	app, _, rc := newTestApp(t, config.Config{Root: path, Pattern: "needle"}, fetch.New())
	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, app, cmd)

	app, cmd = press(app, tea.KeyMsg{Type: tea.KeyCtrlO})
	if app.currentView != ViewCache {
		t.Fatalf("expected cache view, got %v", app.currentView)
	}
	m, _ := app.Update(cmd())
	app = *m.(*App)
	if app.cacheView.Len() != 1 {
		t.Fatalf("expected one entry, got %d", app.cacheView.Len())
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if !app.confirmDialog.IsActive() {
		t.Fatal("d should ask before deleting")
	}
	app, cmd = press(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m, cmd = app.Update(cmd())
	app = *m.(*App)
	m, cmd = app.Update(cmd())
	app = *m.(*App)
	if app.statusKind != ui.StatusDone {
		t.Errorf("expected delete to succeed, status %q", app.status)
	}
	m, _ = app.Update(cmd())
	app = *m.(*App)
	if app.cacheView.Len() != 0 {
		t.Errorf("expected empty cache view after delete, got %d", app.cacheView.Len())
	}
	if entries, _ := rc.ListEntries(); len(entries) != 0 {
		t.Errorf("expected cache to be empty, got %d entries", len(entries))
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.currentView != ViewSearch {
		t.Errorf("esc should return to the search view")
	}
}

func TestAppTabMovesBetweenFormAndLog(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{}, cancelledFetcher{})

	// Six fields: five tabs reach the last one, the sixth moves to the log.
	for range 5 {
		app, _ = press(app, tea.KeyMsg{Type: tea.KeyTab})
	}
	if app.focus != FocusForm {
		t.Fatal("focus should still be in the form")
	}
	app, _ = press(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.focus != FocusLog {
		t.Fatal("tab past the last field should focus the log")
	}
	app, _ = press(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.focus != FocusForm || !app.form.AtFirst() {
		t.Error("tab from the log should return to the first field")
	}
	app, _ = press(app, tea.KeyMsg{Type: tea.KeyShiftTab})
	if app.focus != FocusLog {
		t.Error("shift+tab on the first field should focus the log")
	}
}

func TestAppQuitSavesForm(t *testing.T) {
	app, store, _ := newTestApp(t, config.Config{Root: "https://example.com/", Extensions: "txt"}, cancelledFetcher{})

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	_, cmd := press(app, tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}

	saved, err := store.Load()
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if saved.Root != "https://example.com/x" || saved.Extensions != "txt" {
		t.Errorf("form should be saved on quit, got %+v", saved)
	}
}

func TestAppViewFitsWindow(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{Root: "https://example.com/"}, cancelledFetcher{})
	app.logView.Append(strings.Split(strings.Repeat("line\n", 200), "\n")...)

	view := app.View()
	if got := strings.Count(view, "\n") + 1; got > 40 {
		t.Errorf("view should fit the window height, got %d lines", got)
	}
	if !strings.Contains(view, "urlgrep test") {
		t.Error("header should show the version")
	}
}

func TestAppResultsViewJumpsToLog(t *testing.T) {
	site := t.TempDir()
	index := writeFile(t, site, "index.html", `<a href="a.log">a</a><a href="b.log">b</a><a href="gone.log">c</a>`)
	writeFile(t, site, "a.log", "ERR")
	writeFile(t, site, "b.log", "ERR ERR")

	app, _, _ := newTestApp(t, config.Config{Root: index, Extensions: "log", Pattern: "ERR"}, fetch.New())
	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, app, cmd)

	if !strings.Contains(app.status, ", 1 failed") {
		t.Errorf("expected the missing file to fail, status %q", app.status)
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyCtrlR})
	if app.currentView != ViewResults {
		t.Fatalf("expected results view, got %v", app.currentView)
	}
	if app.resultsView.Len() != 3 {
		t.Fatalf("expected 3 result rows, got %d", app.resultsView.Len())
	}
	if row := app.resultsView.SelectedRow(); row == nil || row.Name != "a.log" || row.Found != 1 {
		t.Errorf("unexpected first row %+v", row)
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyDown})
	app, cmd = press(app, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ := app.Update(cmd())
	app = *m.(*App)

	if app.currentView != ViewSearch || app.focus != FocusLog {
		t.Fatal("jump should show the log")
	}
	if app.logView.MatchCount() == 0 {
		t.Error("log should highlight the lines of b.log")
	}
}
