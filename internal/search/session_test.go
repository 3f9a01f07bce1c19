package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/fetch"
	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
)

const (
	testRoot  = "http://test/logs/index.html"
	testIndex = `<html><body>
<a href="a.txt">a</a>
<a href="b.txt">b</a>
<a href="b.txt">b again</a>
<a href="skip.bin">binary</a>
</body></html>`
)

func indexPages() map[string]string {
	return map[string]string{
		testRoot:                 testIndex,
		"http://test/logs/a.txt": "alpha error one\nerror two",
		"http://test/logs/b.txt": "beta fine",
	}
}

func TestSessionDeduplicatesDiscoveredLinks(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, _ := newTestSession(t, f)
	rec := &recorder{}

	res := s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "error", "", "", false), rec)
	require.Equal(t, OutcomeDone, res.Outcome)

	assert.Equal(t, []string{"a.txt", "b.txt"}, refs(s.Units()))
	assert.Equal(t, 1, rec.count("Found new file:a.txt"))
	assert.Equal(t, 1, rec.count("Found new file:b.txt"))
	assert.Equal(t, 1, rec.count("Use existing file:b.txt"))
	assert.Zero(t, f.calls["http://test/logs/skip.bin"])

	assert.Equal(t, Stat{AllFound: 2, FoundFiles: 1, FinishedFiles: 2, AllFiles: 2}, res.Stat)
}

func TestSessionEmptyPattern(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, _ := newTestSession(t, f)

	rec := &recorder{}
	s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "error", "", "", false), rec)
	before := s.Units()
	fetches := f.total()

	rec = &recorder{}
	res := s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "", "", "", false), rec)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrEmptyPattern)
	assert.Equal(t, []string{"Search text is empty"}, rec.lines)
	assert.Equal(t, fetches, f.total(), "no fetch for an empty pattern")
	assert.Equal(t, before, s.Units())
	assert.Equal(t, 2, before[0].Found(), "units are not reset either")
}

func TestSessionEmptyPatternOnFreshSession(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, _ := newTestSession(t, f)
	rec := &recorder{}

	Run(context.Background(), s, model.NewSearchRequest(testRoot, "", "", "", "", false), rec)

	assert.Zero(t, f.total())
	assert.Empty(t, s.Units())
	assert.Equal(t, 1, rec.count("Search text is empty"))
	assert.Equal(t, "Error: empty search pattern", rec.lines[len(rec.lines)-1])
}

func TestSessionInvalidPattern(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, _ := newTestSession(t, f)
	rec := &recorder{}

	res := s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "(unclosed", "", "", false), rec)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrBadPattern)
	assert.Zero(t, f.total())
	assert.Equal(t, 1, rec.count("Invalid search pattern"))
}

func TestSessionCacheIdempotence(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, rc := newTestSession(t, f)
	req := model.NewSearchRequest(testRoot, "txt", "error", "", "", false)

	rec := &recorder{}
	s.Search(context.Background(), req, rec)
	assert.Equal(t, 1, f.calls["http://test/logs/a.txt"])
	assert.Equal(t, 2, rec.count("Load file"))

	rec = &recorder{}
	s.Search(context.Background(), req, rec)
	assert.Equal(t, 1, f.calls["http://test/logs/a.txt"], "second run is a cache hit")
	assert.Equal(t, 1, f.calls["http://test/logs/b.txt"])
	assert.Equal(t, 2, rec.count("Read cached file"))
	assert.Equal(t, 2, f.calls[testRoot], "the index itself is not cached")

	require.Empty(t, rc.PurgeAll())

	s.Search(context.Background(), req, &recorder{})
	assert.Equal(t, 2, f.calls["http://test/logs/a.txt"], "purge forces a network fetch")
}

func TestSessionReuseResetsUnitsBeforeRun(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, _ := newTestSession(t, f)

	s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "error", "", "", false), &recorder{})
	first := s.Units()
	require.Len(t, first, 2)
	require.Equal(t, 2, first[0].Found())

	rec := &recorder{}
	res := s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "beta", "", "", false), rec)

	second := s.Units()
	require.Len(t, second, 2, "known references are not duplicated")
	assert.Same(t, first[0], second[0])
	assert.Same(t, first[1], second[1])

	require.NotEmpty(t, rec.stats)
	assert.Equal(t, Stat{AllFiles: 2}, rec.stats[0], "counts are reset before the new run starts")
	assert.Equal(t, 0, second[0].Found())
	assert.Equal(t, 1, second[1].Found())
	assert.Equal(t, 3, rec.count("Use existing file:"), "every listed reference, duplicates included")
	assert.Equal(t, Stat{AllFound: 1, FoundFiles: 1, FinishedFiles: 2, AllFiles: 2}, res.Stat)
}

func TestSessionStaleUnitsKeepNewPattern(t *testing.T) {
	pages := indexPages()
	f := newFakeFetcher(pages)
	s, _ := newTestSession(t, f)

	s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "error", "", "", false), &recorder{})

	pages[testRoot] = `<a href="b.txt">only b</a>`
	res := s.Search(context.Background(), model.NewSearchRequest(testRoot, "txt", "alpha", "", "", false), &recorder{})

	assert.Equal(t, []string{"a.txt", "b.txt"}, refs(s.Units()), "a.txt is kept although the index dropped it")
	assert.Equal(t, 1, res.Stat.AllFound, "and it is searched with the new pattern")
}

func TestRunClearsOnRootChange(t *testing.T) {
	pages := indexPages()
	pages["http://other/index.html"] = `<a href="c.txt">c</a>`
	pages["http://other/c.txt"] = "gamma error"
	f := newFakeFetcher(pages)
	s, _ := newTestSession(t, f)

	Run(context.Background(), s, model.NewSearchRequest(testRoot, "txt", "error", "", "", false), &recorder{})
	first := s.Units()

	Run(context.Background(), s, model.NewSearchRequest("http://other/index.html", "txt", "error", "", "", false), &recorder{})
	second := s.Units()

	assert.Equal(t, []string{"c.txt"}, refs(second))
	for _, u := range first {
		assert.NotContains(t, second, u)
	}
}

func TestSessionRootOnlyReusesUnit(t *testing.T) {
	root := "http://test/single.txt"
	f := newFakeFetcher(map[string]string{root: "one two one"})
	s, _ := newTestSession(t, f)

	s.Search(context.Background(), model.NewSearchRequest(root, "", "one", "", "", false), &recorder{})
	first := s.Units()
	require.Len(t, first, 1)
	assert.Equal(t, "", first[0].LocalRef)

	res := s.Search(context.Background(), model.NewSearchRequest(root, "", "two", "", "", false), &recorder{})
	second := s.Units()
	require.Len(t, second, 1)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, res.Stat.AllFound)
	assert.Equal(t, 1, f.calls[root])
}

func TestSessionCancellationStopsBeforeNextUnit(t *testing.T) {
	f := newFakeFetcher(indexPages())
	s, _ := newTestSession(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onLog: func(line string) {
		if line == "Load file a.txt, size=25" {
			cancel()
		}
	}}

	res := Run(ctx, s, model.NewSearchRequest(testRoot, "txt", "error", "", "", false), rec)

	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.Zero(t, f.calls["http://test/logs/b.txt"], "no unit starts after cancellation")
	assert.Contains(t, rec.lines[len(rec.lines)-1], "Cancelled! ")
	assert.NotContains(t, rec.lines[len(rec.lines)-1], "Done!")
	for _, u := range s.Units() {
		assert.False(t, u.Finished())
	}
}

func TestSessionUnitFailureDoesNotAbortRun(t *testing.T) {
	f := newFakeFetcher(indexPages())
	f.errs["http://test/logs/a.txt"] = errors.New("connection reset")
	s, rc := newTestSession(t, f)
	rec := &recorder{}

	res := Run(context.Background(), s, model.NewSearchRequest(testRoot, "txt", "beta", "", "", false), rec)

	assert.Equal(t, OutcomeDone, res.Outcome)
	assert.Equal(t, 1, rec.count("Error: a.txt: connection reset"))
	units := s.Units()
	assert.False(t, units[0].Finished())
	assert.Error(t, units[0].Err())
	assert.True(t, units[1].Finished())
	assert.Equal(t, Stat{AllFound: 1, FoundFiles: 1, FinishedFiles: 1, FailedFiles: 1, AllFiles: 2}, res.Stat)
	assert.Equal(t, "Done! Found: 1 in 1/2 (50%), 1 failed", rec.lines[len(rec.lines)-1])

	_, ok, err := rc.TryLoad(testRoot, "http://test/logs/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionDiscoveryFailures(t *testing.T) {
	tests := []struct {
		name  string
		index *string
		want  string
	}{
		{name: "unloadable", index: nil, want: "Document couldn't be loaded"},
		{name: "no links", index: strPtr(`<html><body><p>empty</p></body></html>`), want: "No urls inside document."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := map[string]string{}
			if tt.index != nil {
				pages[testRoot] = *tt.index
			}
			f := newFakeFetcher(pages)
			s, _ := newTestSession(t, f)
			rec := &recorder{}

			res := Run(context.Background(), s, model.NewSearchRequest(testRoot, "txt", "x", "", "", false), rec)
			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.ErrorIs(t, res.Err, ErrDiscovery)
			assert.Equal(t, 1, rec.count(tt.want))
			assert.Empty(t, s.Units())
			assert.Contains(t, rec.lines[len(rec.lines)-1], "Error: ")

			// The session stays usable.
			pages[testRoot] = testIndex
			pages["http://test/logs/a.txt"] = "x"
			pages["http://test/logs/b.txt"] = "x"
			res = Run(context.Background(), s, model.NewSearchRequest(testRoot, "txt", "x", "", "", false), &recorder{})
			assert.Equal(t, OutcomeDone, res.Outcome)
			assert.Equal(t, 2, res.Stat.AllFound)
		})
	}
}

func TestSessionOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "u" || pass != "p" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/files/":
			w.Write([]byte(`<ul><li><a href="one.log">one</a></li><li><a href="/files/two.log">two</a></li></ul>`))
		case "/files/one.log":
			w.Write([]byte("ERROR disk full\nINFO ok\nERROR retry"))
		case "/files/two.log":
			w.Write([]byte("INFO all good"))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rc, err := cache.New(t.TempDir())
	require.NoError(t, err)
	s := NewSession(fetch.New(), rc, logger.NewNoOp())
	rec := &recorder{}

	req := model.NewSearchRequest(srv.URL+"/files/", "log", `ERROR \w+`, "u", "p", true)
	res := Run(context.Background(), s, req, rec)

	require.Equal(t, OutcomeDone, res.Outcome, rec.lines)
	assert.Equal(t, Stat{AllFound: 2, FoundFiles: 1, FinishedFiles: 2, AllFiles: 2}, res.Stat)
	assert.Equal(t, 1, rec.count("'ERROR disk' found at position 0"))
	assert.Equal(t, "Done! Found: 2 in 1/2 (100%)", rec.lines[len(rec.lines)-1])
}

func strPtr(s string) *string { return &s }
