package search

import (
	"context"
	"errors"
	"regexp"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/fetch"
	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
)

const (
	contextBefore = 50
	contextWidth  = 100
)

// Fetcher retrieves a resource's text.
type Fetcher interface {
	Fetch(ctx context.Context, address string, creds model.Credentials) (string, error)
}

// Cache stores fetched text keyed by root and resolved address.
type Cache interface {
	TryLoad(root, resolved string) (string, bool, error)
	Store(root, resolved, text string) error
}

// scope is the state every unit of a session reads while searching. The
// session owns it and only changes it between runs; units never write it.
type scope struct {
	req     model.SearchRequest
	pattern *regexp.Regexp
	fetcher Fetcher
	cache   Cache
	report  Reporter
	agg     *Aggregator
	log     logger.Interface
}

func (sc *scope) progress() {
	sc.report.Progress(sc.agg.Snapshot())
}

// Unit is one resource under search. Its identity is LocalRef.
type Unit struct {
	LocalRef string

	scope    *scope
	found    int
	finished bool
	err      error
}

func newUnit(sc *scope, ref string) *Unit {
	return &Unit{LocalRef: ref, scope: sc}
}

// Address resolves the unit against the active root.
func (u *Unit) Address() (string, error) {
	return model.Resolve(u.scope.req.Root, u.LocalRef)
}

// Name is the label used in log lines.
func (u *Unit) Name() string {
	if u.LocalRef == "" {
		return u.scope.req.Root
	}
	return u.LocalRef
}

func (u *Unit) Found() int     { return u.found }
func (u *Unit) Finished() bool { return u.finished }
func (u *Unit) Err() error     { return u.err }

// ResetStat clears the counters before the unit is searched again.
func (u *Unit) ResetStat() {
	u.found = 0
	u.finished = false
	u.err = nil
}

func (u *Unit) logf(format string, args ...any) {
	u.scope.report.Log(safeSprintf(format, args...))
}

// Search loads the unit's text (cache first) and reports every match of
// the current pattern. A cancelled run returns nil and leaves the unit
// unfinished; fetch failures are returned to the caller.
func (u *Unit) Search(ctx context.Context) error {
	address, err := u.Address()
	if err != nil {
		u.err = err
		return err
	}

	text, err := u.load(ctx, address)
	if err != nil {
		if errors.Is(err, fetch.ErrCancelled) {
			u.logf("Cancelled")
			return nil
		}
		u.err = err
		return err
	}

	m := newMatcher(u.scope.pattern, text)
	start, end, ok := m.next()
	if !ok {
		u.logf("Matches not found.")
	}

	for ; ok; start, end, ok = m.next() {
		if ctx.Err() != nil {
			return nil
		}
		u.logf("'%s' found at position %d", text[start:end], start)
		u.found++
		u.scope.progress()

		u.scope.report.Log(Excerpt(text, start))
		u.scope.report.Log("")
	}

	u.finished = true
	u.scope.progress()
	return nil
}

func (u *Unit) load(ctx context.Context, address string) (string, error) {
	root := u.scope.req.Root
	log := u.scope.log.With("address", address)

	text, ok, err := u.scope.cache.TryLoad(root, address)
	if err != nil {
		log.WithError(err).Warn("cache read failed, fetching instead")
	}
	if ok {
		u.logf("Read cached file %s, hash=%s, size=%d", u.Name(), cache.Hash(address), len(text))
		return text, nil
	}

	text, err = u.scope.fetcher.Fetch(ctx, address, u.scope.req.Auth)
	if err != nil {
		return "", err
	}
	if err := u.scope.cache.Store(root, address, text); err != nil {
		log.WithError(err).Warn("cache write failed")
	}
	u.logf("Load file %s, size=%d", u.Name(), len(text))
	return text, nil
}

// Excerpt returns up to contextWidth characters of text starting at most
// contextBefore characters before start, clamped to the text bounds.
func Excerpt(text string, start int) string {
	from := start - contextBefore
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		from = len(text)
	}
	to := from + contextWidth
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}
