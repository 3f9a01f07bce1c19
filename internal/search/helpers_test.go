package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/fetch"
	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
)

type fakeFetcher struct {
	pages   map[string]string
	errs    map[string]error
	calls   map[string]int
	onFetch func(address string)
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string, _ model.Credentials) (string, error) {
	f.calls[address]++
	if f.onFetch != nil {
		f.onFetch(address)
	}
	if ctx.Err() != nil {
		return "", fetch.ErrCancelled
	}
	if err, ok := f.errs[address]; ok {
		return "", err
	}
	text, ok := f.pages[address]
	if !ok {
		return "", &fetch.StatusError{Address: address, StatusCode: 404}
	}
	return text, nil
}

func (f *fakeFetcher) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type recorder struct {
	lines []string
	stats []Stat
	onLog func(line string)
}

func (r *recorder) Log(line string) {
	r.lines = append(r.lines, line)
	if r.onLog != nil {
		r.onLog(line)
	}
}

func (r *recorder) Progress(s Stat) { r.stats = append(r.stats, s) }

func (r *recorder) count(substr string) int {
	n := 0
	for _, l := range r.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, f Fetcher) (*Session, *cache.ResourceCache) {
	t.Helper()
	rc, err := cache.New(t.TempDir())
	require.NoError(t, err)
	return NewSession(f, rc, logger.NewNoOp()), rc
}

func refs(units []*Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.LocalRef
	}
	return out
}
