// Package search runs a pattern over the resources reachable from a root
// address: discovery, fetch-or-load per resource, and match reporting.
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/altinukshini/urlgrep/internal/fetch"
	"github.com/altinukshini/urlgrep/internal/links"
	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
)

var (
	ErrEmptyPattern = errors.New("empty search pattern")
	ErrBadPattern   = errors.New("invalid search pattern")
	ErrDiscovery    = errors.New("discovery failed")
)

// Session owns the units of consecutive runs against one root. Units are
// kept across runs so a pattern-only change reuses cached content.
type Session struct {
	units  []*Unit
	active bool
	scope  *scope
	log    logger.Interface
}

func NewSession(f Fetcher, c Cache, log logger.Interface) *Session {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Session{
		scope: &scope{fetcher: f, cache: c, report: Discard, log: log},
		log:   log.WithComponent("search"),
	}
}

// Request returns the active request, if any.
func (s *Session) Request() (model.SearchRequest, bool) {
	return s.scope.req, s.active
}

// Units returns the current unit set in discovery order.
func (s *Session) Units() []*Unit {
	return append([]*Unit(nil), s.units...)
}

// Clear drops all units and the active request.
func (s *Session) Clear() {
	s.units = nil
	s.active = false
	s.scope.req = model.SearchRequest{}
	s.scope.pattern = nil
	s.scope.agg = nil
}

// Search runs req. It must not be called concurrently; the caller's worker
// goroutine owns the session for the duration of the call.
func (s *Session) Search(ctx context.Context, req model.SearchRequest, rep Reporter) Result {
	start := time.Now()
	runID := uuid.NewString()
	log := s.log.With("run_id", runID, "root", req.Root)

	if rep == nil {
		rep = Discard
	}
	s.scope.req = req
	s.scope.report = rep
	s.scope.log = log
	s.active = true

	result := func(o Outcome, err error) Result {
		r := Result{RunID: runID, Outcome: o, Err: err, Stat: s.scope.agg.Snapshot(), Took: time.Since(start)}
		log.Info("run finished", "outcome", o.String(), "found", r.Stat.AllFound, "units", r.Stat.AllFiles, "took", r.Took)
		return r
	}

	if req.Pattern == "" {
		rep.Log("Search text is empty")
		return result(OutcomeFailed, ErrEmptyPattern)
	}
	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		rep.Log(safeSprintf("Invalid search pattern: %v", err))
		return result(OutcomeFailed, fmt.Errorf("%w: %v", ErrBadPattern, err))
	}

	s.scope.agg = nil
	for _, u := range s.units {
		u.ResetStat()
	}
	if !req.HasFilter() {
		s.ensureRootUnit()
	} else if err := s.discover(ctx, req); err != nil {
		if errors.Is(err, fetch.ErrCancelled) {
			rep.Log("Cancelled")
			return result(OutcomeCancelled, nil)
		}
		log.WithError(err).Warn("discovery failed")
		return result(OutcomeFailed, err)
	}

	// Every unit, including ones this discovery pass did not see, now
	// searches with the new pattern.
	s.scope.pattern = re
	s.scope.agg = NewAggregator(s.units)
	rep.Progress(s.scope.agg.Snapshot())

	for _, u := range s.units {
		if ctx.Err() != nil {
			break
		}
		if err := u.Search(ctx); err != nil {
			rep.Log(safeSprintf("Error: %s: %v", u.Name(), err))
			log.WithError(err).Warn("unit failed", "ref", u.LocalRef)
			rep.Progress(s.scope.agg.Snapshot())
		}
	}

	if ctx.Err() != nil {
		return result(OutcomeCancelled, nil)
	}
	return result(OutcomeDone, nil)
}

// ensureRootUnit leaves exactly one unit, the root itself, reusing it when
// it already exists.
func (s *Session) ensureRootUnit() {
	for _, u := range s.units {
		if u.LocalRef == "" {
			u.ResetStat()
			s.units = []*Unit{u}
			return
		}
	}
	s.units = []*Unit{newUnit(s.scope, "")}
}

func (s *Session) discover(ctx context.Context, req model.SearchRequest) error {
	rep := s.scope.report

	address, err := model.Resolve(req.Root, "")
	if err != nil {
		rep.Log(safeSprintf("Document couldn't be loaded: %v", err))
		return fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	text, err := s.scope.fetcher.Fetch(ctx, address, req.Auth)
	if err != nil {
		if errors.Is(err, fetch.ErrCancelled) {
			return err
		}
		rep.Log(safeSprintf("Document couldn't be loaded: %v", err))
		return fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	doc, err := links.Parse(strings.NewReader(text))
	if err != nil {
		rep.Log("Document couldn't be loaded.")
		return fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	refs, err := links.Extract(doc)
	if err != nil {
		rep.Log("No urls inside document.")
		return fmt.Errorf("%w: %w", ErrDiscovery, err)
	}

	s.dropRootUnit()
	for _, ref := range links.Filter(refs, req.Extensions) {
		if u := s.find(ref); u != nil {
			u.ResetStat()
			rep.Log(safeSprintf("Use existing file:%s", ref))
			continue
		}
		s.units = append(s.units, newUnit(s.scope, ref))
		rep.Log(safeSprintf("Found new file:%s", ref))
	}
	return nil
}

// dropRootUnit removes the root-as-resource unit left by an earlier
// unfiltered run; in index mode the root is the index, not a resource.
func (s *Session) dropRootUnit() {
	kept := s.units[:0]
	for _, u := range s.units {
		if u.LocalRef != "" {
			kept = append(kept, u)
		}
	}
	s.units = kept
}

func (s *Session) find(ref string) *Unit {
	for _, u := range s.units {
		if u.LocalRef == ref {
			return u
		}
	}
	return nil
}
