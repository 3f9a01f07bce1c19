package search

import (
	"context"
	"time"

	"github.com/altinukshini/urlgrep/internal/model"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "done"
	}
}

type Result struct {
	RunID   string
	Outcome Outcome
	Stat    Stat
	Err     error
	Took    time.Duration
}

// StatusLine is the final line every run leaves in the log.
func (r Result) StatusLine() string {
	switch r.Outcome {
	case OutcomeCancelled:
		return "Cancelled! " + r.Stat.String()
	case OutcomeFailed:
		if r.Err != nil {
			return "Error: " + r.Err.Error()
		}
		return "Error: search failed"
	default:
		return "Done! " + r.Stat.String()
	}
}

// Run is what a front end calls for each search: it clears the session
// when the root changed since the previous run, searches, and writes the
// final status line.
func Run(ctx context.Context, s *Session, req model.SearchRequest, rep Reporter) Result {
	if rep == nil {
		rep = Discard
	}
	if prev, ok := s.Request(); ok && prev.Root != req.Root {
		s.Clear()
	}
	res := s.Search(ctx, req, rep)
	rep.Log(res.StatusLine())
	return res
}
