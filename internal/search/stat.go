package search

import "fmt"

// Stat is an aggregate snapshot derived from the unit set. It has no
// storage of its own, so it cannot drift from unit state.
type Stat struct {
	AllFound      int
	FoundFiles    int
	FinishedFiles int
	FailedFiles   int
	AllFiles      int
}

// PercentFinished is 100 for an empty set, else finished*100/total
// rounded down.
func (s Stat) PercentFinished() int {
	if s.AllFiles == 0 {
		return 100
	}
	return 100 * s.FinishedFiles / s.AllFiles
}

func (s Stat) String() string {
	line := fmt.Sprintf("Found: %d in %d/%d (%d%%)", s.AllFound, s.FoundFiles, s.AllFiles, s.PercentFinished())
	if s.FailedFiles > 0 {
		line += fmt.Sprintf(", %d failed", s.FailedFiles)
	}
	return line
}

// Compute derives a Stat from units. It is O(n) per call, which is fine
// for the unit counts an index page yields.
func Compute(units []*Unit) Stat {
	s := Stat{AllFiles: len(units)}
	for _, u := range units {
		s.AllFound += u.found
		if u.found > 0 {
			s.FoundFiles++
		}
		if u.finished {
			s.FinishedFiles++
		}
		if u.err != nil {
			s.FailedFiles++
		}
	}
	return s
}

// Aggregator is bound to the unit set of one run.
type Aggregator struct {
	units []*Unit
}

func NewAggregator(units []*Unit) *Aggregator {
	return &Aggregator{units: units}
}

func (a *Aggregator) Snapshot() Stat {
	if a == nil {
		return Stat{}
	}
	return Compute(a.units)
}
