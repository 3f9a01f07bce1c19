package search

import (
	"fmt"
	"strings"
)

// Reporter receives the append-only log lines and progress snapshots of a
// run. It is called from the worker goroutine only; implementations that
// hand off to another goroutine must do so safely.
type Reporter interface {
	Log(line string)
	Progress(stat Stat)
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Log(string)     {}
func (discard) Progress(Stat) {}

// safeSprintf formats like fmt.Sprintf but falls back to the raw format
// string when fmt reports a verb or argument mismatch.
func safeSprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	out := fmt.Sprintf(format, args...)
	if !strings.Contains(out, "%!") {
		return out
	}
	for _, arg := range args {
		if strings.Contains(fmt.Sprint(arg), "%!") {
			return out
		}
	}
	return format
}
