// Package report renders searches for non-interactive use: plain log lines,
// a progress bar and summary tables.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/altinukshini/urlgrep/internal/search"
)

// Printer is a search.Reporter that writes log lines to out and drives a
// progress bar on barOut. It is used from the worker goroutine only.
type Printer struct {
	out    io.Writer
	barOut io.Writer
	bar    *progressbar.ProgressBar
	last   search.Stat
}

// NewPrinter creates a printer. A nil barOut disables the progress bar.
func NewPrinter(out, barOut io.Writer) *Printer {
	return &Printer{out: out, barOut: barOut}
}

func (p *Printer) Log(line string) {
	if p.bar != nil {
		_ = p.bar.Clear()
	}
	fmt.Fprintln(p.out, line)
}

func (p *Printer) Progress(stat search.Stat) {
	p.last = stat
	if p.barOut == nil || stat.AllFiles == 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(stat.AllFiles,
			progressbar.OptionSetWriter(p.barOut),
			progressbar.OptionSetDescription("Searching"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	if p.bar.GetMax() != stat.AllFiles {
		p.bar.ChangeMax(stat.AllFiles)
	}
	p.bar.Describe(stat.String())
	_ = p.bar.Set(stat.FinishedFiles)
}

// Last returns the most recent progress snapshot.
func (p *Printer) Last() search.Stat {
	return p.last
}

// Close removes the progress bar from the terminal.
func (p *Printer) Close() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
