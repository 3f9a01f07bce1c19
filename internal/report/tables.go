package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/search"
)

// UnitState is the per-resource state shown in the summary.
func UnitState(u *search.Unit) string {
	switch {
	case u.Err() != nil:
		return "failed"
	case u.Finished():
		return "done"
	default:
		return "not finished"
	}
}

// WriteSummary prints one row per resource and a totals footer.
func WriteSummary(w io.Writer, res search.Result, units []*search.Unit) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Resource", "Found", "State"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 80},
		{Number: 2, Align: text.AlignRight},
	})

	for _, u := range units {
		t.AppendRow(table.Row{u.Name(), u.Found(), UnitState(u)})
	}
	t.AppendFooter(table.Row{res.Outcome.String(), res.Stat.AllFound, res.Took.Round(time.Millisecond).String()})
	t.Render()
}

// WriteCacheTable prints one row per cache bucket.
func WriteCacheTable(w io.Writer, entries []cache.Entry, formatSize func(int64) string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Root", "Bucket", "Files", "Size", "Last used"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	var total int64
	for _, e := range entries {
		last := ""
		if !e.LastAccessed.IsZero() {
			last = e.LastAccessed.Format(time.DateTime)
		}
		t.AppendRow(table.Row{e.Root, e.Hash, e.Files, formatSize(e.Size), last})
		total += e.Size
	}
	t.AppendFooter(table.Row{"", "", len(entries), formatSize(total), ""})
	t.Render()
}
