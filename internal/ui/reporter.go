package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/urlgrep/internal/search"
)

// maxBatch bounds how many log lines one SearchEventsMsg carries, so a
// burst of matches still lets the UI repaint.
const maxBatch = 200

type eventKind int

const (
	eventLine eventKind = iota
	eventStat
	eventDone
)

type event struct {
	kind   eventKind
	line   string
	stat   search.Stat
	result search.Result
}

// ChannelReporter is a search.Reporter that hands events from the worker
// goroutine to the Bubble Tea loop. Sends block when the buffer is full,
// so the worker is paced by the UI.
type ChannelReporter struct {
	events  chan event
	quit    chan struct{}
	abandon sync.Once
}

func NewChannelReporter(buffer int) *ChannelReporter {
	return &ChannelReporter{
		events: make(chan event, buffer),
		quit:   make(chan struct{}),
	}
}

func (r *ChannelReporter) Log(line string) {
	r.send(event{kind: eventLine, line: line})
}

func (r *ChannelReporter) Progress(stat search.Stat) {
	r.send(event{kind: eventStat, stat: stat})
}

// Finish delivers the run result and closes the stream. Only the worker
// calls it, after its last Log or Progress.
func (r *ChannelReporter) Finish(res search.Result) {
	r.send(event{kind: eventDone, result: res})
	close(r.events)
}

// Abandon unblocks a worker stuck on a full buffer once nobody reads
// anymore, e.g. when the program quits mid-run.
func (r *ChannelReporter) Abandon() {
	r.abandon.Do(func() { close(r.quit) })
}

func (r *ChannelReporter) send(ev event) {
	select {
	case r.events <- ev:
	case <-r.quit:
	}
}

// Next waits for the next event and drains whatever else is already
// queued into a single message.
func (r *ChannelReporter) Next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-r.events
		if !ok {
			return nil
		}
		var msg SearchEventsMsg
		msg.add(ev)
		for msg.Done == nil && len(msg.Lines) < maxBatch {
			select {
			case ev, ok := <-r.events:
				if !ok {
					return msg
				}
				msg.add(ev)
			default:
				return msg
			}
		}
		return msg
	}
}

func (m *SearchEventsMsg) add(ev event) {
	switch ev.kind {
	case eventLine:
		m.Lines = append(m.Lines, ev.line)
	case eventStat:
		s := ev.stat
		m.Stat = &s
	case eventDone:
		res := ev.result
		m.Done = &res
		s := res.Stat
		m.Stat = &s
	}
}
