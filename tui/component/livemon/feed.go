package livemon

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/safedep/authgate/gate"
)

const (
	defaultFeedSize = 1024
	maxBatch        = 256
)

type entry struct {
	at     time.Time
	report gate.Report
}

// Feed is a gate.Observer that hands reports to the monitor. Observe never
// blocks: when the buffer is full the report is dropped and counted.
type Feed struct {
	mu      sync.RWMutex
	closed  bool
	ch      chan entry
	dropped atomic.Uint64
	now     func() time.Time
}

// NewFeed creates a Feed buffering up to size reports.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}

	return &Feed{
		ch:  make(chan entry, size),
		now: time.Now,
	}
}

// Observe queues the report for display.
func (f *Feed) Observe(report gate.Report) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		f.dropped.Add(1)
		return
	}

	select {
	case f.ch <- entry{at: f.now(), report: report}:
	default:
		f.dropped.Add(1)
	}
}

// Dropped returns the number of reports discarded because the monitor fell
// behind.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}

// Close ends the feed. Reports observed afterwards are dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// listen waits for at least one report and drains whatever else is already
// buffered into the same message.
func (f *Feed) listen() tea.Cmd {
	return func() tea.Msg {
		first, ok := <-f.ch
		if !ok {
			return feedClosedMsg{}
		}

		entries := []entry{first}
		for len(entries) < maxBatch {
			select {
			case e, ok := <-f.ch:
				if !ok {
					return reportsMsg{entries: entries, dropped: f.Dropped()}
				}
				entries = append(entries, e)
			default:
				return reportsMsg{entries: entries, dropped: f.Dropped()}
			}
		}

		return reportsMsg{entries: entries, dropped: f.Dropped()}
	}
}

var _ gate.Observer = (*Feed)(nil)
