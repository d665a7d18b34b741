package tui

import (
	"fmt"
	"io"
	"sync"
)

const (
	clearLine       = "\033[2K"
	carriageReturn  = "\r"
	clearLineReturn = clearLine + carriageReturn
)

// ProgressWriter writes progress updates to a single terminal line. Step is
// safe to call from several goroutines.
type ProgressWriter struct {
	mu         sync.Mutex
	w          io.Writer
	color      *Colorizer
	isTerminal bool

	label string
	total int
	done  int
}

// NewProgressWriter creates a new ProgressWriter. Nothing is written unless w
// is a terminal.
func NewProgressWriter(w io.Writer, useColors bool) *ProgressWriter {
	return newProgressWriter(w, useColors, IsWriterTerminal(w))
}

func newProgressWriter(w io.Writer, useColors, isTerminal bool) *ProgressWriter {
	return &ProgressWriter{
		w:          w,
		color:      NewColorizer(useColors),
		isTerminal: isTerminal,
	}
}

// Start resets the counter for a run of total steps.
func (p *ProgressWriter) Start(label string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.label = label
	p.total = total
	p.done = 0
	p.render()
}

// Step records one finished unit of work.
func (p *ProgressWriter) Step() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.render()
}

// Done returns the number of steps recorded since Start.
func (p *ProgressWriter) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *ProgressWriter) render() {
	if !p.isTerminal {
		return
	}
	msg := fmt.Sprintf("%s %d/%d", p.label, p.done, p.total)
	fmt.Fprint(p.w, clearLineReturn+p.color.Dim(msg))
}

// Clear clears the progress line.
func (p *ProgressWriter) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isTerminal {
		return
	}
	fmt.Fprint(p.w, clearLineReturn)
}
