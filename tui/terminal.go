package tui

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is used when the output is not a terminal.
	DefaultTerminalWidth = 80
	// MinTerminalWidth keeps the replay table's fixed columns intact.
	MinTerminalWidth = 60
	// MaxTerminalWidth caps long target paths on very wide terminals.
	MaxTerminalWidth = 200
)

// TerminalWidth returns the rendering width for w. COLUMNS overrides
// detection, which keeps piped output and tests reproducible.
func TerminalWidth(w io.Writer) int {
	width := 0
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		width = cols
	} else if f, ok := w.(*os.File); ok {
		width, _, _ = term.GetSize(int(f.Fd()))
	}

	return clampWidth(width)
}

func clampWidth(width int) int {
	switch {
	case width <= 0:
		return DefaultTerminalWidth
	case width < MinTerminalWidth:
		return MinTerminalWidth
	case width > MaxTerminalWidth:
		return MaxTerminalWidth
	default:
		return width
	}
}

// IsWriterTerminal returns true if w is backed by a terminal file descriptor.
func IsWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
