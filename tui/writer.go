package tui

import (
	"fmt"
	"io"
)

// tableWriter captures the first write error and skips everything after
// it, so renderers check one error at the end.
type tableWriter struct {
	w   io.Writer
	err error
}

func (tw *tableWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *tableWriter) println(args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintln(tw.w, args...)
}

// field writes an indented "label value" row of a status section.
func (tw *tableWriter) field(label string, value string) {
	tw.printf("  %-16s %s\n", label, value)
}

// Err returns the first write error, or nil.
func (tw *tableWriter) Err() error {
	return tw.err
}
