// Package tui provides the presentation layer for terminal output.
package tui

import (
	"fmt"
	"io"
	"os"
)

// Format represents the output format.
type Format string

const (
	// FormatTable is the default table format.
	FormatTable Format = "table"
	// FormatJSON is JSON format.
	FormatJSON Format = "json"
	// FormatJSONL is newline-delimited JSON format.
	FormatJSONL Format = "jsonl"
	// FormatCSV is CSV format.
	FormatCSV Format = "csv"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatJSONL, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, jsonl or csv)", s)
	}
}

// Presenter defines the interface for output rendering.
type Presenter interface {
	// RenderDecision renders a one-off policy evaluation.
	RenderDecision(decision *DecisionView) error

	// RenderReplay renders replayed records and their summary.
	RenderReplay(replay *ReplayView) error

	// RenderRules renders the active ruleset.
	RenderRules(rules *RulesView) error

	// RenderStatus renders the effective runtime setup.
	RenderStatus(status *StatusView) error

	// RenderConfig renders the configuration.
	RenderConfig(config *ConfigView) error

	// RenderDiff renders a diff view.
	RenderDiff(diff *DiffView) error

	// RenderVersion renders build information.
	RenderVersion(version *VersionView) error

	// RenderUpdateNotice renders an update availability notice.
	RenderUpdateNotice(notice *UpdateNoticeView) error

	// RenderError renders an error message.
	RenderError(err error) error

	// RenderMessage renders a simple message.
	RenderMessage(message string) error
}

// PresenterOptions configures presenter behavior.
type PresenterOptions struct {
	// Writer is the output destination.
	Writer io.Writer
	// UseColors indicates if colors should be used.
	UseColors bool
	// Verbose increases output verbosity.
	Verbose bool
	// TerminalWidth is the width of the terminal for table rendering.
	// If 0, the width will be auto-detected.
	TerminalWidth int
}

// NewPresenter creates a new presenter for the given format.
func NewPresenter(format Format, opts PresenterOptions) Presenter {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case FormatJSON:
		return NewJSONPresenter(opts)
	case FormatJSONL:
		return NewJSONLPresenter(opts)
	case FormatCSV:
		return NewCSVPresenter(opts)
	default:
		return NewTablePresenter(opts)
	}
}
