package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/safedep/authgate/gate"
	"github.com/safedep/authgate/replay"
	"github.com/safedep/authgate/tui"
)

// NewReplayCmd creates the replay command.
func NewReplayCmd() *cobra.Command {
	var (
		concurrency int
		expectPath  string
		update      bool
	)

	cmd := &cobra.Command{
		Use:   "replay <fixture.jsonl|->",
		Short: "Replay recorded events through the policy and response path",
		Long: `Replay a JSONL fixture of file-open events through the same handler
that serves the kernel, backed by an in-memory subsystem.

Each line is an object with actor, target and optional id, type,
target_length, inject, expired and expect fields. Records whose expect
field disagrees with the decision are reported as mismatches.

With --expect the tab-separated decision log is compared against a golden
file and any difference is shown as a unified diff. --update rewrites the
golden file instead. Mismatches exit with code 4.`,
		Example: `  authgate replay testdata/open.jsonl
  authgate replay testdata/open.jsonl --expect testdata/open.golden
  cat events.jsonl | authgate replay - --concurrency 8 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if update && expectPath == "" {
				return errors.New("--update requires --expect")
			}

			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			source := args[0]
			records, err := readFixture(cmd, source)
			if err != nil {
				return err
			}

			progress := tui.NewProgressWriter(cmd.ErrOrStderr(), app.Config.ShouldUseColors())
			observers := []gate.Observer{gate.ObserverFunc(func(gate.Report) { progress.Step() })}
			if globalFlags.Verbose {
				observers = append(observers, gate.NewLogObserver(true))
			}

			runner := replay.NewRunner(app.Evaluator, replay.Config{
				Concurrency: concurrency,
				DisplayMax:  app.Config.Diagnostics.PathMaxChars,
				Observers:   observers,
			})

			progress.Start("replaying", len(records))
			results, err := runner.Run(cmd.Context(), records)
			progress.Clear()
			if err != nil {
				return fmt.Errorf("replay failed: %w", err)
			}

			summary := replay.Summarize(results)
			if err := app.Presenter.RenderReplay(replayView(source, results, summary)); err != nil {
				return fmt.Errorf("failed to render replay: %w", err)
			}

			mismatches := summary.Mismatches
			if expectPath != "" {
				matched, err := compareGolden(app, expectPath, replay.Format(results), update)
				if err != nil {
					return err
				}
				if !matched {
					mismatches++
				}
			}

			if mismatches > 0 {
				return ErrReplayMismatch(mismatches)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "events delivered in parallel")
	cmd.Flags().StringVar(&expectPath, "expect", "", "golden file to compare the decision log against")
	cmd.Flags().BoolVar(&update, "update", false, "rewrite the --expect file with the current output")

	return cmd
}

func readFixture(cmd *cobra.Command, source string) ([]replay.Record, error) {
	var r io.Reader
	if source == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open fixture: %w", err)
		}
		defer f.Close()
		r = f
	}

	records, err := replay.ReadRecords(r)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", source, err)
	}
	return records, nil
}

// compareGolden diffs actual against the golden file, or rewrites it when
// update is set. It reports whether the output matched.
func compareGolden(app *App, path, actual string, update bool) (bool, error) {
	if update {
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			return false, fmt.Errorf("failed to update %s: %w", path, err)
		}
		return true, app.Presenter.RenderMessage(fmt.Sprintf("Updated %s", path))
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read expectations: %w", err)
	}

	diff, err := replay.Diff(path, string(expected), actual)
	if err != nil {
		return false, err
	}

	view := &tui.DiffView{Name: path, Identical: diff == "", Content: diff}
	if err := app.Presenter.RenderDiff(view); err != nil {
		return false, fmt.Errorf("failed to render diff: %w", err)
	}

	return view.Identical, nil
}

func replayView(source string, results []replay.Result, summary replay.Summary) *tui.ReplayView {
	view := &tui.ReplayView{
		Source: source,
		Summary: tui.ReplaySummaryView{
			Total:      summary.Total,
			Allowed:    summary.Allowed,
			Denied:     summary.Denied,
			Malformed:  summary.Malformed,
			Failures:   summary.Failures,
			Mismatches: summary.Mismatches,
		},
	}

	for _, res := range results {
		r := res.Report
		rv := &tui.ReplayResultView{
			Line:        res.Record.Line,
			ID:          r.EventID.String(),
			Type:        string(r.EventType),
			Actor:       r.Actor,
			Target:      r.Target,
			Decision:    r.Decision.String(),
			MatchedRule: r.MatchedRule,
			Outcome:     r.Outcome.String(),
			Class:       r.Outcome.Class().String(),
			Expected:    res.Record.Expect,
			Mismatch:    res.Mismatch,
			Latency:     r.Latency,
		}
		if r.Malformed != nil {
			rv.Malformed = r.Malformed.Error()
		}
		view.Results = append(view.Results, rv)
	}

	return view
}
