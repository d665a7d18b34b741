package replay

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/conc/pool"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/gate"
	"github.com/safedep/authgate/subsystem/memory"
)

// Result pairs a fixture record with how the pipeline handled it.
type Result struct {
	Record Record
	Report gate.Report
	// Mismatch is set when the record carried an expectation that the
	// decision did not meet.
	Mismatch bool
}

// Summary aggregates replay results.
type Summary struct {
	Total      int
	Allowed    int
	Denied     int
	Malformed  int
	Failures   int
	Mismatches int
}

// Config holds configuration for a Runner.
type Config struct {
	// Concurrency bounds the number of events in flight. Defaults to 1.
	Concurrency int
	// DisplayMax bounds the path text captured in reports.
	DisplayMax int
	// Observers are notified in addition to the runner's own collection.
	Observers []gate.Observer
}

// Runner replays fixtures through a gate.Handler backed by a fresh
// in-memory client per run.
type Runner struct {
	evaluator *security.Evaluator
	config    Config
}

// NewRunner creates a Runner that decides with evaluator.
func NewRunner(evaluator *security.Evaluator, config Config) *Runner {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	return &Runner{
		evaluator: evaluator,
		config:    config,
	}
}

type reportIndex struct {
	mu      sync.Mutex
	reports map[events.ID]gate.Report
}

func (r *reportIndex) Observe(report gate.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.EventID] = report
}

// Run replays records and returns one Result per record, in input order.
func (r *Runner) Run(ctx context.Context, records []Record) ([]Result, error) {
	client := memory.New()
	defer client.Close()

	index := &reportIndex{reports: make(map[events.ID]gate.Report, len(records))}

	observers := append([]gate.Observer{index}, r.config.Observers...)
	handler := gate.NewHandler(r.evaluator, client,
		gate.WithObservers(observers...),
		gate.WithDisplayMax(r.config.DisplayMax))

	evs := make([]*events.Event, len(records))
	for i, rec := range records {
		evs[i] = rec.Event()

		if rec.Inject != "" {
			outcome, err := response.ParseOutcome(rec.Inject)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", rec.Line, err)
			}
			client.InjectOutcome(evs[i].ID, outcome)
		}
	}

	p := pool.New().WithMaxGoroutines(r.config.Concurrency)
	for _, event := range evs {
		if ctx.Err() != nil {
			break
		}

		p.Go(func() {
			_ = client.Deliver(handler, event)
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, len(records))
	for i, rec := range records {
		report, ok := index.reports[evs[i].ID]
		if !ok {
			return nil, fmt.Errorf("line %d: event %s was not handled", rec.Line, evs[i].ID)
		}

		results[i] = Result{
			Record:   rec,
			Report:   report,
			Mismatch: rec.Expect != "" && rec.Expect != report.Decision.String(),
		}
	}

	return results, nil
}

// Summarize counts results by decision and outcome.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Report.IsDeny() {
			s.Denied++
		} else {
			s.Allowed++
		}

		if r.Report.Malformed != nil {
			s.Malformed++
		}

		if r.Report.Outcome.Class() != response.ClassOK {
			s.Failures++
		}

		if r.Mismatch {
			s.Mismatches++
		}
	}
	return s
}

// Format renders results as one tab-separated line each: decision,
// outcome, matched rule and target. The output is stable for a given
// fixture and policy and is what expectation files are compared against.
func Format(results []Result) string {
	var sb strings.Builder
	for _, r := range results {
		rule := r.Report.MatchedRule
		if rule == "" {
			rule = "-"
		}

		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n",
			r.Report.Decision, r.Report.Outcome, rule, r.Report.Target)
	}
	return sb.String()
}

// Diff returns a unified diff between expected and actual output, or an
// empty string when they match.
func Diff(name, expected, actual string) (string, error) {
	if expected == actual {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected/" + name,
		ToFile:   "actual/" + name,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff replay output: %w", err)
	}

	return diff, nil
}
