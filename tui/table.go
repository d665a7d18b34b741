package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// TablePresenter renders output in table format.
type TablePresenter struct {
	w         io.Writer
	color     *Colorizer
	verbose   bool
	termWidth int
}

// NewTablePresenter creates a new table presenter.
func NewTablePresenter(opts PresenterOptions) *TablePresenter {
	termWidth := opts.TerminalWidth
	if termWidth == 0 {
		termWidth = TerminalWidth(opts.Writer)
	}
	return &TablePresenter{
		w:         opts.Writer,
		color:     NewColorizer(opts.UseColors),
		verbose:   opts.Verbose,
		termWidth: termWidth,
	}
}

// RenderDecision renders a one-off policy evaluation.
func (p *TablePresenter) RenderDecision(d *DecisionView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%-10s %s\n", "Decision", p.color.Decision(d.Decision))
	tw.printf("%-10s %s\n", "Target", p.color.Path(d.Target))
	tw.printf("%-10s %s\n", "Actor", OrDash(d.Actor))
	if d.MatchedRule != "" {
		tw.printf("%-10s %s\n", "Rule", d.MatchedRule)
	}
	if d.Reason != "" {
		tw.printf("%-10s %s\n", "Reason", p.color.Dim(d.Reason))
	}
	if d.Malformed != "" {
		tw.printf("%-10s %s\n", "Malformed", p.color.Warning(d.Malformed))
	}

	cache := "no cache"
	if d.Cacheable {
		cache = "cache"
	}
	tw.printf("%-10s %s (%s)\n", "Response", d.Permissions, cache)

	return tw.Err()
}

// replayColumnWidths holds the calculated widths for replay table columns.
type replayColumnWidths struct {
	line     int
	decision int
	outcome  int
	rule     int
	target   int
	total    int
}

// calculateReplayColumnWidths computes column widths based on terminal width.
// The target column absorbs whatever the fixed columns leave over.
func (p *TablePresenter) calculateReplayColumnWidths() replayColumnWidths {
	const (
		lineWidth      = 5
		decisionWidth  = 8
		outcomeWidth   = 18
		ruleWidth      = 18
		minTargetWidth = 15
		maxTargetWidth = 100
		spacing        = 4
	)

	fixedWidth := lineWidth + decisionWidth + outcomeWidth + ruleWidth + spacing
	targetWidth := p.termWidth - fixedWidth
	if targetWidth < minTargetWidth {
		targetWidth = minTargetWidth
	}
	if targetWidth > maxTargetWidth {
		targetWidth = maxTargetWidth
	}

	return replayColumnWidths{
		line:     lineWidth,
		decision: decisionWidth,
		outcome:  outcomeWidth,
		rule:     ruleWidth,
		target:   targetWidth,
		total:    fixedWidth + targetWidth,
	}
}

// RenderReplay renders replayed records and their summary.
func (p *TablePresenter) RenderReplay(r *ReplayView) error {
	tw := &tableWriter{w: p.w}

	if len(r.Results) == 0 {
		tw.println("No records replayed.")
		return tw.Err()
	}

	cols := p.calculateReplayColumnWidths()

	tw.printf("Replay of %s (%d records)\n", p.color.Path(r.Source), len(r.Results))
	tw.println(HorizontalLine(cols.total))
	tw.printf("%-*s %-*s %-*s %-*s %s\n",
		cols.line, "Line", cols.decision, "Decision", cols.outcome, "Outcome", cols.rule, "Rule", "Target")
	tw.println(HorizontalLine(cols.total))

	for _, res := range r.Results {
		// Pad before coloring so escape codes do not break alignment.
		decision := p.color.Decision(res.Decision) + strings.Repeat(" ", padding(res.Decision, cols.decision))
		outcome := p.color.Outcome(res.Outcome, res.Class) + strings.Repeat(" ", padding(res.Outcome, cols.outcome))

		tw.printf("%-*d %s %s %-*s %s\n",
			cols.line, res.Line,
			decision,
			outcome,
			cols.rule, TruncateString(OrDash(res.MatchedRule), cols.rule),
			TruncatePath(res.Target, cols.target))

		if res.Malformed != "" {
			tw.printf("%*s %s\n", cols.line, "", p.color.Warning("malformed: "+res.Malformed))
		}
		if res.Mismatch {
			tw.printf("%*s %s\n", cols.line, "", p.color.Error("expected "+res.Expected))
		}
		if p.verbose {
			tw.printf("%*s %s\n", cols.line, "",
				p.color.Dim(fmt.Sprintf("id %s  %s  actor %s  %s", res.ID, res.Type, OrDash(res.Actor), FormatDuration(res.Latency))))
		}
	}

	tw.println(HorizontalLine(cols.total))

	s := r.Summary
	summary := fmt.Sprintf("%s records: %s allowed, %s denied, %s malformed, %s failed responses",
		FormatNumber(s.Total),
		p.color.Number(FormatNumber(s.Allowed)),
		p.color.Number(FormatNumber(s.Denied)),
		p.color.Number(FormatNumber(s.Malformed)),
		p.color.Number(FormatNumber(s.Failures)))
	if s.Mismatches > 0 {
		summary += " " + p.color.Error(fmt.Sprintf("(%d mismatches)", s.Mismatches))
	}
	tw.println(summary)

	return tw.Err()
}

func padding(s string, width int) int {
	if len(s) >= width {
		return 0
	}
	return width - len(s)
}

// RenderRules renders the active ruleset.
func (p *TablePresenter) RenderRules(r *RulesView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%s %s\n", p.color.Header("Default decision:"), p.color.Decision(r.DefaultDecision))
	tw.println()

	if len(r.Rules) == 0 {
		tw.println("No rules configured.")
		return tw.Err()
	}

	tw.printf("%-3s %-20s %-7s %-7s %-30s %s\n", "#", "Name", "Action", "Match", "Path", "Actor")
	tw.println(HorizontalLine(minInt(p.termWidth, 90)))
	for _, rule := range r.Rules {
		tw.printf("%-3d %-20s %s %-7s %-30s %s\n",
			rule.Index,
			TruncateString(rule.Name, 20),
			p.color.Decision(rule.Action)+strings.Repeat(" ", padding(rule.Action, 7)),
			rule.Match,
			p.color.Path(rule.Path)+strings.Repeat(" ", padding(rule.Path, 30)),
			OrDash(rule.Actor))
	}
	tw.println()
	tw.printf("%d rules, first match wins\n", len(r.Rules))

	return tw.Err()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RenderStatus renders the effective runtime setup.
func (p *TablePresenter) RenderStatus(s *StatusView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%s\n\n", p.color.Header("authgate "+s.Version))

	tw.printf("%s\n", p.color.Header("Subsystem"))
	backend := p.color.StatusOK()
	if !s.BackendSupported {
		backend = p.color.StatusFail()
	}
	tw.field("Backend", s.Backend+" "+backend)
	if s.BackendError != "" {
		tw.field("", p.color.Dim(s.BackendError))
	}
	tw.field("Platform", s.Platform)
	tw.field("Watch paths", strings.Join(s.WatchPaths, ", "))
	tw.println()

	tw.printf("%s\n", p.color.Header("Policy"))
	tw.field("Default", p.color.Decision(s.DefaultDecision))
	tw.field("Rules", p.color.Number(FormatNumber(s.RuleCount)))
	tw.println()

	tw.printf("%s\n", p.color.Header("Config"))
	tw.field("Location", p.color.Path(s.ConfigLocation))
	metrics := "disabled"
	if s.MetricsListen != "" {
		metrics = "http://" + s.MetricsListen + "/metrics"
	}
	tw.field("Metrics", metrics)

	return tw.Err()
}

// RenderConfig renders the configuration.
func (p *TablePresenter) RenderConfig(config *ConfigView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%s\n", p.color.Header("Configuration"))
	tw.printf("Location: %s\n", p.color.Path(config.Location))
	tw.println(HorizontalLine(p.termWidth))
	tw.println()

	for _, kv := range flattenConfig(config.Values, "") {
		tw.printf("  %-30s %v\n", kv.key, kv.value)
	}

	return tw.Err()
}

type configEntry struct {
	key   string
	value interface{}
}

// flattenConfig turns nested settings into dotted keys, sorted.
func flattenConfig(m map[string]interface{}, prefix string) []configEntry {
	var entries []configEntry
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]interface{}); ok {
			entries = append(entries, flattenConfig(nested, fullKey)...)
			continue
		}
		entries = append(entries, configEntry{key: fullKey, value: value})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})
	return entries
}

// RenderDiff renders a diff view.
func (p *TablePresenter) RenderDiff(diff *DiffView) error {
	tw := &tableWriter{w: p.w}

	if diff.Identical {
		tw.printf("%s %s\n", p.color.StatusOK(), "replay output matches "+diff.Name)
		return tw.Err()
	}

	for _, line := range strings.Split(strings.TrimRight(diff.Content, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			tw.println(p.color.DiffHeader(line))
		case strings.HasPrefix(line, "+"):
			tw.println(p.color.DiffAdd(line))
		case strings.HasPrefix(line, "-"):
			tw.println(p.color.DiffRemove(line))
		case strings.HasPrefix(line, "@@"):
			tw.println(p.color.DiffHunk(line))
		default:
			tw.println(line)
		}
	}

	return tw.Err()
}

// RenderVersion renders build information.
func (p *TablePresenter) RenderVersion(v *VersionView) error {
	tw := &tableWriter{w: p.w}
	tw.printf("authgate %s\n", v.Version)
	tw.printf("commit: %s\n", v.Commit)
	tw.printf("%s %s\n", v.GoVersion, v.Platform)
	return tw.Err()
}

// RenderUpdateNotice renders an update availability notice.
func (p *TablePresenter) RenderUpdateNotice(notice *UpdateNoticeView) error {
	tw := &tableWriter{w: p.w}
	tw.println()
	tw.printf("%s %s -> %s\n",
		p.color.Warning("A new release of authgate is available:"),
		notice.CurrentVersion,
		p.color.Success(notice.LatestVersion))
	tw.println(p.color.Dim(notice.ReleaseURL))
	return tw.Err()
}

// RenderError renders an error message.
func (p *TablePresenter) RenderError(err error) error {
	tw := &tableWriter{w: p.w}
	tw.printf("%s %s\n", p.color.Error("Error:"), err.Error())
	return tw.Err()
}

// RenderMessage renders a simple message.
func (p *TablePresenter) RenderMessage(message string) error {
	tw := &tableWriter{w: p.w}
	tw.println(message)
	return tw.Err()
}

// Ensure TablePresenter implements Presenter
var _ Presenter = (*TablePresenter)(nil)
