package tui

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVPresenter renders output as CSV.
type CSVPresenter struct {
	w      io.Writer
	writer *csv.Writer
}

// NewCSVPresenter creates a new CSV presenter.
func NewCSVPresenter(opts PresenterOptions) *CSVPresenter {
	return &CSVPresenter{
		w:      opts.Writer,
		writer: csv.NewWriter(opts.Writer),
	}
}

func (p *CSVPresenter) flush() error {
	p.writer.Flush()
	return p.writer.Error()
}

// RenderDecision renders a policy evaluation as CSV.
func (p *CSVPresenter) RenderDecision(d *DecisionView) error {
	p.writer.Write([]string{"actor", "target", "decision", "permissions", "cacheable", "matched_rule", "reason", "malformed"})
	p.writer.Write([]string{
		d.Actor,
		d.Target,
		d.Decision,
		d.Permissions,
		strconv.FormatBool(d.Cacheable),
		d.MatchedRule,
		d.Reason,
		d.Malformed,
	})
	return p.flush()
}

// RenderReplay renders replayed records as CSV, one row each.
func (p *CSVPresenter) RenderReplay(r *ReplayView) error {
	p.writer.Write([]string{
		"line", "id", "type", "actor", "target", "decision", "matched_rule",
		"malformed", "outcome", "class", "expected", "mismatch", "latency_ns",
	})

	for _, res := range r.Results {
		p.writer.Write([]string{
			strconv.Itoa(res.Line),
			res.ID,
			res.Type,
			res.Actor,
			res.Target,
			res.Decision,
			res.MatchedRule,
			res.Malformed,
			res.Outcome,
			res.Class,
			res.Expected,
			strconv.FormatBool(res.Mismatch),
			strconv.FormatInt(res.Latency.Nanoseconds(), 10),
		})
	}

	return p.flush()
}

// RenderRules renders the ruleset as CSV.
func (p *CSVPresenter) RenderRules(r *RulesView) error {
	p.writer.Write([]string{"index", "name", "action", "match", "path", "actor"})
	for _, rule := range r.Rules {
		p.writer.Write([]string{
			strconv.Itoa(rule.Index),
			rule.Name,
			rule.Action,
			rule.Match,
			rule.Path,
			rule.Actor,
		})
	}
	return p.flush()
}

// RenderStatus renders the runtime setup as key/value rows.
func (p *CSVPresenter) RenderStatus(s *StatusView) error {
	p.writer.Write([]string{"key", "value"})
	p.writer.Write([]string{"version", s.Version})
	p.writer.Write([]string{"platform", s.Platform})
	p.writer.Write([]string{"backend", s.Backend})
	p.writer.Write([]string{"backend_supported", strconv.FormatBool(s.BackendSupported)})
	p.writer.Write([]string{"watch_paths", strings.Join(s.WatchPaths, ";")})
	p.writer.Write([]string{"config_location", s.ConfigLocation})
	p.writer.Write([]string{"default_decision", s.DefaultDecision})
	p.writer.Write([]string{"rule_count", strconv.Itoa(s.RuleCount)})
	p.writer.Write([]string{"metrics_listen", s.MetricsListen})
	return p.flush()
}

// RenderConfig renders the configuration as CSV.
func (p *CSVPresenter) RenderConfig(config *ConfigView) error {
	p.writer.Write([]string{"key", "value"})
	for _, kv := range flattenConfig(config.Values, "") {
		p.writer.Write([]string{kv.key, fmt.Sprintf("%v", kv.value)})
	}
	return p.flush()
}

// RenderDiff renders a diff view as CSV (content as single field).
func (p *CSVPresenter) RenderDiff(diff *DiffView) error {
	p.writer.Write([]string{"name", "identical", "content"})
	p.writer.Write([]string{diff.Name, strconv.FormatBool(diff.Identical), diff.Content})
	return p.flush()
}

// RenderVersion renders build information as CSV.
func (p *CSVPresenter) RenderVersion(v *VersionView) error {
	p.writer.Write([]string{"version", "commit", "go_version", "platform"})
	p.writer.Write([]string{v.Version, v.Commit, v.GoVersion, v.Platform})
	return p.flush()
}

// RenderUpdateNotice renders an update notice as CSV.
func (p *CSVPresenter) RenderUpdateNotice(notice *UpdateNoticeView) error {
	p.writer.Write([]string{"current_version", "latest_version", "release_url"})
	p.writer.Write([]string{notice.CurrentVersion, notice.LatestVersion, notice.ReleaseURL})
	return p.flush()
}

// RenderError renders an error message as CSV.
func (p *CSVPresenter) RenderError(err error) error {
	p.writer.Write([]string{"error"})
	p.writer.Write([]string{err.Error()})
	return p.flush()
}

// RenderMessage renders a simple message as CSV.
func (p *CSVPresenter) RenderMessage(message string) error {
	p.writer.Write([]string{"message"})
	p.writer.Write([]string{message})
	return p.flush()
}

// Ensure CSVPresenter implements Presenter
var _ Presenter = (*CSVPresenter)(nil)
