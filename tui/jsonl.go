package tui

import (
	"encoding/json"
	"io"
)

// JSONLPresenter renders output as newline-delimited JSON.
type JSONLPresenter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONLPresenter creates a new JSONL presenter.
func NewJSONLPresenter(opts PresenterOptions) *JSONLPresenter {
	encoder := json.NewEncoder(opts.Writer)
	// No indentation for JSONL
	return &JSONLPresenter{
		w:       opts.Writer,
		encoder: encoder,
	}
}

// RenderDecision renders a policy evaluation as a single line.
func (p *JSONLPresenter) RenderDecision(decision *DecisionView) error {
	return p.encoder.Encode(decision)
}

// RenderReplay renders one line per replayed record, then the summary.
func (p *JSONLPresenter) RenderReplay(replay *ReplayView) error {
	for _, r := range replay.Results {
		if err := p.encoder.Encode(r); err != nil {
			return err
		}
	}
	return p.encoder.Encode(struct {
		Source  string            `json:"source"`
		Summary ReplaySummaryView `json:"summary"`
	}{
		Source:  replay.Source,
		Summary: replay.Summary,
	})
}

// RenderRules renders one line per rule.
func (p *JSONLPresenter) RenderRules(rules *RulesView) error {
	for _, r := range rules.Rules {
		if err := p.encoder.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// RenderStatus renders the runtime setup as JSONL.
func (p *JSONLPresenter) RenderStatus(status *StatusView) error {
	return p.encoder.Encode(status)
}

// RenderConfig renders the configuration as JSONL.
func (p *JSONLPresenter) RenderConfig(config *ConfigView) error {
	return p.encoder.Encode(config)
}

// RenderDiff renders a diff view as JSONL.
func (p *JSONLPresenter) RenderDiff(diff *DiffView) error {
	return p.encoder.Encode(diff)
}

// RenderVersion renders build information as JSONL.
func (p *JSONLPresenter) RenderVersion(version *VersionView) error {
	return p.encoder.Encode(version)
}

// RenderUpdateNotice renders an update notice as JSONL.
func (p *JSONLPresenter) RenderUpdateNotice(notice *UpdateNoticeView) error {
	return p.encoder.Encode(notice)
}

// RenderError renders an error message as JSONL.
func (p *JSONLPresenter) RenderError(err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return p.encoder.Encode(output)
}

// RenderMessage renders a simple message as JSONL.
func (p *JSONLPresenter) RenderMessage(message string) error {
	output := struct {
		Message string `json:"message"`
	}{
		Message: message,
	}
	return p.encoder.Encode(output)
}

// Ensure JSONLPresenter implements Presenter
var _ Presenter = (*JSONLPresenter)(nil)
