package tui

import (
	"encoding/json"
	"io"
)

// JSONPresenter renders output as JSON.
type JSONPresenter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONPresenter creates a new JSON presenter.
func NewJSONPresenter(opts PresenterOptions) *JSONPresenter {
	encoder := json.NewEncoder(opts.Writer)
	encoder.SetIndent("", "  ")
	return &JSONPresenter{
		w:       opts.Writer,
		encoder: encoder,
	}
}

// RenderDecision renders a policy evaluation as JSON.
func (p *JSONPresenter) RenderDecision(decision *DecisionView) error {
	return p.encoder.Encode(decision)
}

// RenderReplay renders a replay run as JSON.
func (p *JSONPresenter) RenderReplay(replay *ReplayView) error {
	return p.encoder.Encode(replay)
}

// RenderRules renders the ruleset as JSON.
func (p *JSONPresenter) RenderRules(rules *RulesView) error {
	return p.encoder.Encode(rules)
}

// RenderStatus renders the runtime setup as JSON.
func (p *JSONPresenter) RenderStatus(status *StatusView) error {
	return p.encoder.Encode(status)
}

// RenderConfig renders the configuration as JSON.
func (p *JSONPresenter) RenderConfig(config *ConfigView) error {
	return p.encoder.Encode(config)
}

// RenderDiff renders a diff view as JSON.
func (p *JSONPresenter) RenderDiff(diff *DiffView) error {
	return p.encoder.Encode(diff)
}

// RenderVersion renders build information as JSON.
func (p *JSONPresenter) RenderVersion(version *VersionView) error {
	return p.encoder.Encode(version)
}

// RenderUpdateNotice renders an update notice as JSON.
func (p *JSONPresenter) RenderUpdateNotice(notice *UpdateNoticeView) error {
	return p.encoder.Encode(notice)
}

// RenderError renders an error message as JSON.
func (p *JSONPresenter) RenderError(err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return p.encoder.Encode(output)
}

// RenderMessage renders a simple message as JSON.
func (p *JSONPresenter) RenderMessage(message string) error {
	output := struct {
		Message string `json:"message"`
	}{
		Message: message,
	}
	return p.encoder.Encode(output)
}

// Ensure JSONPresenter implements Presenter
var _ Presenter = (*JSONPresenter)(nil)
