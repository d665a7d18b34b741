package tui

import "time"

// DecisionView is the result of evaluating a single access.
type DecisionView struct {
	Actor       string `json:"actor"`
	Target      string `json:"target"`
	Decision    string `json:"decision"`
	Permissions string `json:"permissions"`
	Cacheable   bool   `json:"cacheable"`
	MatchedRule string `json:"matched_rule,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Malformed   string `json:"malformed,omitempty"`
}

// ReplayResultView is one replayed record.
type ReplayResultView struct {
	Line        int           `json:"line"`
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Actor       string        `json:"actor"`
	Target      string        `json:"target"`
	Decision    string        `json:"decision"`
	MatchedRule string        `json:"matched_rule,omitempty"`
	Malformed   string        `json:"malformed,omitempty"`
	Outcome     string        `json:"outcome"`
	Class       string        `json:"class"`
	Expected    string        `json:"expected,omitempty"`
	Mismatch    bool          `json:"mismatch,omitempty"`
	Latency     time.Duration `json:"latency_ns"`
}

// ReplaySummaryView aggregates a replay run.
type ReplaySummaryView struct {
	Total      int `json:"total"`
	Allowed    int `json:"allowed"`
	Denied     int `json:"denied"`
	Malformed  int `json:"malformed"`
	Failures   int `json:"failures"`
	Mismatches int `json:"mismatches"`
}

// ReplayView is the output of the replay command.
type ReplayView struct {
	Source  string              `json:"source"`
	Results []*ReplayResultView `json:"results"`
	Summary ReplaySummaryView   `json:"summary"`
}

// RuleView is one configured policy rule.
type RuleView struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Action string `json:"action"`
	Match  string `json:"match"`
	Path   string `json:"path"`
	Actor  string `json:"actor,omitempty"`
}

// RulesView lists the active ruleset.
type RulesView struct {
	DefaultDecision string      `json:"default_decision"`
	Rules           []*RuleView `json:"rules"`
}

// StatusView summarizes the effective runtime setup.
type StatusView struct {
	Version          string   `json:"version"`
	Platform         string   `json:"platform"`
	Backend          string   `json:"backend"`
	BackendSupported bool     `json:"backend_supported"`
	BackendError     string   `json:"backend_error,omitempty"`
	WatchPaths       []string `json:"watch_paths"`
	ConfigLocation   string   `json:"config_location"`
	DefaultDecision  string   `json:"default_decision"`
	RuleCount        int      `json:"rule_count"`
	MetricsListen    string   `json:"metrics_listen,omitempty"`
}

// ConfigView represents configuration for display.
type ConfigView struct {
	Location string                 `json:"location"`
	Values   map[string]interface{} `json:"values"`
}

// DiffView compares expected and actual replay output.
type DiffView struct {
	Name      string `json:"name"`
	Identical bool   `json:"identical"`
	Content   string `json:"content,omitempty"`
}

// VersionView carries build information.
type VersionView struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// UpdateNoticeView represents an available update notification.
type UpdateNoticeView struct {
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	ReleaseURL     string `json:"release_url"`
}
