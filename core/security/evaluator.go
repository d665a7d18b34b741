package security

import (
	"fmt"

	"github.com/safedep/authgate/core/events"
)

// Config holds configuration options for the security evaluator.
type Config struct {
	// DefaultDecision applies when no rule matches.
	DefaultDecision Decision
}

// Evaluator holds the policy ruleset. It is built once and never modified,
// so a single Evaluator is safe to share between concurrent callbacks.
type Evaluator struct {
	rules           []Rule
	defaultDecision Decision
}

// New creates an Evaluator over the given rules. The rule slice is copied;
// later changes to the caller's slice do not affect the Evaluator.
func New(cfg *Config, rules ...Rule) *Evaluator {
	if cfg == nil {
		cfg = &Config{DefaultDecision: DecisionAllow}
	}

	owned := make([]Rule, len(rules))
	copy(owned, rules)

	return &Evaluator{
		rules:           owned,
		defaultDecision: cfg.DefaultDecision,
	}
}

// NewFromSpecs builds an Evaluator from declarative rule specs, preserving
// their order.
func NewFromSpecs(cfg *Config, specs []RuleSpec) (*Evaluator, error) {
	rules := make([]Rule, 0, len(specs))
	names := make(map[string]bool, len(specs))

	for i, spec := range specs {
		rule, err := NewPathRule(spec)
		if err != nil {
			return nil, fmt.Errorf("policy.rules[%d]: %w", i, err)
		}
		if names[rule.Name()] {
			return nil, fmt.Errorf("policy.rules[%d]: duplicate rule name %q", i, rule.Name())
		}
		names[rule.Name()] = true
		rules = append(rules, rule)
	}

	return New(cfg, rules...), nil
}

// Rules returns a copy of the ruleset in evaluation order.
func (e *Evaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// DefaultDecision returns the decision applied when nothing matches.
func (e *Evaluator) DefaultDecision() Decision {
	return e.defaultDecision
}

// Evaluate maps an event to a decision. Rules are tried in order and the
// first match wins. Events that cannot be evaluated safely are denied.
//
// Evaluate has no side effects and reads only the declared bytes of the
// target path.
func (e *Evaluator) Evaluate(event *events.Event) Result {
	if event == nil {
		return NewDenyResult(fmt.Errorf("%w: nil event", events.ErrMissingPayload))
	}

	if err := event.Validate(); err != nil {
		return NewDenyResult(err)
	}

	target, ok := event.Target()
	if !ok {
		return NewDenyResult(events.ErrLengthOutOfRange)
	}

	for _, rule := range e.rules {
		if rule.Match(event, target) {
			return Result{
				Decision:    rule.Decision(),
				MatchedRule: rule.Name(),
				Reason:      fmt.Sprintf("matched rule %s", rule.Name()),
			}
		}
	}

	return Result{
		Decision: e.defaultDecision,
		Reason:   "no rule matched",
	}
}
