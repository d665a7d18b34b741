package security

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/safedep/authgate/core/events"
)

// MatchKind selects how a rule compares the target path.
type MatchKind string

const (
	// MatchExact matches a target path of exactly the same bytes and length.
	MatchExact MatchKind = "exact"
	// MatchPrefix matches a path and everything below it, on a path
	// component boundary.
	MatchPrefix MatchKind = "prefix"
)

// IsValid returns true if the match kind is known.
func (k MatchKind) IsValid() bool {
	switch k {
	case MatchExact, MatchPrefix:
		return true
	default:
		return false
	}
}

// Rule is a single entry in the policy ruleset.
type Rule interface {
	// Name returns the identifier reported when the rule matches.
	Name() string
	// Decision returns the decision applied when the rule matches.
	Decision() Decision
	// Match reports whether the rule applies. target holds exactly the
	// declared bytes of the event's target path.
	Match(event *events.Event, target []byte) bool
}

// RuleSpec is the declarative form of a path rule, as found in configuration.
type RuleSpec struct {
	Name   string
	Action string
	Match  string
	Path   string
	Actor  string
}

// PathRule matches the target path, and optionally the actor executable.
type PathRule struct {
	name     string
	decision Decision
	kind     MatchKind
	path     []byte
	actor    []byte
}

// NewPathRule builds a PathRule from its declarative form.
func NewPathRule(spec RuleSpec) (*PathRule, error) {
	decision, err := ParseDecision(spec.Action)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
	}

	kind := MatchKind(spec.Match)
	if kind == "" {
		kind = MatchExact
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("rule %q: invalid match kind %q (must be exact or prefix)", spec.Name, spec.Match)
	}

	if err := validateRulePath(spec.Path); err != nil {
		return nil, fmt.Errorf("rule %q: path: %w", spec.Name, err)
	}
	if spec.Actor != "" {
		if err := validateRulePath(spec.Actor); err != nil {
			return nil, fmt.Errorf("rule %q: actor: %w", spec.Name, err)
		}
	}

	path := spec.Path
	if kind == MatchPrefix && len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}

	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("%s-%s:%s", decision, kind, spec.Path)
	}

	r := &PathRule{
		name:     name,
		decision: decision,
		kind:     kind,
		path:     []byte(path),
	}
	if spec.Actor != "" {
		r.actor = []byte(spec.Actor)
	}

	return r, nil
}

// BlockPath is a shorthand for an exact deny rule on a single path.
func BlockPath(path string) *PathRule {
	return &PathRule{
		name:     "block:" + path,
		decision: DecisionDeny,
		kind:     MatchExact,
		path:     []byte(path),
	}
}

// Name returns the rule identifier.
func (r *PathRule) Name() string {
	return r.name
}

// Decision returns the decision applied on match.
func (r *PathRule) Decision() Decision {
	return r.decision
}

// Kind returns how the rule compares paths.
func (r *PathRule) Kind() MatchKind {
	return r.kind
}

// Path returns the rule path.
func (r *PathRule) Path() string {
	return string(r.path)
}

// Actor returns the actor constraint, empty when the rule applies to any
// process.
func (r *PathRule) Actor() string {
	return string(r.actor)
}

// Match reports whether the rule applies to the event.
func (r *PathRule) Match(event *events.Event, target []byte) bool {
	if len(r.actor) > 0 && !equalBounded(event.Actor.ExecutablePath, r.actor) {
		return false
	}

	switch r.kind {
	case MatchExact:
		return equalBounded(target, r.path)
	case MatchPrefix:
		return hasPathPrefix(target, r.path)
	default:
		return false
	}
}

// equalBounded compares an untrusted byte range with a rule value. Lengths
// must agree before any byte is compared, so a longer input whose leading
// bytes equal the rule value never matches.
func equalBounded(untrusted, want []byte) bool {
	if len(untrusted) != len(want) {
		return false
	}
	return bytes.Equal(untrusted, want)
}

// hasPathPrefix reports whether target is prefix or lies below it.
func hasPathPrefix(target, prefix []byte) bool {
	if len(target) < len(prefix) {
		return false
	}
	if !bytes.Equal(target[:len(prefix)], prefix) {
		return false
	}
	if len(target) == len(prefix) {
		return true
	}
	return prefix[len(prefix)-1] == '/' || target[len(prefix)] == '/'
}

func validateRulePath(p string) error {
	if p == "" {
		return fmt.Errorf("must not be empty")
	}
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("%q must be absolute", p)
	}
	if strings.IndexByte(p, 0) >= 0 {
		return fmt.Errorf("%q contains a NUL byte", p)
	}
	return nil
}

// Ensure PathRule implements Rule
var _ Rule = (*PathRule)(nil)
