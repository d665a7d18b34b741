// Package security evaluates authorization events against an immutable,
// ordered policy ruleset.
package security

import "fmt"

// Decision represents the outcome of policy evaluation for one event.
type Decision int

const (
	// DecisionAllow grants the requested operation.
	DecisionAllow Decision = iota
	// DecisionDeny refuses the requested operation.
	DecisionDeny
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// ParseDecision parses "allow" or "deny".
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "allow":
		return DecisionAllow, nil
	case "deny":
		return DecisionDeny, nil
	default:
		return DecisionDeny, fmt.Errorf("invalid decision: %q (must be allow or deny)", s)
	}
}
