package security

// Result is the outcome of evaluating one event.
type Result struct {
	// Decision is the final decision.
	Decision Decision
	// MatchedRule names the rule that decided, empty for the default.
	MatchedRule string
	// Reason explains the decision for diagnostics.
	Reason string
	// Err is set when the event was malformed and denied without evaluation.
	Err error
}

// NewDenyResult creates a fail-closed Result for an event that could not be
// evaluated.
func NewDenyResult(err error) Result {
	return Result{
		Decision: DecisionDeny,
		Reason:   "malformed event: " + err.Error(),
		Err:      err,
	}
}

// IsAllowed returns true if the operation is granted.
func (r Result) IsAllowed() bool {
	return r.Decision == DecisionAllow
}

// Malformed returns true if the event was denied because it could not be
// evaluated.
func (r Result) Malformed() bool {
	return r.Err != nil
}
