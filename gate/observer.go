package gate

import (
	"github.com/safedep/dry/log"

	"github.com/safedep/authgate/core/response"
)

// LogObserver writes one log line per handled event.
type LogObserver struct {
	// LogAllowed also logs successful allow decisions, which are otherwise
	// only logged at debug level.
	LogAllowed bool
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logAllowed bool) *LogObserver {
	return &LogObserver{LogAllowed: logAllowed}
}

// Observe logs the report at a level matching its severity.
func (o *LogObserver) Observe(r Report) {
	if r.Panic != "" {
		log.Errorf("recovered panic handling event %s: %s (outcome=%s)", r.EventID, r.Panic, r.Outcome)
		return
	}

	if r.Malformed != nil {
		log.Warnf("denied malformed event %s type=%s actor=%q: %v (outcome=%s)",
			r.EventID, r.EventType, r.Actor, r.Malformed, r.Outcome)
	}

	switch r.Outcome.Class() {
	case response.ClassOK:
		if r.Late {
			log.Warnf("response for event %s sent after deadline (latency=%s)", r.EventID, r.Latency)
		}

		if r.Malformed != nil {
			return
		}

		if r.IsDeny() || o.LogAllowed {
			log.Infof("%s %q by %q rule=%q (latency=%s)",
				r.Decision, r.Target, r.Actor, r.MatchedRule, r.Latency)
			return
		}

		log.Debugf("%s %q by %q (latency=%s)", r.Decision, r.Target, r.Actor, r.Latency)
	case response.ClassLogicFault:
		log.Errorf("logic fault responding to event %s: %s (decision=%s target=%q)",
			r.EventID, r.Outcome.Description(), r.Decision, r.Target)
	default:
		log.Errorf("failed to respond to event %s: %s (decision=%s target=%q)",
			r.EventID, r.Outcome.Description(), r.Decision, r.Target)
	}
}

var _ Observer = (*LogObserver)(nil)
