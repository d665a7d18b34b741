// Package gate wires policy evaluation to response submission. Its Handler
// is the callback registered with a subsystem client.
package gate

import (
	"fmt"
	"time"

	"github.com/safedep/dry/log"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/subsystem"
)

// Report describes how one event was handled. It holds no references into
// the event, so observers may keep it.
type Report struct {
	EventID   events.ID
	EventType events.EventType
	Actor     string
	Target    string

	Decision    security.Decision
	MatchedRule string
	Reason      string
	Malformed   error

	Outcome response.AckOutcome
	Latency time.Duration
	// Late is set when the response went out after the event's deadline.
	Late bool
	// Panic holds the recovered value if handling panicked.
	Panic string
}

// Responded reports whether the subsystem accepted the response.
func (r Report) Responded() bool {
	return r.Outcome == response.OutcomeSuccess
}

// IsDeny reports whether the event was denied.
func (r Report) IsDeny() bool {
	return r.Decision != security.DecisionAllow
}

// Observer receives a Report for each handled event. Observe is called on
// the callback goroutine, after the response was submitted, and must not
// block.
type Observer interface {
	Observe(report Report)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(report Report)

// Observe calls f(report).
func (f ObserverFunc) Observe(report Report) {
	f(report)
}

// Option configures a Handler.
type Option func(*Handler)

// WithObservers adds observers notified after each event.
func WithObservers(observers ...Observer) Option {
	return func(h *Handler) {
		h.observers = append(h.observers, observers...)
	}
}

// WithDisplayMax bounds the actor and target text captured in reports.
func WithDisplayMax(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.displayMax = n
		}
	}
}

// WithClock overrides the clock used for latency and deadline checks.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// Handler evaluates each event and submits exactly one response for it.
// It holds no mutable state and is safe for concurrent use.
type Handler struct {
	evaluator  *security.Evaluator
	responder  response.Responder
	observers  []Observer
	displayMax int
	now        func() time.Time
}

// NewHandler creates a Handler that decides with evaluator and responds
// through responder.
func NewHandler(evaluator *security.Evaluator, responder response.Responder, opts ...Option) *Handler {
	h := &Handler{
		evaluator:  evaluator,
		responder:  responder,
		displayMax: events.DefaultDisplayMax,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// OnEvent handles one delivered event. Any failure, including a panic before
// the response went out, results in a deny. Acknowledgment failures are
// reported, never retried.
func (h *Handler) OnEvent(event *events.Event) {
	if event == nil {
		h.notify(Report{
			Decision:  security.DecisionDeny,
			Reason:    "nil event",
			Malformed: events.ErrMissingPayload,
			Outcome:   response.OutcomeInvalidArgument,
		})
		return
	}

	start := h.now()

	var once response.Once
	report := Report{
		EventID:   event.ID,
		EventType: event.Type,
		Actor:     event.DisplayActor(h.displayMax),
		Target:    event.DisplayTarget(h.displayMax),
		Decision:  security.DecisionDeny,
	}

	defer func() {
		if p := recover(); p != nil {
			report.Panic = fmt.Sprint(p)
			if !once.Done() {
				report.Decision = security.DecisionDeny
				report.Reason = "panic during evaluation"
				report.Outcome = h.dispatchRecovered(&once, event)
			}
		}

		end := h.now()
		report.Latency = end.Sub(start)
		report.Late = !event.Deadline.IsZero() && end.After(event.Deadline)

		h.notify(report)
	}()

	result := h.evaluator.Evaluate(event)
	report.Decision = result.Decision
	report.MatchedRule = result.MatchedRule
	report.Reason = result.Reason
	report.Malformed = result.Err

	// Stays internal_error if the responder panics before acknowledging.
	report.Outcome = response.OutcomeInternalError
	report.Outcome = once.Dispatch(h.responder, event, result.Decision)
}

// dispatchRecovered submits the fail-closed deny after a panic. A second
// panic, from the responder, is absorbed and reported as internal_error.
func (h *Handler) dispatchRecovered(once *response.Once, event *events.Event) (outcome response.AckOutcome) {
	outcome = response.OutcomeInternalError
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("responder panicked while denying event %s: %v", event.ID, p)
		}
	}()

	return once.Dispatch(h.responder, event, security.DecisionDeny)
}

func (h *Handler) notify(report Report) {
	for _, o := range h.observers {
		h.observe(o, report)
	}
}

// observe isolates observers from each other and from the backend's event
// goroutine.
func (h *Handler) observe(o Observer, report Report) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("observer %T panicked on event %s: %v", o, report.EventID, p)
		}
	}()

	o.Observe(report)
}

var _ subsystem.Handler = (*Handler)(nil)
