// Package response turns decisions into the subsystem's response payload and
// submits it exactly once per event.
package response

import (
	"math"
	"sync/atomic"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/security"
)

const (
	// PermissionAll grants every requested permission.
	PermissionAll uint32 = math.MaxUint32
	// PermissionNone grants nothing.
	PermissionNone uint32 = 0
)

// Payload is the body of a response submission.
type Payload struct {
	// Permissions is the permission bitmask to grant.
	Permissions uint32
	// Cacheable lets the kernel reuse the decision for identical events
	// without calling us again.
	Cacheable bool
}

// PayloadFor maps a decision to its payload. Unknown decisions map to the
// deny payload.
func PayloadFor(d security.Decision) Payload {
	switch d {
	case security.DecisionAllow:
		return Payload{Permissions: PermissionAll, Cacheable: true}
	default:
		return Payload{Permissions: PermissionNone, Cacheable: true}
	}
}

// Responder is the subsystem's response API.
type Responder interface {
	// Respond concludes handling of the event with the given identity.
	Respond(id events.ID, permissions uint32, cacheable bool) AckOutcome
}

// Dispatch submits the decision for the event and returns the subsystem's
// acknowledgment. It calls the Responder exactly once and never retries.
func Dispatch(r Responder, event *events.Event, d security.Decision) AckOutcome {
	p := PayloadFor(d)
	return r.Respond(event.ID, p.Permissions, p.Cacheable)
}

// Once guards the single response allowed for one event. A Once must not be
// shared between events.
type Once struct {
	done atomic.Bool
}

// Dispatch submits the decision unless this guard already did. The second
// and later calls return OutcomeDuplicateResponse without reaching the
// Responder.
func (o *Once) Dispatch(r Responder, event *events.Event, d security.Decision) AckOutcome {
	if !o.done.CompareAndSwap(false, true) {
		return OutcomeDuplicateResponse
	}
	return Dispatch(r, event, d)
}

// Done reports whether a response was submitted through this guard.
func (o *Once) Done() bool {
	return o.done.Load()
}
