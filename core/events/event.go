package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedType is returned for events outside the subscription list.
	ErrUnsupportedType = errors.New("unsupported event type")
	// ErrMissingPayload is returned when the type-specific fields are absent.
	ErrMissingPayload = errors.New("missing event payload")
	// ErrLengthOutOfRange is returned when a declared length does not fit
	// the buffer it describes.
	ErrLengthOutOfRange = errors.New("declared length out of range")
)

// ID correlates a response with the pending kernel request.
type ID = uuid.UUID

// NewID returns a fresh event identity.
func NewID() ID {
	return uuid.New()
}

// Process describes the process performing the operation.
type Process struct {
	// ExecutablePath is the path of the acting executable. Not guaranteed to
	// be valid UTF-8 or NUL terminated.
	ExecutablePath []byte
	// PID is the process id, zero when unknown.
	PID int32
}

// OpenEvent holds the fields specific to a file open.
type OpenEvent struct {
	// TargetPath is the buffer holding the path being opened.
	TargetPath []byte
	// TargetLength is the declared number of meaningful bytes in TargetPath.
	// The kernel range is length delimited, not NUL terminated.
	TargetLength int
}

// Event is one in-flight authorization request.
//
// An Event and the byte slices it references are only valid for the duration
// of the callback that delivered it. Nothing may keep references to them
// after the callback returns.
type Event struct {
	// ID is the identity the response must carry.
	ID ID
	// Type is the declared event type.
	Type EventType
	// Actor is the process performing the operation.
	Actor Process
	// Open is set for EventTypeAuthOpen.
	Open *OpenEvent
	// Deadline is when the kernel applies its own default. Zero if unknown.
	Deadline time.Time
}

// NewOpenEvent creates an auth_open event whose declared length matches the
// target buffer.
func NewOpenEvent(actor, target []byte) *Event {
	return &Event{
		ID:    NewID(),
		Type:  EventTypeAuthOpen,
		Actor: Process{ExecutablePath: actor},
		Open: &OpenEvent{
			TargetPath:   target,
			TargetLength: len(target),
		},
	}
}

// Validate checks that the event is something we can safely evaluate.
func (e *Event) Validate() error {
	if !e.Type.IsSubscribed() {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, e.Type)
	}

	if e.Open == nil {
		return fmt.Errorf("%w: %s has no open fields", ErrMissingPayload, e.Type)
	}

	if e.Open.TargetLength < 0 || e.Open.TargetLength > len(e.Open.TargetPath) {
		return fmt.Errorf("%w: target length %d, buffer %d bytes",
			ErrLengthOutOfRange, e.Open.TargetLength, len(e.Open.TargetPath))
	}

	return nil
}

// Target returns exactly the declared bytes of the target path. It returns
// false when the event does not carry a well-formed target.
func (e *Event) Target() ([]byte, bool) {
	if e.Open == nil {
		return nil, false
	}

	n := e.Open.TargetLength
	if n < 0 || n > len(e.Open.TargetPath) {
		return nil, false
	}

	return e.Open.TargetPath[:n:n], true
}

// Expired reports whether the kernel deadline passed before now.
func (e *Event) Expired(now time.Time) bool {
	return !e.Deadline.IsZero() && now.After(e.Deadline)
}
