// Package subsystem defines the session with the kernel authorization
// subsystem: the producer of events and the consumer of responses.
package subsystem

//go:generate mockgen -source=client.go -destination=mock/client.go

import (
	"context"
	"errors"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
)

// Standard backend identifiers.
const (
	BackendFanotify = "fanotify"
	BackendMemory   = "memory"
)

// ErrUnsupportedPlatform is returned by backends that cannot run on the
// current operating system.
var ErrUnsupportedPlatform = errors.New("subsystem backend not supported on this platform")

// Handler receives delivered events. OnEvent may be called concurrently for
// distinct events and must attempt exactly one response per event before
// returning.
type Handler interface {
	OnEvent(event *events.Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(event *events.Event)

// OnEvent calls f(event).
func (f HandlerFunc) OnEvent(event *events.Event) {
	f(event)
}

// Client is a live session with the kernel subsystem.
type Client interface {
	response.Responder

	// Name returns the backend identifier.
	Name() string

	// Subscribe registers interest in the given event types. Must be called
	// before Start.
	Subscribe(types []events.EventType) error

	// Start delivers events to h until ctx is cancelled or the session
	// fails. It blocks.
	Start(ctx context.Context, h Handler) error

	// Close releases the session.
	Close() error
}

// Options configures backend construction.
type Options struct {
	// WatchPaths are the filesystem locations the backend monitors, for
	// backends that need explicit marks.
	WatchPaths []string
}
