// Package events provides the authorization event model delivered by the
// kernel subsystem.
package events

import "fmt"

// EventType identifies the kind of operation an event asks us to authorize.
type EventType string

const (
	// EventTypeAuthOpen is a file open waiting for an allow/deny response.
	EventTypeAuthOpen EventType = "auth_open"
	// EventTypeAuthExec is a process exec waiting for a response. Known but
	// never subscribed to.
	EventTypeAuthExec EventType = "auth_exec"
	// EventTypeNotifyExec is an informational exec notification. Known but
	// never subscribed to.
	EventTypeNotifyExec EventType = "notify_exec"
)

// eventDisplayNames is the single source of truth for known event types.
var eventDisplayNames = map[EventType]string{
	EventTypeAuthOpen:   "open",
	EventTypeAuthExec:   "exec",
	EventTypeNotifyExec: "exec (notify)",
}

// SubscribedTypes is the subscription list handed to every subsystem
// backend. Only file opens are authorized by this process.
func SubscribedTypes() []EventType {
	return []EventType{EventTypeAuthOpen}
}

// String returns the string representation of an EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid returns true if the EventType is a known type.
func (t EventType) IsValid() bool {
	_, ok := eventDisplayNames[t]
	return ok
}

// IsSubscribed returns true if the type is in the subscription list.
func (t EventType) IsSubscribed() bool {
	for _, s := range SubscribedTypes() {
		if s == t {
			return true
		}
	}
	return false
}

// DisplayName returns a short human-readable name for the event type.
func (t EventType) DisplayName() string {
	if dn, ok := eventDisplayNames[t]; ok {
		return dn
	}
	return "unknown"
}

// ParseEventType parses a string into a known EventType.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("invalid event type: %q", s)
}
