// Package memory provides an in-process subsystem backend. It enforces the
// same response contract as the kernel (one response per event, unknown or
// expired events are not found, flag responses only for auth_open) and is
// used for replays and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/subsystem"
)

const defaultQueueSize = 128

var (
	// ErrClosed is returned when pushing to a closed client.
	ErrClosed = errors.New("memory client closed")

	// ErrNotSubscribed is returned for an event whose type is outside an
	// active subscription.
	ErrNotSubscribed = errors.New("event type not subscribed")
)

// Submission records one call to Respond.
type Submission struct {
	ID          events.ID
	Permissions uint32
	Cacheable   bool
	Outcome     response.AckOutcome
	At          time.Time
}

type pendingEvent struct {
	eventType events.EventType
	deadline  time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithQueueSize sets the buffer of events waiting for Start to deliver them.
func WithQueueSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithClock overrides the clock used for deadlines and submission times.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client is an in-memory subsystem.Client.
type Client struct {
	mu          sync.Mutex
	subscribed  map[events.EventType]bool
	pending     map[events.ID]pendingEvent
	responded   map[events.ID]bool
	injected    map[events.ID]response.AckOutcome
	submissions []Submission
	closed      bool

	queueSize int
	queue     chan *events.Event
	now       func() time.Time
}

// New creates an in-memory client.
func New(opts ...Option) *Client {
	c := &Client{
		subscribed: make(map[events.EventType]bool),
		pending:    make(map[events.ID]pendingEvent),
		responded:  make(map[events.ID]bool),
		injected:   make(map[events.ID]response.AckOutcome),
		queueSize:  defaultQueueSize,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.queue = make(chan *events.Event, c.queueSize)
	return c
}

// Factory adapts New to the subsystem registry.
func Factory(_ subsystem.Options) (subsystem.Client, error) {
	return New(), nil
}

// Name returns the backend identifier.
func (c *Client) Name() string {
	return subsystem.BackendMemory
}

// Subscribe records the event types the caller wants delivered.
func (c *Client) Subscribe(types []events.EventType) error {
	if len(types) == 0 {
		return fmt.Errorf("empty subscription")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range types {
		if !t.IsValid() {
			return fmt.Errorf("cannot subscribe to %q", t)
		}
		c.subscribed[t] = true
	}
	return nil
}

// Push queues an event for delivery by Start. It blocks while the queue is
// full.
func (c *Client) Push(ctx context.Context, event *events.Event) error {
	if err := c.register(event); err != nil {
		return err
	}

	select {
	case c.queue <- event:
		return nil
	case <-ctx.Done():
		c.Expire(event.ID)
		return ctx.Err()
	}
}

// Deliver registers the event and hands it to h on the calling goroutine.
func (c *Client) Deliver(h subsystem.Handler, event *events.Event) error {
	if err := c.register(event); err != nil {
		return err
	}

	h.OnEvent(event)
	return nil
}

func (c *Client) register(event *events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	// Without a subscription every type is delivered, as replays rely on.
	if len(c.subscribed) > 0 && !c.subscribed[event.Type] {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, event.Type)
	}

	c.pending[event.ID] = pendingEvent{
		eventType: event.Type,
		deadline:  event.Deadline,
	}
	return nil
}

// Start delivers queued events to h, one goroutine per event, until ctx is
// cancelled. Events still queued at cancellation are expired. It waits for
// in-flight callbacks before returning.
func (c *Client) Start(ctx context.Context, h subsystem.Handler) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			c.drain()
			return nil
		case event := <-c.queue:
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.OnEvent(event)
			}()
		}
	}
}

func (c *Client) drain() {
	for {
		select {
		case event := <-c.queue:
			c.Expire(event.ID)
		default:
			return
		}
	}
}

// Respond applies the kernel's response contract and records the call.
func (c *Client) Respond(id events.ID, permissions uint32, cacheable bool) response.AckOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := c.respondLocked(id)
	c.submissions = append(c.submissions, Submission{
		ID:          id,
		Permissions: permissions,
		Cacheable:   cacheable,
		Outcome:     outcome,
		At:          c.now(),
	})

	return outcome
}

func (c *Client) respondLocked(id events.ID) response.AckOutcome {
	if c.responded[id] {
		return response.OutcomeDuplicateResponse
	}

	p, ok := c.pending[id]
	if !ok {
		return response.OutcomeNotFound
	}

	if forced, ok := c.injected[id]; ok {
		delete(c.injected, id)
		delete(c.pending, id)
		c.responded[id] = true
		return forced
	}

	if !p.deadline.IsZero() && c.now().After(p.deadline) {
		delete(c.pending, id)
		return response.OutcomeNotFound
	}

	if p.eventType != events.EventTypeAuthOpen {
		return response.OutcomeWrongEventType
	}

	delete(c.pending, id)
	c.responded[id] = true
	return response.OutcomeSuccess
}

// InjectOutcome forces the acknowledgment returned for the next response to
// the given event.
func (c *Client) InjectOutcome(id events.ID, outcome response.AckOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.injected[id] = outcome
}

// Expire forgets a pending event, as the kernel does once its deadline
// passes.
func (c *Client) Expire(id events.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// Submissions returns a copy of every recorded Respond call.
func (c *Client) Submissions() []Submission {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Submission, len(c.submissions))
	copy(out, c.submissions)
	return out
}

// Pending returns the number of events still waiting for a response.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close stops accepting new events.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

var _ subsystem.Client = (*Client)(nil)
