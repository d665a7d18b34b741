package gate

import (
	"sync"
	"testing"
	"time"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/subsystem/memory"
	mock_subsystem "github.com/safedep/authgate/subsystem/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type panicRule struct{}

func (panicRule) Name() string                     { return "panic" }
func (panicRule) Decision() security.Decision      { return security.DecisionAllow }
func (panicRule) Match(*events.Event, []byte) bool { panic("rule exploded") }

type collector struct {
	mu      sync.Mutex
	reports []Report
}

func (c *collector) Observe(r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

func (c *collector) all() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}

func blocklist() *security.Evaluator {
	return security.New(nil, security.BlockPath("/etc/shadow"))
}

func TestHandler_DecisionPayloads(t *testing.T) {
	testCases := []struct {
		name        string
		target      string
		permissions uint32
		decision    security.Decision
	}{
		{"blocked path is denied", "/etc/shadow", response.PermissionNone, security.DecisionDeny},
		{"other path is allowed", "/etc/passwd", response.PermissionAll, security.DecisionAllow},
		{"longer path is allowed", "/etc/shadow.bak", response.PermissionAll, security.DecisionAllow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			event := events.NewOpenEvent([]byte("/usr/bin/cat"), []byte(tc.target))

			client := mock_subsystem.NewMockClient(ctrl)
			client.EXPECT().
				Respond(event.ID, tc.permissions, true).
				Return(response.OutcomeSuccess).
				Times(1)

			c := &collector{}
			NewHandler(blocklist(), client, WithObservers(c)).OnEvent(event)

			reports := c.all()
			require.Len(t, reports, 1)
			assert.Equal(t, tc.decision, reports[0].Decision)
			assert.Equal(t, response.OutcomeSuccess, reports[0].Outcome)
			assert.Equal(t, tc.target, reports[0].Target)
			assert.True(t, reports[0].Responded())
		})
	}
}

func TestHandler_MalformedEventIsDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	event := events.NewOpenEvent(nil, []byte("/tmp/a"))
	event.Open.TargetLength = 4096

	client := mock_subsystem.NewMockClient(ctrl)
	client.EXPECT().
		Respond(event.ID, response.PermissionNone, true).
		Return(response.OutcomeSuccess).
		Times(1)

	c := &collector{}
	NewHandler(security.New(nil), client, WithObservers(c)).OnEvent(event)

	reports := c.all()
	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].Malformed, events.ErrLengthOutOfRange)
	assert.True(t, reports[0].IsDeny())
}

func TestHandler_PanicBeforeResponseDenies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	event := events.NewOpenEvent(nil, []byte("/tmp/a"))

	client := mock_subsystem.NewMockClient(ctrl)
	client.EXPECT().
		Respond(event.ID, response.PermissionNone, true).
		Return(response.OutcomeSuccess).
		Times(1)

	c := &collector{}
	h := NewHandler(security.New(nil, panicRule{}), client, WithObservers(c))

	assert.NotPanics(t, func() { h.OnEvent(event) })

	reports := c.all()
	require.Len(t, reports, 1)
	assert.Equal(t, "rule exploded", reports[0].Panic)
	assert.Equal(t, security.DecisionDeny, reports[0].Decision)
	assert.Equal(t, response.OutcomeSuccess, reports[0].Outcome)
}

func TestHandler_PanicInResponderDoesNotRespondTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	event := events.NewOpenEvent(nil, []byte("/tmp/a"))

	client := mock_subsystem.NewMockClient(ctrl)
	client.EXPECT().
		Respond(event.ID, gomock.Any(), gomock.Any()).
		Do(func(events.ID, uint32, bool) { panic("responder exploded") }).
		Times(1)

	c := &collector{}
	h := NewHandler(security.New(nil), client, WithObservers(c))

	assert.NotPanics(t, func() { h.OnEvent(event) })

	reports := c.all()
	require.Len(t, reports, 1)
	assert.Equal(t, "responder exploded", reports[0].Panic)
	assert.Equal(t, response.OutcomeInternalError, reports[0].Outcome)
	assert.Equal(t, response.ClassFailure, reports[0].Outcome.Class())
	assert.False(t, reports[0].Responded())
}

func TestHandler_PanicInEvaluatorAndResponder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	event := events.NewOpenEvent(nil, []byte("/tmp/a"))

	client := mock_subsystem.NewMockClient(ctrl)
	client.EXPECT().
		Respond(event.ID, response.PermissionNone, true).
		Do(func(events.ID, uint32, bool) { panic("responder exploded") }).
		Times(1)

	c := &collector{}
	h := NewHandler(security.New(nil, panicRule{}), client, WithObservers(c))

	assert.NotPanics(t, func() { h.OnEvent(event) })

	reports := c.all()
	require.Len(t, reports, 1)
	assert.Equal(t, "rule exploded", reports[0].Panic)
	assert.Equal(t, security.DecisionDeny, reports[0].Decision)
	assert.Equal(t, response.OutcomeInternalError, reports[0].Outcome)
}

func TestHandler_PanickingObserverIsIsolated(t *testing.T) {
	client := memory.New()
	c := &collector{}
	exploding := ObserverFunc(func(Report) { panic("observer exploded") })
	h := NewHandler(blocklist(), client, WithObservers(exploding, c))

	first := events.NewOpenEvent(nil, []byte("/etc/shadow"))
	second := events.NewOpenEvent(nil, []byte("/etc/hosts"))

	assert.NotPanics(t, func() {
		require.NoError(t, client.Deliver(h, first))
		require.NoError(t, client.Deliver(h, second))
	})

	// Observers after the panicking one still see every report.
	reports := c.all()
	require.Len(t, reports, 2)
	assert.True(t, reports[0].IsDeny())
	assert.Equal(t, response.OutcomeSuccess, reports[1].Outcome)
	assert.Len(t, client.Submissions(), 2)
}

func TestHandler_FailureIsNotFatal(t *testing.T) {
	client := memory.New()
	c := &collector{}
	h := NewHandler(blocklist(), client, WithObservers(c))

	first := events.NewOpenEvent(nil, []byte("/etc/shadow"))
	second := events.NewOpenEvent(nil, []byte("/etc/hosts"))

	client.InjectOutcome(first.ID, response.OutcomeInternalError)

	require.NoError(t, client.Deliver(h, first))
	require.NoError(t, client.Deliver(h, second))

	reports := c.all()
	require.Len(t, reports, 2)
	assert.Equal(t, response.OutcomeInternalError, reports[0].Outcome)
	assert.False(t, reports[0].Responded())
	assert.Equal(t, response.OutcomeSuccess, reports[1].Outcome)

	// Exactly one submission per event, no retry of the failed one.
	assert.Len(t, client.Submissions(), 2)
}

func TestHandler_ConcurrentEventsRespondOnceEach(t *testing.T) {
	const n = 200

	client := memory.New()
	c := &collector{}
	h := NewHandler(blocklist(), client, WithObservers(c))

	targets := []string{"/etc/shadow", "/etc/passwd", "/tmp/x"}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		event := events.NewOpenEvent([]byte("/bin/sh"), []byte(targets[i%len(targets)]))
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, client.Deliver(h, event))
		}()
	}
	wg.Wait()

	subs := client.Submissions()
	require.Len(t, subs, n)

	seen := make(map[events.ID]bool, n)
	for _, s := range subs {
		assert.False(t, seen[s.ID], "event %s responded twice", s.ID)
		seen[s.ID] = true
		assert.Equal(t, response.OutcomeSuccess, s.Outcome)
	}

	assert.Len(t, c.all(), n)
	assert.Equal(t, 0, client.Pending())
}

func TestHandler_LateResponse(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{now, now.Add(2 * time.Second)}
	clock := func() time.Time {
		next := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return next
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	event := events.NewOpenEvent(nil, []byte("/tmp/a"))
	event.Deadline = now.Add(time.Second)

	client := mock_subsystem.NewMockClient(ctrl)
	client.EXPECT().Respond(event.ID, gomock.Any(), gomock.Any()).Return(response.OutcomeNotFound)

	c := &collector{}
	NewHandler(security.New(nil), client, WithObservers(c), WithClock(clock)).OnEvent(event)

	reports := c.all()
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Late)
	assert.Equal(t, 2*time.Second, reports[0].Latency)
	assert.Equal(t, response.ClassFailure, reports[0].Outcome.Class())
}

func TestHandler_DisplayIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	target := make([]byte, 1024)
	for i := range target {
		target[i] = 'a'
	}
	target[0] = '/'
	event := events.NewOpenEvent(nil, target)

	client := mock_subsystem.NewMockClient(ctrl)
	client.EXPECT().Respond(event.ID, gomock.Any(), gomock.Any()).Return(response.OutcomeSuccess)

	c := &collector{}
	NewHandler(security.New(nil), client, WithObservers(c), WithDisplayMax(16)).OnEvent(event)

	require.Len(t, c.all(), 1)
	assert.LessOrEqual(t, len(c.all()[0].Target), 16+len("..."))
}

func TestHandler_NilEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock_subsystem.NewMockClient(ctrl)

	c := &collector{}
	NewHandler(security.New(nil), client, WithObservers(c)).OnEvent(nil)

	require.Len(t, c.all(), 1)
	assert.Error(t, c.all()[0].Malformed)
}

func TestLogObserver_AllClasses(t *testing.T) {
	o := NewLogObserver(true)

	outcomes := []response.AckOutcome{
		response.OutcomeSuccess,
		response.OutcomeDuplicateResponse,
		response.OutcomeWrongEventType,
		response.OutcomeInternalError,
		response.OutcomeNotFound,
	}

	for _, outcome := range outcomes {
		assert.NotPanics(t, func() {
			o.Observe(Report{EventID: events.NewID(), Outcome: outcome, Decision: security.DecisionDeny})
		})
	}
}
