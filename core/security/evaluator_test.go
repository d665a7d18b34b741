package security

import (
	"sync"
	"testing"

	"github.com/safedep/authgate/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passwdEvaluator() *Evaluator {
	return New(nil, BlockPath("/etc/passwd"))
}

func openEvent(target string) *events.Event {
	return events.NewOpenEvent([]byte("/usr/bin/cat"), []byte(target))
}

func TestEvaluate_ExactLengthMatching(t *testing.T) {
	e := passwdEvaluator()

	testCases := []struct {
		name     string
		target   string
		expected Decision
	}{
		{"blocked path", "/etc/passwd", DecisionDeny},
		{"longer path sharing the prefix", "/etc/passwd-old", DecisionAllow},
		{"backup file", "/etc/passwd-backup", DecisionAllow},
		{"shorter path", "/etc/pass", DecisionAllow},
		{"unrelated path", "/tmp/foo", DecisionAllow},
		{"empty path", "", DecisionAllow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := e.Evaluate(openEvent(tc.target))
			assert.Equal(t, tc.expected, result.Decision)
			assert.False(t, result.Malformed())
		})
	}
}

func TestEvaluate_DeclaredLengthBoundsComparison(t *testing.T) {
	e := passwdEvaluator()

	t.Run("buffer longer than declared length", func(t *testing.T) {
		event := &events.Event{
			Type: events.EventTypeAuthOpen,
			Open: &events.OpenEvent{TargetPath: []byte("/etc/passwd-backup"), TargetLength: 11},
		}
		assert.Equal(t, DecisionDeny, e.Evaluate(event).Decision,
			"only the declared 11 bytes are the path")
	})

	t.Run("declared length longer than rule", func(t *testing.T) {
		event := &events.Event{
			Type: events.EventTypeAuthOpen,
			Open: &events.OpenEvent{TargetPath: []byte("/etc/passwd-backup"), TargetLength: 15},
		}
		assert.Equal(t, DecisionAllow, e.Evaluate(event).Decision)
	})

	t.Run("no terminator inside declared range", func(t *testing.T) {
		event := &events.Event{
			Type: events.EventTypeAuthOpen,
			Open: &events.OpenEvent{TargetPath: []byte("/etc/passwd\x00"), TargetLength: 12},
		}
		assert.Equal(t, DecisionAllow, e.Evaluate(event).Decision,
			"a NUL inside the declared range is part of the path")
	})
}

func TestEvaluate_FailClosed(t *testing.T) {
	e := New(&Config{DefaultDecision: DecisionAllow})

	testCases := []struct {
		name    string
		event   *events.Event
		wantErr error
	}{
		{
			name: "length past buffer",
			event: &events.Event{
				Type: events.EventTypeAuthOpen,
				Open: &events.OpenEvent{TargetPath: []byte("/tmp"), TargetLength: 4096},
			},
			wantErr: events.ErrLengthOutOfRange,
		},
		{
			name: "negative length",
			event: &events.Event{
				Type: events.EventTypeAuthOpen,
				Open: &events.OpenEvent{TargetPath: []byte("/tmp"), TargetLength: -3},
			},
			wantErr: events.ErrLengthOutOfRange,
		},
		{
			name:    "missing open fields",
			event:   &events.Event{Type: events.EventTypeAuthOpen},
			wantErr: events.ErrMissingPayload,
		},
		{
			name: "unsubscribed type",
			event: &events.Event{
				Type: events.EventTypeAuthExec,
				Open: &events.OpenEvent{TargetPath: []byte("/tmp"), TargetLength: 4},
			},
			wantErr: events.ErrUnsupportedType,
		},
		{
			name:    "nil event",
			event:   nil,
			wantErr: events.ErrMissingPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := e.Evaluate(tc.event)
			assert.Equal(t, DecisionDeny, result.Decision)
			assert.True(t, result.Malformed())
			assert.ErrorIs(t, result.Err, tc.wantErr)
			assert.Empty(t, result.MatchedRule)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := passwdEvaluator()

	for _, target := range []string{"/etc/passwd", "/etc/passwd-old", "/tmp/foo"} {
		event := openEvent(target)
		first := e.Evaluate(event)
		second := e.Evaluate(event)
		assert.Equal(t, first, second, target)
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	allowSSH, err := NewPathRule(RuleSpec{
		Name:   "sshd-reads-keys",
		Action: "allow",
		Match:  "prefix",
		Path:   "/etc/ssh",
		Actor:  "/usr/sbin/sshd",
	})
	require.NoError(t, err)

	denySSH, err := NewPathRule(RuleSpec{
		Name:   "deny-ssh",
		Action: "deny",
		Match:  "prefix",
		Path:   "/etc/ssh/",
	})
	require.NoError(t, err)

	e := New(nil, allowSSH, denySSH)

	sshd := events.NewOpenEvent([]byte("/usr/sbin/sshd"), []byte("/etc/ssh/ssh_host_ed25519_key"))
	result := e.Evaluate(sshd)
	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, "sshd-reads-keys", result.MatchedRule)

	cat := events.NewOpenEvent([]byte("/usr/bin/cat"), []byte("/etc/ssh/ssh_host_ed25519_key"))
	result = e.Evaluate(cat)
	assert.Equal(t, DecisionDeny, result.Decision)
	assert.Equal(t, "deny-ssh", result.MatchedRule)

	other := events.NewOpenEvent([]byte("/usr/bin/cat"), []byte("/etc/hosts"))
	result = e.Evaluate(other)
	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Empty(t, result.MatchedRule)
	assert.Equal(t, "no rule matched", result.Reason)
}

func TestEvaluate_DefaultDecision(t *testing.T) {
	e := New(&Config{DefaultDecision: DecisionDeny})
	assert.Equal(t, DecisionDeny, e.Evaluate(openEvent("/tmp/foo")).Decision)
	assert.Equal(t, DecisionDeny, e.DefaultDecision())
}

func TestNew_CopiesRules(t *testing.T) {
	rules := []Rule{BlockPath("/etc/passwd")}
	e := New(nil, rules...)

	rules[0] = BlockPath("/tmp/foo")

	assert.Equal(t, DecisionDeny, e.Evaluate(openEvent("/etc/passwd")).Decision)
	assert.Equal(t, DecisionAllow, e.Evaluate(openEvent("/tmp/foo")).Decision)

	got := e.Rules()
	got[0] = nil
	assert.NotNil(t, e.Rules()[0])
}

func TestNewFromSpecs(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		e, err := NewFromSpecs(nil, []RuleSpec{
			{Name: "a", Action: "deny", Path: "/etc/passwd"},
			{Name: "b", Action: "allow", Match: "prefix", Path: "/etc"},
		})
		require.NoError(t, err)

		rules := e.Rules()
		require.Len(t, rules, 2)
		assert.Equal(t, "a", rules[0].Name())
		assert.Equal(t, "b", rules[1].Name())
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := NewFromSpecs(nil, []RuleSpec{
			{Name: "a", Action: "deny", Path: "/etc/passwd"},
			{Name: "a", Action: "deny", Path: "/etc/shadow"},
		})
		assert.ErrorContains(t, err, "duplicate rule name")
	})

	t.Run("invalid rule", func(t *testing.T) {
		_, err := NewFromSpecs(nil, []RuleSpec{{Name: "a", Action: "maybe", Path: "/x"}})
		assert.ErrorContains(t, err, "policy.rules[0]")
	})
}

func TestEvaluate_ConcurrentUse(t *testing.T) {
	e := passwdEvaluator()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "/tmp/foo"
			want := DecisionAllow
			if i%2 == 0 {
				target = "/etc/passwd"
				want = DecisionDeny
			}
			assert.Equal(t, want, e.Evaluate(openEvent(target)).Decision)
		}(i)
	}
	wg.Wait()
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", DecisionAllow.String())
	assert.Equal(t, "deny", DecisionDeny.String())
	assert.Equal(t, "unknown", Decision(42).String())
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("deny")
	require.NoError(t, err)
	assert.Equal(t, DecisionDeny, d)

	d, err = ParseDecision("allow")
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, d)

	_, err = ParseDecision("block")
	assert.Error(t, err)
}
