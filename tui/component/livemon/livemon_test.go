package livemon

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/gate"
)

func allowReport(target string) gate.Report {
	return gate.Report{
		Actor:    "/usr/bin/cat",
		Target:   target,
		Decision: security.DecisionAllow,
		Outcome:  response.OutcomeSuccess,
	}
}

func denyReport(target string) gate.Report {
	r := allowReport(target)
	r.Decision = security.DecisionDeny
	r.MatchedRule = "block:" + target
	return r
}

func TestFeed_DropsWhenFull(t *testing.T) {
	feed := NewFeed(2)

	feed.Observe(allowReport("/a"))
	feed.Observe(allowReport("/b"))
	feed.Observe(allowReport("/c"))

	assert.Equal(t, uint64(1), feed.Dropped())

	msg := feed.listen()()
	reports, ok := msg.(reportsMsg)
	require.True(t, ok)
	require.Len(t, reports.entries, 2)
	assert.Equal(t, "/a", reports.entries[0].report.Target)
	assert.Equal(t, "/b", reports.entries[1].report.Target)
	assert.Equal(t, uint64(1), reports.dropped)
}

func TestFeed_CloseEndsListen(t *testing.T) {
	feed := NewFeed(4)
	feed.Close()
	feed.Close()

	feed.Observe(allowReport("/late"))
	assert.Equal(t, uint64(1), feed.Dropped())

	_, ok := feed.listen()().(feedClosedMsg)
	assert.True(t, ok)
}

func TestFeed_ListenReturnsBufferedBeforeClose(t *testing.T) {
	feed := NewFeed(4)
	feed.Observe(denyReport("/etc/passwd"))
	feed.Close()

	reports, ok := feed.listen()().(reportsMsg)
	require.True(t, ok)
	require.Len(t, reports.entries, 1)

	_, ok = feed.listen()().(feedClosedMsg)
	assert.True(t, ok)
}

func newSizedModel(t *testing.T, feed *Feed) Model {
	t.Helper()

	m := New(Options{Feed: feed, Backend: "memory", RuleCount: 1})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	return updated.(Model)
}

func batch(reports ...gate.Report) reportsMsg {
	msg := reportsMsg{}
	for _, r := range reports {
		msg.entries = append(msg.entries, entry{report: r})
	}
	return msg
}

func TestModel_RecordsReportsAndKeepsListening(t *testing.T) {
	m := newSizedModel(t, NewFeed(4))

	failed := allowReport("/srv/data")
	failed.Outcome = response.OutcomeInternalError
	malformed := denyReport("")
	malformed.MatchedRule = ""
	malformed.Malformed = errors.New("empty target")

	updated, cmd := m.Update(batch(allowReport("/tmp/x"), denyReport("/etc/passwd"), failed, malformed))
	m = updated.(Model)

	assert.NotNil(t, cmd)
	assert.Equal(t, 4, m.stats.total)
	assert.Equal(t, 2, m.stats.allowed)
	assert.Equal(t, 2, m.stats.denied)
	assert.Equal(t, 1, m.stats.malformed)
	assert.Equal(t, 1, m.stats.byOutcome[response.OutcomeInternalError])
	assert.Len(t, m.list.lines, 4)

	view := m.View()
	assert.Contains(t, view, "/etc/passwd")
	assert.Contains(t, view, "internal_error")
}

func TestModel_PauseFreezesListButNotStats(t *testing.T) {
	m := newSizedModel(t, NewFeed(4))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	require.True(t, m.paused)

	updated, _ = m.Update(batch(denyReport("/etc/passwd")))
	m = updated.(Model)

	assert.Equal(t, 1, m.stats.denied)
	assert.Empty(t, m.list.lines)
}

func TestModel_Filters(t *testing.T) {
	m := newSizedModel(t, NewFeed(4))

	failed := allowReport("/srv/data")
	failed.Outcome = response.OutcomeNotFound

	updated, _ := m.Update(batch(allowReport("/tmp/x"), denyReport("/etc/passwd"), failed))
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = updated.(Model)
	require.Len(t, m.list.filteredLines(), 1)
	assert.Contains(t, m.list.filteredLines()[0], "/etc/passwd")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	m = updated.(Model)
	require.Len(t, m.list.filteredLines(), 1)
	assert.Contains(t, m.list.filteredLines()[0], "/srv/data")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	m = updated.(Model)
	assert.Len(t, m.list.filteredLines(), 3)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = updated.(Model)
	assert.Empty(t, m.list.filteredLines())
}

func TestModel_KeysKeepModelType(t *testing.T) {
	m := newSizedModel(t, NewFeed(4))

	for _, key := range []string{"p", " ", "?", "k", "j", "G", "g", "d", "f", "0", "c", "s", "q"} {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		assert.IsType(t, Model{}, updated, "key %q", key)
	}

	for _, key := range []tea.KeyType{tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown} {
		updated, _ := m.Update(tea.KeyMsg{Type: key})
		assert.IsType(t, Model{}, updated, "key %v", key)
	}
}

func TestModel_FeedClosed(t *testing.T) {
	m := newSizedModel(t, NewFeed(4))

	updated, cmd := m.Update(feedClosedMsg{})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.True(t, m.footer.closed)
	assert.Contains(t, m.View(), "stopped")
}

func TestListModel_CapsEntries(t *testing.T) {
	l := newListModel()

	entries := make([]entry, maxEntries+10)
	for i := range entries {
		entries[i] = entry{report: allowReport("/tmp/x")}
	}
	l.append(entries, 100)

	assert.Len(t, l.items, maxEntries)
	assert.Len(t, l.lines, maxEntries)
}
