// Package livemon renders gate decisions as they happen.
package livemon

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the bubbletea model for the live decision monitor.
type Model struct {
	opts   Options
	width  int
	height int

	header headerModel
	footer footerModel
	stats  statsModel
	list   listModel
	help   helpModel

	showSidebar bool
	paused      bool
	ready       bool
}

// New creates a monitor reading from opts.Feed.
func New(opts Options) Model {
	return Model{
		opts:        opts,
		header:      newHeaderModel(opts.Backend, opts.RuleCount),
		stats:       newStatsModel(),
		list:        newListModel(),
		showSidebar: true,
	}
}

func tickClock(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.opts.Feed.listen(), tickClock(m.opts.clockInterval()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case reportsMsg:
		for _, e := range msg.entries {
			m.stats.record(e)
		}
		// Stats keep counting while paused; only the list freezes.
		if !m.paused {
			m.list.append(msg.entries, m.streamWidth())
		}
		m.footer.dropped = msg.dropped
		return m, m.opts.Feed.listen()

	case feedClosedMsg:
		m.footer.closed = true
		return m, nil

	case clockMsg:
		m.header.now = time.Time(msg)
		m.footer.dropped = m.opts.Feed.Dropped()
		return m, tickClock(m.opts.clockInterval())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "p", " ":
		m.paused = !m.paused
		m.footer.paused = m.paused

	case "?":
		m.help.toggle()

	case "up", "k":
		m.list.scrollUp(1)
		m.footer.scrollLock = !m.list.autoScroll

	case "down", "j":
		m.list.scrollDown(1, m.streamHeight())
		m.footer.scrollLock = !m.list.autoScroll

	case "pgup":
		m.list.scrollUp(m.streamHeight())
		m.footer.scrollLock = !m.list.autoScroll

	case "pgdown":
		m.list.scrollDown(m.streamHeight(), m.streamHeight())
		m.footer.scrollLock = !m.list.autoScroll

	case "G", "end":
		m.list.jumpToBottom(m.streamHeight())
		m.footer.scrollLock = false

	case "g", "home":
		m.list.jumpToTop()
		m.footer.scrollLock = true

	case "d":
		m.list.setFilter(filterDenies)
	case "f":
		m.list.setFilter(filterFailures)
	case "0":
		m.list.setFilter(filterNone)

	case "c":
		m.list.clear()
		m.footer.scrollLock = false

	case "s":
		m.showSidebar = !m.showSidebar
	}

	return m, nil
}

func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width >= 90
}

func (m Model) streamWidth() int {
	if m.sidebarVisible() {
		return m.width - sidebarWidth
	}
	return m.width
}

func (m Model) streamHeight() int {
	return m.height - 2 // header + footer
}

func (m Model) View() string {
	if !m.ready {
		return "waiting for events..."
	}

	header := m.header.view(m.width)
	footer := m.footer.view(m.width)
	contentHeight := m.streamHeight()

	if m.help.visible {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.help.view(m.width, contentHeight), footer)
	}

	streamW := m.streamWidth()
	stream := lipgloss.NewStyle().Width(streamW).Render(m.list.view(contentHeight))

	content := stream
	if m.sidebarVisible() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, stream, m.stats.view(contentHeight, m.footer.dropped))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
