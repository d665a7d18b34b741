package livemon

import (
	"strings"

	"github.com/safedep/authgate/core/response"
)

const maxEntries = 1000

type listFilter int

const (
	filterNone listFilter = iota
	filterDenies
	filterFailures
)

type listModel struct {
	items      []entry
	lines      []string
	offset     int
	autoScroll bool
	filter     listFilter
}

func newListModel() listModel {
	return listModel{autoScroll: true}
}

func (m *listModel) append(entries []entry, width int) {
	for _, e := range entries {
		m.items = append(m.items, e)
		m.lines = append(m.lines, formatEntry(e, width))
	}
	if len(m.items) > maxEntries {
		drop := len(m.items) - maxEntries
		m.items = m.items[drop:]
		m.lines = m.lines[drop:]
		m.offset -= drop
		if m.offset < 0 {
			m.offset = 0
		}
	}
}

func (m *listModel) clear() {
	m.items = nil
	m.lines = nil
	m.offset = 0
	m.autoScroll = true
}

func (m *listModel) setFilter(f listFilter) {
	if m.filter == f {
		f = filterNone
	}
	m.filter = f
	m.offset = 0
}

func (m listModel) matches(e entry) bool {
	switch m.filter {
	case filterDenies:
		return e.report.IsDeny()
	case filterFailures:
		return e.report.Outcome.Class() != response.ClassOK
	default:
		return true
	}
}

func (m listModel) filteredLines() []string {
	if m.filter == filterNone {
		return m.lines
	}
	var result []string
	for i, e := range m.items {
		if m.matches(e) {
			result = append(result, m.lines[i])
		}
	}
	return result
}

func (m *listModel) scrollUp(n int) {
	m.autoScroll = false
	m.offset -= n
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *listModel) scrollDown(n int, viewHeight int) {
	lines := m.filteredLines()
	m.offset += n
	maxOffset := len(lines) - viewHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset >= maxOffset {
		m.offset = maxOffset
		m.autoScroll = true
	}
}

func (m *listModel) jumpToBottom(viewHeight int) {
	m.offset = len(m.filteredLines()) - viewHeight
	if m.offset < 0 {
		m.offset = 0
	}
	m.autoScroll = true
}

func (m *listModel) jumpToTop() {
	m.offset = 0
	m.autoScroll = false
}

func (m listModel) view(height int) string {
	if height <= 0 {
		return ""
	}

	lines := m.filteredLines()

	start := m.offset
	if m.autoScroll {
		start = len(lines) - height
	}
	if start < 0 {
		start = 0
	}
	if start > len(lines) {
		start = len(lines)
	}

	end := start + height
	if end > len(lines) {
		end = len(lines)
	}

	visible := make([]string, height)
	copy(visible, lines[start:end])
	return strings.Join(visible, "\n")
}
