package livemon

import (
	"fmt"
	"strings"
	"time"

	"github.com/safedep/authgate/core/response"
)

const (
	sidebarWidth = 24
	rateWindow   = 120
)

type statsModel struct {
	total       int
	allowed     int
	denied      int
	malformed   int
	late        int
	byOutcome   map[response.AckOutcome]int
	recentTimes []time.Time
}

func newStatsModel() statsModel {
	return statsModel{
		byOutcome: make(map[response.AckOutcome]int),
	}
}

func (s *statsModel) record(e entry) {
	s.total++
	if e.report.IsDeny() {
		s.denied++
	} else {
		s.allowed++
	}
	if e.report.Malformed != nil {
		s.malformed++
	}
	if e.report.Late {
		s.late++
	}
	s.byOutcome[e.report.Outcome]++

	s.recentTimes = append(s.recentTimes, e.at)
	if len(s.recentTimes) > rateWindow {
		s.recentTimes = s.recentTimes[1:]
	}
}

func (s statsModel) eventsPerSecond() float64 {
	if len(s.recentTimes) < 2 {
		return 0
	}
	dur := s.recentTimes[len(s.recentTimes)-1].Sub(s.recentTimes[0])
	if dur <= 0 {
		return 0
	}
	return float64(len(s.recentTimes)-1) / dur.Seconds()
}

func (s statsModel) row(label string, value string) string {
	return fmt.Sprintf(" %s %s\n",
		sidebarLabelStyle.Render(fmt.Sprintf("%-10s", label)),
		sidebarValueStyle.Render(value))
}

func (s statsModel) view(height int, dropped uint64) string {
	var b strings.Builder

	b.WriteString(sidebarHeaderStyle.Render("Decisions"))
	b.WriteByte('\n')
	b.WriteString(s.row("Events", fmt.Sprintf("%d", s.total)))
	b.WriteString(s.row("Rate", fmt.Sprintf("%.1f/s", s.eventsPerSecond())))
	b.WriteString(s.row(allowStyle.symbol+" allow", fmt.Sprintf("%d", s.allowed)))
	b.WriteString(s.row(denyStyle.symbol+" deny", fmt.Sprintf("%d", s.denied)))
	b.WriteString(s.row("malformed", fmt.Sprintf("%d", s.malformed)))
	b.WriteByte('\n')

	b.WriteString(sidebarHeaderStyle.Render("Responses"))
	b.WriteByte('\n')
	for o := response.OutcomeSuccess; o <= response.OutcomeUnknown; o++ {
		if count := s.byOutcome[o]; count > 0 {
			styled := outcomeStyleFor(o).Render(fmt.Sprintf("%-10.10s", o.String()))
			b.WriteString(fmt.Sprintf(" %s %s\n", styled, sidebarValueStyle.Render(fmt.Sprintf("%d", count))))
		}
	}
	if s.late > 0 {
		b.WriteString(s.row("late", fmt.Sprintf("%d", s.late)))
	}
	if dropped > 0 {
		b.WriteString(s.row("not shown", fmt.Sprintf("%d", dropped)))
	}

	return sidebarStyle.Width(sidebarWidth).Height(height).Render(b.String())
}
