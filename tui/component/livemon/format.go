package livemon

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/tui"
)

const (
	colTimeWidth     = 8 // "15:04:05"
	colIconWidth     = 1 // single symbol
	colDecisionWidth = 5 // "allow" / "deny "
	colSpacing       = 4 // spaces between fixed columns
	colMinTarget     = 15
	colMaxTarget     = 120
	colMinActor      = 8
	colActorShare    = 3 // actor gets 1/3 of the flexible width
)

func fixedColumnsWidth() int {
	return colTimeWidth + colIconWidth + colDecisionWidth + colSpacing
}

func flexibleWidths(streamWidth int) (actor, target int) {
	avail := streamWidth - fixedColumnsWidth()
	actor = avail / colActorShare
	target = avail - actor
	if target < colMinTarget {
		target = colMinTarget
	}
	if target > colMaxTarget {
		target = colMaxTarget
	}
	if actor < colMinActor {
		actor = colMinActor
	}
	return actor, target
}

func formatEntry(e entry, width int) string {
	ds := allowStyle
	if e.report.IsDeny() {
		ds = denyStyle
	}
	decStyle := lipgloss.NewStyle().Foreground(ds.color)

	actorW, targetW := flexibleWidths(width)

	ts := timeStyle.Render(tui.FormatTimeShort(e.at))
	icon := decStyle.Render(ds.symbol)
	decision := decStyle.Render(fmt.Sprintf("%-5s", e.report.Decision))
	actor := lipgloss.NewStyle().Foreground(colorDim).Render(tui.TruncatePath(e.report.Actor, actorW))
	target := tui.TruncatePath(e.report.Target, targetW)

	var suffix string
	if e.report.MatchedRule != "" {
		suffix += " " + lipgloss.NewStyle().Foreground(colorDim).Render("["+e.report.MatchedRule+"]")
	}
	if e.report.Malformed != nil {
		suffix += " " + lipgloss.NewStyle().Foreground(colorAmber).Render("malformed")
	}
	if e.report.Outcome != response.OutcomeSuccess {
		suffix += " " + outcomeStyleFor(e.report.Outcome).Render(e.report.Outcome.String())
	}
	if e.report.Late {
		suffix += " " + lipgloss.NewStyle().Foreground(colorAmber).Render("late")
	}

	return fmt.Sprintf("%s %s %s %s %s%s", ts, icon, decision, target, actor, suffix)
}
