package livemon

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/safedep/authgate/core/response"
)

var (
	colorGreen  = lipgloss.Color("#6BCB77")
	colorRed    = lipgloss.Color("#E74C3C")
	colorAmber  = lipgloss.Color("#F0AD4E")
	colorViolet = lipgloss.Color("#9B59B6")
	colorPink   = lipgloss.Color("#E91E63")
	colorWhite  = lipgloss.Color("#ECF0F1")
	colorDim    = lipgloss.Color("#7F8C8D")
	colorBg     = lipgloss.Color("#1E1E2E")

	headerStyle = lipgloss.NewStyle().
			Background(colorBg).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Background(colorBg).
			Foreground(colorDim).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorDim).
			Padding(0, 1)

	sidebarLabelStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	sidebarValueStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true)

	sidebarHeaderStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true).
				Underline(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	pauseIndicatorStyle = lipgloss.NewStyle().
				Foreground(colorAmber).
				Bold(true)

	scrollLockStyle = lipgloss.NewStyle().
			Foreground(colorViolet).
			Bold(true)

	helpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorViolet).
				Padding(1, 2).
				Foreground(colorWhite)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Bold(true).
			Width(12)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorWhite)
)

type decisionStyle struct {
	symbol string
	color  lipgloss.Color
}

var (
	allowStyle = decisionStyle{symbol: "+", color: colorGreen}
	denyStyle  = decisionStyle{symbol: "x", color: colorRed}
)

func outcomeStyleFor(o response.AckOutcome) lipgloss.Style {
	switch o.Class() {
	case response.ClassOK:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case response.ClassLogicFault:
		return lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorAmber)
	}
}
