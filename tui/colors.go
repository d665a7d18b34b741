package tui

// ANSI escape sequences used by the table presenter.
const (
	Reset = "\033[0m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	BrightRed     = "\033[91m"
	BrightMagenta = "\033[95m"

	BoldWhite = "\033[1;37m"
)

// decisionColors maps a rendered decision to its color. Anything else,
// such as "unknown", is highlighted as a warning.
var decisionColors = map[string]string{
	"allow": Green,
	"deny":  BrightRed,
}

// outcomeClassColors maps an outcome class to its color.
var outcomeClassColors = map[string]string{
	"ok":          Green,
	"failure":     Yellow,
	"logic_fault": BrightMagenta,
}

// Colorizer wraps text with ANSI color codes if colors are enabled.
type Colorizer struct {
	enabled bool
}

// NewColorizer creates a new Colorizer.
func NewColorizer(enabled bool) *Colorizer {
	return &Colorizer{enabled: enabled}
}

// Apply applies the given color to the text.
func (c *Colorizer) Apply(color, text string) string {
	if !c.enabled || color == "" {
		return text
	}
	return color + text + Reset
}

func (c *Colorizer) Header(text string) string  { return c.Apply(BoldWhite, text) }
func (c *Colorizer) Path(text string) string    { return c.Apply(Blue, text) }
func (c *Colorizer) Success(text string) string { return c.Apply(Green, text) }
func (c *Colorizer) Error(text string) string   { return c.Apply(Red, text) }
func (c *Colorizer) Warning(text string) string { return c.Apply(Yellow, text) }
func (c *Colorizer) Dim(text string) string     { return c.Apply(Gray, text) }
func (c *Colorizer) Number(text string) string  { return c.Apply(Yellow, text) }

// StatusOK and StatusFail render the bracketed check markers.
func (c *Colorizer) StatusOK() string   { return c.Apply(Green, "[ok]") }
func (c *Colorizer) StatusFail() string { return c.Apply(Red, "[!!]") }

// Decision colors an allow/deny verdict.
func (c *Colorizer) Decision(decision string) string {
	color, ok := decisionColors[decision]
	if !ok {
		color = Yellow
	}
	return c.Apply(color, decision)
}

// Outcome colors an acknowledgment outcome by its class.
func (c *Colorizer) Outcome(outcome, class string) string {
	color, ok := outcomeClassColors[class]
	if !ok {
		color = Yellow
	}
	return c.Apply(color, outcome)
}

// Unified diff lines.
func (c *Colorizer) DiffAdd(text string) string    { return c.Apply(Green, text) }
func (c *Colorizer) DiffRemove(text string) string { return c.Apply(Red, text) }
func (c *Colorizer) DiffHeader(text string) string { return c.Apply(Cyan, text) }
func (c *Colorizer) DiffHunk(text string) string   { return c.Apply(Magenta, text) }
