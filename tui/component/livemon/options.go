package livemon

import "time"

// Options configures the live monitor.
type Options struct {
	// Feed supplies the reports to display.
	Feed *Feed
	// Backend is shown in the header.
	Backend string
	// RuleCount is shown in the header.
	RuleCount int
	// ClockInterval sets how often the header clock and rate refresh.
	ClockInterval time.Duration
}

func (o Options) clockInterval() time.Duration {
	if o.ClockInterval > 0 {
		return o.ClockInterval
	}
	return time.Second
}
