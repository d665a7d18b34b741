package livemon

import "time"

type reportsMsg struct {
	entries []entry
	dropped uint64
}

type feedClosedMsg struct{}

type clockMsg time.Time
