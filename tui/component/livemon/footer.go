package livemon

import "fmt"

type footerModel struct {
	paused     bool
	scrollLock bool
	dropped    uint64
	closed     bool
}

func (f footerModel) view(width int) string {
	hints := " q quit  p pause  ? help  d denies  f failures  G bottom"

	var indicators string
	if f.paused {
		indicators += "  " + pauseIndicatorStyle.Render("PAUSED")
	}
	if f.scrollLock {
		indicators += "  " + scrollLockStyle.Render("SCROLL")
	}
	if f.dropped > 0 {
		indicators += fmt.Sprintf("  dropped: %d", f.dropped)
	}
	if f.closed {
		indicators += "  stopped"
	}

	return footerStyle.Width(width).Render(hints + indicators)
}
