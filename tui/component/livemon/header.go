package livemon

import (
	"fmt"
	"time"
)

type headerModel struct {
	backend   string
	ruleCount int
	now       time.Time
}

func newHeaderModel(backend string, ruleCount int) headerModel {
	return headerModel{backend: backend, ruleCount: ruleCount, now: time.Now()}
}

func (h headerModel) view(width int) string {
	content := fmt.Sprintf(" authgate live | %s | %d rules | %s",
		h.backend, h.ruleCount, h.now.Format("15:04:05"))
	return headerStyle.Width(width).Render(content)
}
