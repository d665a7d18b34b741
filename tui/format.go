package tui

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration formats a duration as a human-readable string.
// Decision latencies are usually well below a millisecond, so those keep
// microsecond resolution.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// FormatTimeShort formats a time with just hour:minute:second.
func FormatTimeShort(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("15:04:05")
}

// FormatNumber formats a number with thousand separators.
func FormatNumber(n int) string {
	if n < 1000 && n > -1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumberWithSep(n)
}

func formatNumberWithSep(n int) string {
	s := fmt.Sprintf("%d", n)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	var result strings.Builder
	result.WriteString(sign)
	l := len(s)
	for i, c := range s {
		if i > 0 && (l-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

// FormatPermissions renders a permission mask the way the kernel reports it.
func FormatPermissions(mask uint32) string {
	return fmt.Sprintf("0x%08x", mask)
}

// OrDash returns s, or "-" when s is empty.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// TruncateString truncates a string to the given length.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// TruncatePath shortens a path from the left so the file name stays
// visible.
func TruncatePath(p string, maxLen int) string {
	if len(p) <= maxLen {
		return p
	}
	if maxLen <= 3 {
		return p[len(p)-maxLen:]
	}
	return "..." + p[len(p)-maxLen+3:]
}

// HorizontalLine returns a horizontal line of the given width.
func HorizontalLine(width int) string {
	return strings.Repeat("─", width)
}
