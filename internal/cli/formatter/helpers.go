package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title == "" {
		return box.Render(content)
	}
	return box.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

// RelativeTimeFrom describes t relative to now, e.g. "5m ago" or "3d ago".
func RelativeTimeFrom(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 60*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(math.Round(d.Hours()/24)))
	default:
		return t.Format("2006-01-02")
	}
}

func RelativeTime(t time.Time) string {
	return RelativeTimeFrom(t, time.Now())
}

// ShortID trims a uuid to its first block for display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) == 36 {
		return id[:i]
	}
	return id
}

// Hours renders a wait in hours, switching to days when it divides evenly.
func Hours(h int) string {
	switch {
	case h == 0:
		return "immediately"
	case h%24 == 0 && h/24 == 1:
		return "1 day"
	case h%24 == 0:
		return fmt.Sprintf("%d days", h/24)
	case h == 1:
		return "1 hour"
	default:
		return fmt.Sprintf("%d hours", h)
	}
}

// FormatShellWelcome is printed when the shell starts.
func FormatShellWelcome() string {
	cmds := [][2]string{
		{"use <campaign>", "set the active campaign"},
		{"campaign list", "list campaigns"},
		{"node add <kind>", "drop a delay, email or condition"},
		{"connect <a> <b>", "draw an edge"},
		{"status", "show the flow"},
		{"publish", "compile and publish the plan"},
		{"exit", "leave the shell"},
	}
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(StyleGreen.Render(fmt.Sprintf("%-18s", c[0])) + Dim(c[1]))
	}
	return RenderBox("drip shell", b.String())
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
