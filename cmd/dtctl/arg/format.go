package arg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

// formatSeconds renders a duration as "1h 02m 03s", "4m 05s" or "7s".
func formatSeconds(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// parseTimerDuration accepts Go durations ("25m", "1h30m") or plain seconds.
func parseTimerDuration(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("%w: %s", tracker.ErrInvalidDuration, s)
		}
		return secs, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", tracker.ErrInvalidDuration, s)
	}
	if d%time.Second != 0 || d < time.Second {
		return 0, fmt.Errorf("%w: %s is not a whole number of seconds", tracker.ErrInvalidDuration, s)
	}
	return int64(d / time.Second), nil
}

func swatch(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// categoryLines lists categories by time, longest first.
func categoryLines(cats map[string]tracker.CategoryData, active string) []string {
	names := make([]string, 0, len(cats))
	width := 0
	for name := range cats {
		names = append(names, name)
		if w := lipgloss.Width(name); w > width {
			width = w
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := cats[names[i]], cats[names[j]]
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return names[i] < names[j]
	})

	lines := make([]string, 0, len(names))
	for _, name := range names {
		c := cats[name]
		marker := "  "
		if name == active {
			marker = activeStyle.Render("▶ ")
		}
		label := swatch(c.Color).Render("■ " + name + strings.Repeat(" ", width-lipgloss.Width(name)))
		lines = append(lines, fmt.Sprintf("%s%s  %s", marker, label, formatSeconds(c.Time)))
	}
	return lines
}

// renderStatus is the body of "dtctl status" and "dtctl watch".
func renderStatus(st tracker.Status) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("DayTracker · " + st.Date))
	b.WriteString("\n\n")

	active := ""
	if st.Active != nil {
		active = st.Active.Category
	}
	lines := categoryLines(st.Categories, active)
	if len(lines) == 0 {
		b.WriteString(idleStyle.Render("no categories yet, add one with: dtctl category add <name>"))
		b.WriteString("\n")
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	var total int64
	for _, c := range st.Categories {
		total += c.Time
	}
	b.WriteString(fmt.Sprintf("\nTotal  %s\n", formatSeconds(total)))

	if st.Active == nil {
		b.WriteString(idleStyle.Render("idle"))
	} else if st.Active.Mode == "countdown" {
		b.WriteString(activeStyle.Render(fmt.Sprintf("timer on %s: %s left", st.Active.Category, formatSeconds(st.Active.Remaining))))
	} else {
		b.WriteString(activeStyle.Render(fmt.Sprintf("tracking %s for %s", st.Active.Category, formatSeconds(st.Active.Elapsed))))
	}
	b.WriteString("\n")
	return b.String()
}
