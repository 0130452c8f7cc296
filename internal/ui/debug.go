package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/orbit/internal/metrics"
	"github.com/abelbrown/orbit/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing session stats, counters and
// recent events. Pure function with no side effects. Returns empty string
// if ring is nil.
func debugOverlay(ring *otel.Ring, counters map[string]int64, width, height int) string {
	if ring == nil {
		return ""
	}

	tally := ring.Tally()
	stats := tally.Kinds
	recent := ring.Recent(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Session Stats"))
	lines = append(lines, fmt.Sprintf("  Navigation: %d snaps, %d arrivals, %d returns",
		stats[otel.KindSnap], stats[otel.KindArrive], stats[otel.KindReturn]))
	lines = append(lines, fmt.Sprintf("  Posts:      %d added, %d cancelled",
		stats[otel.KindPostAdd], stats[otel.KindPostCancel]))
	lines = append(lines, fmt.Sprintf("  Theme:      %d background, %d texture",
		stats[otel.KindBackground], stats[otel.KindTexture]))
	lines = append(lines, fmt.Sprintf("  Errors:     %d store, %d system",
		stats[otel.KindStoreError], stats[otel.KindError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	if subs := subsystemLine(tally.Subsystems); subs != "" {
		lines = append(lines, "  By source:  "+subs)
	}

	if len(counters) > 0 {
		lines = append(lines, "")
		lines = append(lines, DebugHeaderStyle.Render("Counters"))
		for _, name := range metrics.Names(counters) {
			lines = append(lines, fmt.Sprintf("  %-32s %d", name, counters[name]))
		}
	}
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		age := time.Since(e.Time)
		ageStr := formatAge(age)

		line := fmt.Sprintf("  %6s  %-18s", ageStr, string(e.Kind))
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Dur > 0 {
			line += "  " + e.Dur.Round(time.Millisecond).String()
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.PostID != "" {
			pid := e.PostID
			if len(pid) > 8 {
				pid = pid[:8]
			}
			line += fmt.Sprintf("  post:%s", pid)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// subsystemLine lists counts per subsystem, busiest first, e.g.
// "nav 3 · feed 2".
func subsystemLine(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %d", name, counts[name])
	}
	return strings.Join(parts, " · ")
}
