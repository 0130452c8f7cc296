package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PingCooldown is how long a spent ping stays spent.
const PingCooldown = 24 * time.Hour

const (
	headerPad   = 1
	orbitLabel  = "ORBIT"
	headerLines = 2 // label row + rule
)

// Countdown formats the time left until a ping spent at used comes back,
// as HH:MM:SS. Never negative.
func Countdown(used, now time.Time) string {
	left := PingCooldown - now.Sub(used)
	if left < 0 {
		left = 0
	}
	secs := int(left / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// span is a clickable header column range [from, to).
type span struct{ from, to int }

func (s span) contains(x int) bool { return x >= s.from && x < s.to }

// headerLayout is the header content plus its click targets, computed the
// same way for rendering and for hit-testing.
type headerLayout struct {
	title string
	ping  string
	outer string

	titleAt span
	pingAt  span
	outerAt span
}

func (a App) header() headerLayout {
	var h headerLayout
	h.title = HeaderTitle.Render(orbitLabel)

	if a.pingUsed.IsZero() {
		dot := "●"
		if a.frame%10 >= 5 {
			dot = "○"
		}
		h.ping = PingLive.Render(dot)
	} else {
		h.ping = PingGhost.Render("◌ " + Countdown(a.pingUsed, a.now()))
	}

	label := "OUTER ORBIT"
	if a.nav.Outer() {
		label = "INNER ORBIT"
	}
	h.outer = HeaderToggle.Render(label)

	h.titleAt = span{headerPad, headerPad + lipgloss.Width(h.title)}
	outerW := lipgloss.Width(h.outer)
	pingW := lipgloss.Width(h.ping)
	h.outerAt = span{a.width - headerPad - outerW, a.width - headerPad}
	h.pingAt = span{h.outerAt.from - 3 - pingW, h.outerAt.from - 3}
	return h
}

func (h headerLayout) render(width int) string {
	left := strings.Repeat(" ", headerPad) + h.title
	right := h.ping + "   " + h.outer + strings.Repeat(" ", headerPad)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n" + strings.Repeat("─", max(width, 0))
}
