package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sgrReset = "\x1b[0m"

// Paint fills a width×height page with style's colors. Inner styled
// segments end in a full reset that would drop the page background for the
// rest of the line, so the page colors are re-applied after every reset.
func Paint(view string, style lipgloss.Style, width, height int) string {
	prefix := pagePrefix(style)
	if prefix != "" {
		view = strings.ReplaceAll(view, sgrReset, sgrReset+prefix)
	}
	return style.Width(width).Height(height).MaxHeight(height).Render(view)
}

// pagePrefix is the escape sequence style emits before its content, or ""
// when the active color profile renders no color.
func pagePrefix(style lipgloss.Style) string {
	const probe = "x"
	out := style.UnsetWidth().UnsetHeight().UnsetPadding().UnsetMargins().UnsetBorderStyle().Render(probe)
	i := strings.Index(out, probe)
	if i <= 0 {
		return ""
	}
	return out[:i]
}
