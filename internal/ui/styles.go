package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application. Page colors come from the theme.
var (
	colorPing  = lipgloss.Color("#dc2626")
	colorMuted = lipgloss.Color("240")
)

// HeaderTitle is the ORBIT navigation label.
var HeaderTitle = lipgloss.NewStyle().Bold(true)

// HeaderToggle is the outer/inner orbit button.
var HeaderToggle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, true).
	Padding(0, 1)

// PingLive is the unused ping dot.
var PingLive = lipgloss.NewStyle().Foreground(colorPing)

// PingGhost is the countdown after the ping is spent.
var PingGhost = lipgloss.NewStyle().Faint(true)

// StatusBarText style for the notice line.
var StatusBarText = lipgloss.NewStyle().Faint(true).Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// SnapOverlay is the gravity-snap screen: always black on white text,
// whatever the theme.
var SnapOverlay = lipgloss.NewStyle().
	Background(lipgloss.Color("#000000")).
	Foreground(lipgloss.Color("#ffffff"))

// SnapText is the overlay message.
var SnapText = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#ffffff")).
	Background(lipgloss.Color("#000000")).
	Align(lipgloss.Center)

// DebugPanel style for the debug overlay container.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle style for section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
