// Package voice is the press-and-hold fragment indicator. Nothing is
// recorded; the model only tracks whether the fragment is being held.
package voice

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReleaseAfter is how long a keyboard hold survives without key repeat.
const ReleaseAfter = 400 * time.Millisecond

const (
	idleLabel      = "15S FRAGMENT (HOLD)"
	capturingLabel = "RECEIVING FRAGMENT..."
)

// ReleaseMsg ends a keyboard hold unless a newer repeat superseded it.
type ReleaseMsg struct {
	ID    int
	Token uint64
}

// Model is one fragment. ID distinguishes fragments sharing a screen.
type Model struct {
	ID        int
	capturing bool
	token     uint64
}

func New(id int) Model { return Model{ID: id} }

func (m Model) Capturing() bool { return m.capturing }

// Press begins a pointer hold.
func (m *Model) Press() {
	m.capturing = true
	m.token++
}

// Release ends any hold. Also used for the pointer leaving the fragment.
func (m *Model) Release() {
	m.capturing = false
	m.token++
}

// Hold starts or extends a keyboard hold and schedules its release.
func (m *Model) Hold() tea.Cmd {
	m.capturing = true
	m.token++
	id, tok := m.ID, m.token
	return tea.Tick(ReleaseAfter, func(time.Time) tea.Msg {
		return ReleaseMsg{ID: id, Token: tok}
	})
}

// Update applies release deadlines addressed to this fragment.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if r, ok := msg.(ReleaseMsg); ok && r.ID == m.ID && r.Token == m.token {
		m.capturing = false
	}
	return m, nil
}

var (
	fragmentStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	activeStyle   = fragmentStyle.Reverse(true)
)

// Width is the rendered width, for hit-testing.
func (m Model) Width() int { return lipgloss.Width(m.View()) }

// Height is the rendered height, for hit-testing.
func (m Model) Height() int { return lipgloss.Height(m.View()) }

func (m Model) View() string {
	if m.capturing {
		return activeStyle.Render("● " + capturingLabel)
	}
	return fragmentStyle.Render("◉ " + idleLabel)
}
