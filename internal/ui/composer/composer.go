// Package composer is the full-screen posting sheet.
package composer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/orbit/internal/store"
)

// SubmitMsg carries the caption to eject to the core.
type SubmitMsg struct {
	Caption string
}

// CancelMsg reports the sheet was dismissed and the draft discarded.
type CancelMsg struct{}

type keyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("ctrl+s", "enter"), key.WithHelp("ctrl+s", "eject to core")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard")),
}

// Model is the composer. It is inert until Open.
type Model struct {
	open   bool
	width  int
	height int

	area textarea.Model
	bar  progress.Model
}

func New() Model {
	ta := textarea.New()
	ta.CharLimit = store.MaxCaption
	ta.Placeholder = "ENTER CATALOG DESCRIPTION..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetHeight(3)
	ta.SetWidth(40)

	return Model{
		area: ta,
		bar:  progress.New(progress.WithSolidFill("#ffffff"), progress.WithoutPercentage()),
	}
}

func (m Model) IsOpen() bool { return m.open }

// Caption is the current draft.
func (m Model) Caption() string { return m.area.Value() }

// Len is the draft length in characters.
func (m Model) Len() int { return utf8.RuneCountInString(m.area.Value()) }

// Open shows the sheet with an empty draft.
func (m *Model) Open() tea.Cmd {
	m.open = true
	m.area.Reset()
	return m.area.Focus()
}

// Close hides the sheet and drops the draft.
func (m *Model) Close() {
	m.open = false
	m.area.Reset()
	m.area.Blur()
}

func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	w := width - 8
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	m.area.SetWidth(w)
	m.bar.Width = w
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(kmsg, keys.Submit):
			caption := m.area.Value()
			m.Close()
			return m, func() tea.Msg { return SubmitMsg{Caption: caption} }
		case key.Matches(kmsg, keys.Cancel):
			m.Close()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

var (
	sheetStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#000000")).
			Foreground(lipgloss.Color("#ffffff"))
	buttonStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	viewfinder  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#333333")).Faint(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// View renders the sheet over the whole screen.
func (m Model) View() string {
	if !m.open {
		return ""
	}
	w := m.area.Width()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		dimStyle.Render("✕ esc"),
		strings.Repeat(" ", max(1, w-lipgloss.Width(buttonStyle.Render("EJECT TO CORE"))-5)),
		buttonStyle.Render("EJECT TO CORE"),
	)

	vfH := w / 4
	if vfH < 3 {
		vfH = 3
	}
	finder := viewfinder.
		Width(w-2).
		Height(vfH).
		Align(lipgloss.Center, lipgloss.Center).
		Render("V I E W F I N D E R")

	counter := dimStyle.Render(fmt.Sprintf("%d/%d", m.Len(), store.MaxCaption))

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		finder,
		"",
		m.area.View(),
		m.bar.ViewAs(float64(m.Len())/float64(store.MaxCaption)),
		counter,
	)
	return sheetStyle.
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}
