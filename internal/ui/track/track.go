// Package track is the anthem widget: a spinning disc, a now-playing label
// and a search popover over the track catalog.
package track

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/orbit/internal/otel"
	"github.com/abelbrown/orbit/internal/store"
)

// DefaultTrack is current before anything is selected.
const DefaultTrack = "Silent Orbit"

// NoResults is shown for a non-empty query that matches nothing.
const NoResults = "No signals found."

// Filter returns the tracks matching query. An empty query matches nothing.
type Filter func(query string) []string

// CatalogFilter filters the built-in catalog.
func CatalogFilter(query string) []string {
	return store.FilterTracks(store.Catalog, query)
}

// SelectedMsg reports a track chosen from the results.
type SelectedMsg struct {
	Track string
}

// PlaybackMsg reports a change in playing state.
type PlaybackMsg struct {
	Playing bool
}

var disc = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 6,
}

type keyMap struct {
	Activate key.Binding
	Playback key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Close    key.Binding
}

var keys = keyMap{
	Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "disc")),
	Playback: key.NewBinding(key.WithKeys("s", "ctrl+x"), key.WithHelp("s/ctrl+x", "stop/resume")),
	Up:       key.NewBinding(key.WithKeys("up", "ctrl+p")),
	Down:     key.NewBinding(key.WithKeys("down", "ctrl+n")),
	Select:   key.NewBinding(key.WithKeys("enter")),
	Close:    key.NewBinding(key.WithKeys("esc")),
}

// Model is the track widget. Browsing (popover open) and playing are
// independent flags.
type Model struct {
	open    bool
	playing bool
	focused bool
	current string

	input   textinput.Model
	spin    spinner.Model
	results []string
	cursor  int

	filter Filter
	events *otel.Logger
}

// New creates an idle widget. A nil filter uses CatalogFilter.
func New(filter Filter, events *otel.Logger) Model {
	if filter == nil {
		filter = CatalogFilter
	}
	ti := textinput.New()
	ti.Placeholder = "Search Frequencies..."
	ti.Prompt = "⌕ "
	ti.CharLimit = 64

	return Model{
		current: DefaultTrack,
		input:   ti,
		spin:    spinner.New(spinner.WithSpinner(disc)),
		filter:  filter,
		events:  events,
	}
}

func (m Model) Open() bool { return m.open }

func (m Model) Playing() bool { return m.playing }

func (m Model) Current() string { return m.current }

func (m Model) Query() string { return m.input.Value() }

func (m Model) Results() []string { return m.results }

// Capturing reports whether key input is going to the search field.
func (m Model) Capturing() bool { return m.open && m.focused }

// Focus gives the widget the keyboard. An open popover gets its search
// field back as it was left.
func (m *Model) Focus() {
	m.focused = true
	if m.open {
		m.input.Focus()
	}
}

func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Label is the now-playing line.
func (m Model) Label() string {
	if m.playing {
		return "Playing: " + m.current
	}
	return "System Mute"
}

// Activate toggles the popover and, coupled as in the disc button, marks
// playback on.
func (m *Model) Activate() tea.Cmd {
	m.open = !m.open
	var cmds []tea.Cmd
	if m.open {
		cmds = append(cmds, m.input.Focus())
	} else {
		m.input.Blur()
	}
	if !m.playing {
		cmds = append(cmds, m.setPlaying(true))
	}
	return tea.Batch(cmds...)
}

// TogglePlayback stops or resumes without touching the popover.
func (m *Model) TogglePlayback() tea.Cmd {
	return m.setPlaying(!m.playing)
}

// Select makes results[i] current, closes the popover and clears the
// search in one step.
func (m *Model) Select(i int) tea.Cmd {
	if i < 0 || i >= len(m.results) {
		return nil
	}
	chosen := m.results[i]
	m.current = chosen
	m.open = false
	m.input.SetValue("")
	m.input.Blur()
	m.results = nil
	m.cursor = 0
	m.events.Info(otel.KindTrackSelect, "track", chosen)
	return func() tea.Msg { return SelectedMsg{Track: chosen} }
}

func (m *Model) setPlaying(on bool) tea.Cmd {
	m.playing = on
	state := "stopped"
	if on {
		state = "playing"
	}
	m.events.Debug(otel.KindTrackPlayback, "track", state)
	report := func() tea.Msg { return PlaybackMsg{Playing: on} }
	if on {
		return tea.Batch(m.spin.Tick, report)
	}
	return report
}

// Update routes spinner ticks always and keys only while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.playing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if !m.open {
			switch {
			case key.Matches(msg, keys.Activate):
				cmd := m.Activate()
				return m, cmd
			case key.Matches(msg, keys.Playback):
				cmd := m.TogglePlayback()
				return m, cmd
			}
			return m, nil
		}
		return m.updateOpen(msg)
	}

	if m.open {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateOpen(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		cmd := m.Activate()
		return m, cmd
	case msg.String() == "ctrl+x":
		cmd := m.TogglePlayback()
		return m, cmd
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Select):
		cmd := m.Select(m.cursor)
		return m, cmd
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != before {
		m.results = m.filter(q)
		m.cursor = 0
	}
	return m, cmd
}

var (
	labelStyle   = lipgloss.NewStyle().Padding(0, 1)
	focusedDisc  = lipgloss.NewStyle().Bold(true).Reverse(true)
	popoverStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
)

// View renders the disc line and, when open, the popover beneath it.
func (m Model) View() string {
	d := "○"
	if m.playing {
		d = m.spin.View()
	}
	if m.focused {
		d = focusedDisc.Render(d)
	}
	line := d + " │" + labelStyle.Render(strings.ToUpper(m.Label()))
	if !m.open {
		return line
	}

	var rows []string
	rows = append(rows, m.input.View())
	for i, r := range m.results {
		row := "  " + strings.ToUpper(r)
		if i == m.cursor {
			row = cursorStyle.Render("› " + strings.ToUpper(r))
		}
		rows = append(rows, row)
	}
	if m.input.Value() != "" && len(m.results) == 0 {
		rows = append(rows, dimStyle.Render(NoResults))
	}
	button := "[ RESUME ]"
	if m.playing {
		button = "[ STOP TRANSMISSION ]"
	}
	rows = append(rows, "", button+dimStyle.Render(" ctrl+x"))

	return lipgloss.JoinVertical(lipgloss.Left, line, popoverStyle.Width(40).Render(strings.Join(rows, "\n")))
}
