// Package atmosphere is the dense secondary screen reached through the
// gravity snap: anthem, post grid or list, messages and settings.
package atmosphere

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/orbit/internal/otel"
	"github.com/abelbrown/orbit/internal/store"
	"github.com/abelbrown/orbit/internal/theme"
	"github.com/abelbrown/orbit/internal/ui/render"
	"github.com/abelbrown/orbit/internal/ui/settings"
	"github.com/abelbrown/orbit/internal/ui/track"
	"github.com/abelbrown/orbit/internal/ui/voice"
)

// Layout is how posts are arranged.
type Layout int

const (
	Grid Layout = iota
	List
)

func (l Layout) String() string {
	if l == List {
		return "list"
	}
	return "4x4"
}

// Section is a focus target, cycled with tab.
type Section int

const (
	SectionTrack Section = iota
	SectionLayout
	SectionMessages
	SectionSettings
	sectionCount
)

const gridColumns = 4

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Down     key.Binding
	Up       key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Toggle   key.Binding
	Left     key.Binding
	Right    key.Binding
	Hold     key.Binding
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab")),
	Down:     key.NewBinding(key.WithKeys("j", "down")),
	Up:       key.NewBinding(key.WithKeys("k", "up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	Toggle:   key.NewBinding(key.WithKeys("enter")),
	Left:     key.NewBinding(key.WithKeys("left", "h")),
	Right:    key.NewBinding(key.WithKeys("right", "l")),
	Hold:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hold fragment")),
}

// hit is the content-space rectangle of a voice fragment.
type hit struct {
	msg   int
	line  int
	col   int
	width int
	hgt   int
}

// Model is the Atmosphere screen.
type Model struct {
	vp     viewport.Model
	theme  *theme.State
	events *otel.Logger

	Track    track.Model
	Settings settings.Model

	posts    []store.Post
	messages []store.Message
	voices   []voice.Model

	layout    Layout
	focus     Section
	msgCursor int

	sectionLines [sectionCount]int
	hits         []hit
}

// New builds the screen around the shared theme.
func New(th *theme.State, filter track.Filter, events *otel.Logger) Model {
	m := Model{
		vp:       viewport.New(0, 0),
		theme:    th,
		events:   events,
		Track:    track.New(filter, events),
		Settings: settings.New(th),
	}
	m.Track.Focus()
	return m
}

func (m Model) Layout() Layout { return m.layout }

func (m Model) Focus() Section { return m.focus }

func (m Model) YOffset() int { return m.vp.YOffset }

// Voice returns the fragment state for message i.
func (m Model) Voice(i int) voice.Model { return m.voices[i] }

// Capturing reports whether a text field owns the keyboard, so global
// shortcuts must not fire.
func (m Model) Capturing() bool {
	return m.Track.Capturing() || m.Settings.Capturing()
}

func (m *Model) SetSize(width, height int) {
	m.vp.Width = width
	m.vp.Height = height
	m.rebuild()
}

// SetContent replaces posts and messages. Voice state is kept for
// messages that are still present at the same index.
func (m *Model) SetContent(posts []store.Post, messages []store.Message) {
	m.posts = posts
	if len(messages) != len(m.messages) {
		m.voices = make([]voice.Model, len(messages))
		for i, msg := range messages {
			m.voices[i] = voice.New(msg.ID)
		}
	}
	m.messages = messages
	if m.msgCursor >= len(messages) {
		m.msgCursor = 0
	}
	m.rebuild()
}

// ResetScroll returns to the top, as on every arrival.
func (m *Model) ResetScroll() {
	m.vp.GotoTop()
}

// Arrive readies the screen for a visit: the focused section gets the
// keyboard back and the page starts at the top.
func (m *Model) Arrive() {
	m.setFocus(m.focus)
	m.ResetScroll()
}

// Leave blurs every input so nothing captures keys while another screen
// is up.
func (m *Model) Leave() {
	m.Track.Blur()
	m.Settings.Blur()
}

// Refresh re-renders after an outside change such as a theme write.
func (m *Model) Refresh() { m.rebuild() }

// SetLayout switches between grid and list.
func (m *Model) SetLayout(l Layout) {
	m.layout = l
	m.rebuild()
}

func (m *Model) setFocus(s Section) {
	m.focus = s
	m.Leave()
	switch s {
	case SectionTrack:
		m.Track.Focus()
	case SectionSettings:
		m.Settings.Focus()
	}
	m.rebuild()
	m.vp.SetYOffset(m.sectionLines[s])
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case spinner.TickMsg:
		m.Track, cmd = m.Track.Update(msg)

	case voice.ReleaseMsg:
		for i := range m.voices {
			m.voices[i], _ = m.voices[i].Update(msg)
		}

	default:
		// cursor blink and similar internal messages for focused inputs
		var c1, c2 tea.Cmd
		m.Track, c1 = m.Track.Update(msg)
		m.Settings, c2 = m.Settings.Update(msg)
		cmd = tea.Batch(c1, c2)
	}
	m.rebuild()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Next):
		m.setFocus((m.focus + 1) % sectionCount)
		return m, nil
	case key.Matches(msg, keys.Prev):
		m.setFocus((m.focus + sectionCount - 1) % sectionCount)
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.vp.SetYOffset(m.vp.YOffset + m.vp.Height)
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.vp.SetYOffset(m.vp.YOffset - m.vp.Height)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case SectionTrack:
		if !m.Track.Open() && m.scrollKey(msg) {
			return m, nil
		}
		m.Track, cmd = m.Track.Update(msg)

	case SectionLayout:
		switch {
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if m.layout == Grid {
				m.layout = List
			} else {
				m.layout = Grid
			}
		default:
			m.scrollKey(msg)
		}

	case SectionMessages:
		switch {
		case key.Matches(msg, keys.Down):
			if m.msgCursor < len(m.messages)-1 {
				m.msgCursor++
			}
		case key.Matches(msg, keys.Up):
			if m.msgCursor > 0 {
				m.msgCursor--
			}
		case key.Matches(msg, keys.Hold):
			if m.msgCursor < len(m.messages) && m.messages[m.msgCursor].Voice {
				cmd = m.voices[m.msgCursor].Hold()
			}
		}

	case SectionSettings:
		m.Settings, cmd = m.Settings.Update(msg)
	}
	return m, cmd
}

func (m *Model) scrollKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Down):
		m.vp.SetYOffset(m.vp.YOffset + 1)
	case key.Matches(msg, keys.Up):
		m.vp.SetYOffset(m.vp.YOffset - 1)
	default:
		return false
	}
	return true
}

// handleMouse takes coordinates relative to the screen's top-left corner.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action == tea.MouseActionPress {
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.vp.SetYOffset(m.vp.YOffset + 3)
			return m
		case tea.MouseButtonWheelUp:
			m.vp.SetYOffset(m.vp.YOffset - 3)
			return m
		}
	}

	line := msg.Y + m.vp.YOffset
	over := -1
	for _, h := range m.hits {
		if line >= h.line && line < h.line+h.hgt && msg.X >= h.col && msg.X < h.col+h.width {
			over = h.msg
			break
		}
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if over >= 0 && msg.Button == tea.MouseButtonLeft {
			m.voices[over].Press()
		}
	case tea.MouseActionRelease:
		for i := range m.voices {
			if m.voices[i].Capturing() {
				m.voices[i].Release()
			}
		}
	case tea.MouseActionMotion:
		for i := range m.voices {
			if i != over && m.voices[i].Capturing() {
				m.voices[i].Release()
			}
		}
	}
	return m
}

func (m Model) View() string {
	return m.vp.View()
}

var (
	dimStyle    = lipgloss.NewStyle().Faint(true)
	activeStyle = lipgloss.NewStyle().Bold(true)
	unreadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	cursorStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) marker(s Section) string {
	if m.focus == s {
		return cursorStyle.Render("›") + " "
	}
	return "  "
}

// ShortID is the post id shown in list rows.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m *Model) rebuild() {
	width := m.vp.Width
	if width <= 0 {
		return
	}
	var lines []string
	add := func(block string) {
		lines = append(lines, strings.Split(block, "\n")...)
	}
	rule := dimStyle.Render(strings.Repeat("─", width))

	m.sectionLines[SectionTrack] = len(lines)
	add(m.marker(SectionTrack) + m.Track.View())
	add("")

	m.sectionLines[SectionLayout] = len(lines)
	gridLabel, listLabel := activeStyle.Render("▦ GRID"), dimStyle.Render("☰ LIST")
	if m.layout == List {
		gridLabel, listLabel = dimStyle.Render("▦ GRID"), activeStyle.Render("☰ LIST")
	}
	add(m.marker(SectionLayout) + gridLabel + "   " + listLabel)
	add(rule)

	if m.layout == Grid {
		add(m.renderGrid(width))
	} else {
		add(m.renderList(width))
	}
	add("")
	add(rule)

	m.sectionLines[SectionMessages] = len(lines)
	m.hits = m.hits[:0]
	for i, msg := range m.messages {
		mark := "  "
		if m.focus == SectionMessages && i == m.msgCursor {
			mark = cursorStyle.Render("›") + " "
		}
		dot := " "
		if msg.Unread {
			dot = unreadStyle.Render("▪")
		}
		add(mark + dot + " " + dimStyle.Render(fmt.Sprintf("[%s] @%s", msg.Time, msg.Handle)))
		if msg.Voice {
			v := m.voices[i]
			m.hits = append(m.hits, hit{msg: i, line: len(lines), col: 4, width: v.Width(), hgt: v.Height()})
			add(lipgloss.NewStyle().PaddingLeft(4).Render(v.View()))
		} else {
			add(lipgloss.NewStyle().PaddingLeft(4).Width(min(width, 60)).Render(msg.Text))
		}
		add("")
	}
	add(rule)

	m.sectionLines[SectionSettings] = len(lines)
	add(m.marker(SectionSettings) + m.Settings.View())

	m.vp.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderGrid(width int) string {
	cellW := (width - (gridColumns - 1)) / gridColumns
	if cellW < 2 {
		cellW = 2
	}
	cellH := cellW / 2
	if cellH < 1 {
		cellH = 1
	}
	var rows []string
	for start := 0; start < len(m.posts); start += gridColumns {
		end := min(start+gridColumns, len(m.posts))
		var cells []string
		for i, p := range m.posts[start:end] {
			cell := render.Thumbnail(p.Image, cellW, cellH)
			if i > 0 {
				cell = lipgloss.NewStyle().PaddingLeft(1).Render(cell)
			}
			cells = append(cells, cell)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderList(width int) string {
	const thumbW, thumbH = 8, 4
	textW := width - thumbW - 2
	if textW < 10 {
		textW = 10
	}
	var rows []string
	for _, p := range m.posts {
		meta := strings.ToUpper(fmt.Sprintf("@%s // fragment_%s", p.Handle, ShortID(p.ID)))
		meta = runewidth.Truncate(meta, textW, "…")
		text := lipgloss.JoinVertical(lipgloss.Left,
			dimStyle.Render(meta),
			lipgloss.NewStyle().Width(textW).Render(p.Caption),
		)
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			render.Thumbnail(p.Image, thumbW, thumbH),
			"  ",
			text,
		)
		rows = append(rows, row, "")
	}
	return strings.Join(rows, "\n")
}
