// Package settings is the "Terminal Configuration" disclosure: background
// color entry, preset swatches, the Auto-Text sample and the texture map.
package settings

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/orbit/internal/contrast"
	"github.com/abelbrown/orbit/internal/theme"
)

// Swatches are the preset backgrounds offered next to the hex field.
var Swatches = []string{
	"#000000",
	"#f5f5f0",
	"#1a1a2e",
	"#ff3b30",
	"#2b5d34",
	"#d9c5a0",
	"#7f7f7f",
}

// Field names carried by ChangedMsg.
const (
	FieldBackground = "background"
	FieldTexture    = "texture"
)

// ChangedMsg reports a theme write.
type ChangedMsg struct {
	Field string
	Value string
}

type row int

const (
	rowHeader row = iota
	rowBackground
	rowSwatches
	rowTexture
)

type keyMap struct {
	Up, Down, Left, Right, Apply key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up")),
	Down:  key.NewBinding(key.WithKeys("down")),
	Left:  key.NewBinding(key.WithKeys("left")),
	Right: key.NewBinding(key.WithKeys("right")),
	Apply: key.NewBinding(key.WithKeys("enter")),
}

// Model is the settings panel. It writes straight into the shared theme.
type Model struct {
	theme *theme.State

	expanded bool
	focused  bool
	row      row
	swatch   int
	texture  int

	input textinput.Model
}

// New creates a collapsed panel bound to th.
func New(th *theme.State) Model {
	ti := textinput.New()
	ti.Prompt = "# "
	ti.CharLimit = 6
	ti.Placeholder = "rrggbb"
	ti.SetValue(strings.TrimPrefix(th.Background(), "#"))

	m := Model{theme: th, input: ti}
	m.texture = indexOf(th.Texture())
	return m
}

func (m Model) Expanded() bool { return m.expanded }

// Capturing reports whether key input is going to the hex field.
func (m Model) Capturing() bool {
	return m.focused && m.expanded && m.row == rowBackground
}

func (m *Model) Focus() {
	m.focused = true
	m.syncInput()
}

func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Toggle expands or collapses the panel.
func (m *Model) Toggle() {
	m.expanded = !m.expanded
	if !m.expanded {
		m.row = rowHeader
	}
	m.syncInput()
}

// ApplyBackground writes color to the theme. Only #rrggbb values are
// accepted from the keyboard; anything else is left in the field.
func (m *Model) ApplyBackground(color string) tea.Cmd {
	color = strings.TrimSpace(color)
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if _, ok := contrast.Luminance(color); !ok || len(color) != 7 {
		return nil
	}
	color = strings.ToLower(color)
	m.theme.SetBackground(color)
	m.input.SetValue(strings.TrimPrefix(color, "#"))
	return changed(FieldBackground, color)
}

// ApplyTexture writes t to the theme.
func (m *Model) ApplyTexture(t theme.Texture) tea.Cmd {
	m.theme.SetTexture(t)
	m.texture = indexOf(t)
	return changed(FieldTexture, t.String())
}

func changed(field, value string) tea.Cmd {
	return func() tea.Msg { return ChangedMsg{Field: field, Value: value} }
}

// Update handles keys while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.Capturing() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if !m.focused {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, keys.Up):
		if m.expanded && m.row > rowHeader {
			m.row--
			m.syncInput()
		}
		return m, nil
	case key.Matches(kmsg, keys.Down):
		if m.expanded && m.row < rowTexture {
			m.row++
			m.syncInput()
		}
		return m, nil
	}

	switch m.row {
	case rowHeader:
		if key.Matches(kmsg, keys.Apply) {
			m.Toggle()
		}
		return m, nil

	case rowBackground:
		if key.Matches(kmsg, keys.Apply) {
			cmd := m.ApplyBackground(m.input.Value())
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(kmsg)
		return m, cmd

	case rowSwatches:
		switch {
		case key.Matches(kmsg, keys.Left):
			m.swatch = (m.swatch + len(Swatches) - 1) % len(Swatches)
		case key.Matches(kmsg, keys.Right):
			m.swatch = (m.swatch + 1) % len(Swatches)
		case key.Matches(kmsg, keys.Apply):
			cmd := m.ApplyBackground(Swatches[m.swatch])
			return m, cmd
		}
		return m, nil

	case rowTexture:
		textures := theme.Textures()
		switch {
		case key.Matches(kmsg, keys.Left):
			m.texture = (m.texture + len(textures) - 1) % len(textures)
		case key.Matches(kmsg, keys.Right):
			m.texture = (m.texture + 1) % len(textures)
		case key.Matches(kmsg, keys.Apply):
			cmd := m.ApplyTexture(textures[m.texture])
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) syncInput() {
	if m.Capturing() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func indexOf(t theme.Texture) int {
	for i, tt := range theme.Textures() {
		if tt == t {
			return i
		}
	}
	return 0
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	boxStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func (m Model) marker(r row) string {
	if m.focused && m.row == r {
		return "› "
	}
	return "  "
}

// View renders the panel using the theme's current colors.
func (m Model) View() string {
	fg := m.theme.TextColor()
	bg := m.theme.Background()

	header := m.marker(rowHeader) + headerStyle.Foreground(lipgloss.Color(fg)).Render("⚙ TERMINAL CONFIGURATION")
	if !m.expanded {
		return header
	}

	inverted := lipgloss.NewStyle().
		Background(lipgloss.Color(fg)).
		Foreground(lipgloss.Color(bg)).
		Bold(true).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(header + "\n\n")

	b.WriteString(dimStyle.Render("  // HEX_SPECTRUM") + "\n")
	b.WriteString(m.marker(rowBackground) + "Background " + m.input.View() + "\n")

	var sw []string
	for i, c := range Swatches {
		cell := lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("   ")
		if i == m.swatch && m.focused && m.row == rowSwatches {
			cell = "[" + cell + "]"
		} else {
			cell = " " + cell + " "
		}
		sw = append(sw, cell)
	}
	b.WriteString(m.marker(rowSwatches) + strings.Join(sw, "") + "\n")
	b.WriteString("  Auto-Text " + inverted.Render("Aa") + dimStyle.Render(" "+fg) + "\n\n")

	b.WriteString(dimStyle.Render("  // TEXTURE_MAP") + "\n")
	var tex []string
	for i, t := range theme.Textures() {
		label := strings.ToUpper(t.String())
		var cell string
		if t == m.theme.Texture() {
			cell = inverted.Render(label)
		} else {
			cell = boxStyle.Foreground(lipgloss.Color(fg)).Render(label)
		}
		if i == m.texture && m.focused && m.row == rowTexture {
			cell = lipgloss.NewStyle().Underline(true).Render(cell)
		}
		tex = append(tex, cell)
	}
	b.WriteString(m.marker(rowTexture) + lipgloss.JoinHorizontal(lipgloss.Center, tex...))

	return b.String()
}
