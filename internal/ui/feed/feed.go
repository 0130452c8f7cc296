// Package feed is the Orbit screen: a vertically scrolling column of posts,
// newest first, that signals when the reader reaches the end.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/time/rate"

	"github.com/abelbrown/orbit/internal/otel"
	"github.com/abelbrown/orbit/internal/store"
	"github.com/abelbrown/orbit/internal/ui/render"
)

// PacingWindow is how long each post's decorative bar takes to deplete.
const PacingWindow = 10 * time.Second

const (
	tickInterval = 250 * time.Millisecond

	// bottomThreshold is how many lines short of the end still count as
	// "at the bottom".
	bottomThreshold = 1

	maxThumbWidth = 48
)

// ScrolledToBottomMsg asks the App to begin the gravity snap.
type ScrolledToBottomMsg struct{}

// TickMsg advances the pacing bars. Gen ties it to one mount.
type TickMsg struct {
	Gen int
	At  time.Time
}

// KeyMap is the feed's scroll bindings.
type KeyMap struct {
	Down     key.Binding
	Up       key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns the standard scroll keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "u"), key.WithHelp("pgup", "page up")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "end")),
	}
}

// Model is the feed. The zero value is not usable; call New.
type Model struct {
	vp    viewport.Model
	bar   progress.Model
	keys  KeyMap
	posts []store.Post

	// offsets[i] is the first content line of post i
	offsets []int

	outer  bool
	fg     string
	now    func() time.Time
	events *otel.Logger

	mounted   bool
	gen       int
	mountedAt time.Time
	lastTick  time.Time

	scrollLog *rate.Sometimes
}

// New creates an unmounted feed. now may be nil for time.Now.
func New(now func() time.Time, events *otel.Logger) Model {
	if now == nil {
		now = time.Now
	}
	bar := progress.New(progress.WithSolidFill("#ffffff"), progress.WithoutPercentage())
	return Model{
		vp:        viewport.New(0, 0),
		bar:       bar,
		keys:      DefaultKeyMap(),
		fg:        "#ffffff",
		now:       now,
		events:    events,
		scrollLog: &rate.Sometimes{Interval: time.Second},
	}
}

// KeyMap exposes the bindings for the help footer.
func (m Model) KeyMap() KeyMap { return m.keys }

// SetSize resizes the viewport.
func (m *Model) SetSize(width, height int) {
	m.vp.Width = width
	m.vp.Height = height
	m.rebuild()
}

// SetPosts replaces the content. Scroll position is kept where possible.
func (m *Model) SetPosts(posts []store.Post) {
	m.posts = posts
	m.rebuild()
}

// SetOuter switches handle formatting for outer orbit.
func (m *Model) SetOuter(outer bool) {
	if m.outer == outer {
		return
	}
	m.outer = outer
	m.rebuild()
}

// SetForeground sets the pacing bar fill, normally the resolved text color.
func (m *Model) SetForeground(fg string) {
	if m.fg == fg {
		return
	}
	m.fg = fg
	m.bar.FullColor = fg
	m.rebuild()
}

// Mount starts listening: pacing restarts from now and the ticker runs.
func (m *Model) Mount() tea.Cmd {
	m.mounted = true
	m.gen++
	m.mountedAt = m.now()
	m.lastTick = m.mountedAt
	m.rebuild()
	return tick(m.gen)
}

// Unmount stops the ticker and drops further scroll input.
func (m *Model) Unmount() {
	m.mounted = false
	m.gen++
}

func (m Model) Mounted() bool { return m.mounted }

// GotoTop scrolls to the newest post.
func (m *Model) GotoTop() { m.vp.GotoTop() }

func (m Model) YOffset() int { return m.vp.YOffset }

// AtBottom reports whether the viewport is within the bottom threshold.
func (m Model) AtBottom() bool {
	return m.vp.YOffset+m.vp.Height >= m.vp.TotalLineCount()-bottomThreshold
}

// CurrentPost is the post at the top of the viewport.
func (m Model) CurrentPost() (store.Post, bool) {
	if len(m.posts) == 0 {
		return store.Post{}, false
	}
	idx := 0
	for i, off := range m.offsets {
		if off <= m.vp.YOffset {
			idx = i
		}
	}
	return m.posts[idx], true
}

// Update handles scroll input and ticks. Anything else is ignored.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if !m.mounted || msg.Gen != m.gen {
			return m, nil
		}
		m.lastTick = msg.At
		m.rebuild()
		return m, tick(m.gen)

	case tea.KeyMsg:
		if !m.mounted {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Down):
			return m.scrollTo(m.vp.YOffset + 1)
		case key.Matches(msg, m.keys.Up):
			return m.scrollTo(m.vp.YOffset - 1)
		case key.Matches(msg, m.keys.PageDown):
			return m.scrollTo(m.vp.YOffset + m.vp.Height)
		case key.Matches(msg, m.keys.PageUp):
			return m.scrollTo(m.vp.YOffset - m.vp.Height)
		case key.Matches(msg, m.keys.Top):
			return m.scrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			return m.scrollTo(m.vp.TotalLineCount())
		}

	case tea.MouseMsg:
		if !m.mounted || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			return m.scrollTo(m.vp.YOffset + 3)
		case tea.MouseButtonWheelUp:
			return m.scrollTo(m.vp.YOffset - 3)
		}
	}
	return m, nil
}

// scrollTo moves the viewport and reports reaching the bottom. Every scroll
// input re-checks, so a reader who bounces at the end triggers again.
func (m Model) scrollTo(offset int) (Model, tea.Cmd) {
	m.vp.SetYOffset(offset)
	y := m.vp.YOffset
	m.scrollLog.Do(func() {
		m.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFeedScroll, Comp: "feed", Value: fmt.Sprint(y)})
	})
	if !m.AtBottom() {
		return m, nil
	}
	m.events.Debug(otel.KindFeedBottom, "feed", fmt.Sprintf("offset=%d lines=%d", y, m.vp.TotalLineCount()))
	return m, func() tea.Msg { return ScrolledToBottomMsg{} }
}

func (m Model) View() string {
	return m.vp.View()
}

// Handle formats the author line for inner or outer orbit.
func Handle(handle string, outer bool) string {
	if outer {
		return "[Pic] via @" + handle
	}
	return "@" + handle
}

// Ago is whole elapsed hours, "Nh ago". Future timestamps read "0h ago".
func Ago(ts, now time.Time) string {
	h := int(now.Sub(ts) / time.Hour)
	if h < 0 {
		h = 0
	}
	return fmt.Sprintf("%dh ago", h)
}

// Remaining is the undepleted fraction of the pacing bar.
func Remaining(mountedAt, now time.Time) float64 {
	r := 1 - float64(now.Sub(mountedAt))/float64(PacingWindow)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

var (
	captionStyle = lipgloss.NewStyle()
	metaStyle    = lipgloss.NewStyle().Faint(true)
	handleStyle  = lipgloss.NewStyle().Bold(true)
)

func (m *Model) rebuild() {
	width := m.vp.Width
	if width <= 0 {
		m.vp.SetContent("")
		m.offsets = m.offsets[:0]
		return
	}
	thumbW := width - 2
	if thumbW > maxThumbWidth {
		thumbW = maxThumbWidth
	}
	if thumbW < 4 {
		thumbW = 4
	}
	thumbH := thumbW / 4
	if thumbH < 2 {
		thumbH = 2
	}
	m.bar.Width = thumbW

	remaining := 1.0
	if m.mounted {
		remaining = Remaining(m.mountedAt, m.lastTick)
	}
	now := m.now()

	var lines []string
	m.offsets = m.offsets[:0]
	for _, p := range m.posts {
		m.offsets = append(m.offsets, len(lines))

		lines = append(lines, strings.Split(render.Thumbnail(p.Image, thumbW, thumbH), "\n")...)

		handle := runewidth.Truncate(Handle(p.Handle, m.outer), thumbW-10, "…")
		ago := Ago(p.Timestamp, now)
		gap := thumbW - runewidth.StringWidth(handle) - runewidth.StringWidth(ago)
		if gap < 1 {
			gap = 1
		}
		lines = append(lines, handleStyle.Render(handle)+strings.Repeat(" ", gap)+metaStyle.Render(ago))
		lines = append(lines, m.bar.ViewAs(remaining))
		if p.Caption != "" {
			wrapped := captionStyle.Width(thumbW).Render(p.Caption)
			lines = append(lines, strings.Split(wrapped, "\n")...)
		}
		lines = append(lines, "")
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
}

func tick(gen int) tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, At: t}
	})
}
