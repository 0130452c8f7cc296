package feed

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/orbit/internal/store"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return t0 }

func testPosts(n int) []store.Post {
	posts := make([]store.Post, n)
	for i := range posts {
		posts[i] = store.Post{
			ID:        fmt.Sprintf("p%d", i),
			Image:     fmt.Sprintf("https://picsum.photos/seed/%d/800/800", 42+i),
			Handle:    "null_pointer",
			Timestamp: t0.Add(-time.Duration(i) * time.Hour),
			Caption:   "We build grids to hide the void.",
		}
	}
	return posts
}

func newMounted(t *testing.T, n int) Model {
	t.Helper()
	m := New(fixedNow, nil)
	m.SetSize(40, 12)
	m.SetPosts(testPosts(n))
	require.NotNil(t, m.Mount())
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isBottomMsg(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(ScrolledToBottomMsg)
	return ok
}

func TestHandleFormat(t *testing.T) {
	assert.Equal(t, "@null_pointer", Handle("null_pointer", false))
	assert.Equal(t, "[Pic] via @null_pointer", Handle("null_pointer", true))
}

func TestAgo(t *testing.T) {
	assert.Equal(t, "0h ago", Ago(t0, t0))
	assert.Equal(t, "0h ago", Ago(t0.Add(-59*time.Minute), t0))
	assert.Equal(t, "3h ago", Ago(t0.Add(-3*time.Hour-20*time.Minute), t0))
	assert.Equal(t, "23h ago", Ago(t0.Add(-23*time.Hour-59*time.Minute), t0))
	assert.Equal(t, "0h ago", Ago(t0.Add(time.Hour), t0))
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 1.0, Remaining(t0, t0))
	assert.InDelta(t, 0.5, Remaining(t0, t0.Add(5*time.Second)), 1e-9)
	assert.Equal(t, 0.0, Remaining(t0, t0.Add(PacingWindow)))
	assert.Equal(t, 0.0, Remaining(t0, t0.Add(time.Minute)))
}

func TestViewShowsNewestFirst(t *testing.T) {
	m := newMounted(t, 3)
	view := m.View()
	assert.Contains(t, view, "@null_pointer")
	assert.Contains(t, view, "0h ago")

	p, ok := m.CurrentPost()
	require.True(t, ok)
	assert.Equal(t, "p0", p.ID)
}

func TestOuterOrbitHandle(t *testing.T) {
	m := New(fixedNow, nil)
	m.SetSize(60, 40)
	m.SetPosts(testPosts(1))
	m.SetOuter(true)
	assert.Contains(t, m.View(), "[Pic] via @null_pointer")
}

func TestSingleScrollFromTopIsNotBottom(t *testing.T) {
	m := newMounted(t, 8)
	m, cmd := m.Update(keyMsg("j"))
	assert.False(t, isBottomMsg(cmd))
	assert.Equal(t, 1, m.YOffset())
}

func TestScrollToEndEmitsBottom(t *testing.T) {
	m := newMounted(t, 8)
	m, cmd := m.Update(keyMsg("end"))
	assert.True(t, m.AtBottom())
	assert.True(t, isBottomMsg(cmd))

	// Scrolling again at the end re-emits; the navigation controller
	// collapses the burst into one transition.
	_, cmd = m.Update(keyMsg("j"))
	assert.True(t, isBottomMsg(cmd))
}

func TestPagingEventuallyReachesBottom(t *testing.T) {
	m := newMounted(t, 8)
	var cmd tea.Cmd
	hit := false
	for i := 0; i < 200 && !hit; i++ {
		m, cmd = m.Update(keyMsg("pgdown"))
		hit = isBottomMsg(cmd)
	}
	assert.True(t, hit)
}

func TestWithinThresholdCountsAsBottom(t *testing.T) {
	m := newMounted(t, 8)
	total := m.vp.TotalLineCount()
	// One line short of the true end.
	m, cmd := m.scrollTo(total - m.vp.Height - 1)
	assert.True(t, m.AtBottom())
	assert.True(t, isBottomMsg(cmd))
}

func TestMouseWheelScrolls(t *testing.T) {
	m := newMounted(t, 8)
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, 3, m.YOffset())
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, 0, m.YOffset())
}

func TestShortFeedIsAlwaysBottom(t *testing.T) {
	m := New(fixedNow, nil)
	m.SetSize(40, 200)
	m.SetPosts(testPosts(1))
	m.Mount()
	_, cmd := m.Update(keyMsg("j"))
	assert.True(t, isBottomMsg(cmd))
}

func TestUnmountedIgnoresInput(t *testing.T) {
	m := newMounted(t, 8)
	m.Unmount()
	assert.False(t, m.Mounted())

	m, cmd := m.Update(keyMsg("end"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.YOffset())

	_, cmd = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Nil(t, cmd)
}

func TestTickGenerationGuard(t *testing.T) {
	m := newMounted(t, 2)
	gen := m.gen

	m, cmd := m.Update(TickMsg{Gen: gen, At: t0.Add(time.Second)})
	assert.NotNil(t, cmd, "current ticks re-arm")
	assert.Equal(t, t0.Add(time.Second), m.lastTick)

	m, cmd = m.Update(TickMsg{Gen: gen - 1, At: t0.Add(2 * time.Second)})
	assert.Nil(t, cmd, "stale ticks die")
	assert.Equal(t, t0.Add(time.Second), m.lastTick)

	m.Unmount()
	_, cmd = m.Update(TickMsg{Gen: m.gen, At: t0.Add(3 * time.Second)})
	assert.Nil(t, cmd)
}

func TestRemountStartsNewGeneration(t *testing.T) {
	m := newMounted(t, 2)
	first := m.gen
	m.Unmount()
	m.Mount()
	assert.Greater(t, m.gen, first)
	assert.True(t, m.Mounted())
}

func TestCurrentPostFollowsScroll(t *testing.T) {
	m := newMounted(t, 4)
	require.Len(t, m.offsets, 4)
	m, _ = m.scrollTo(m.offsets[2])
	p, ok := m.CurrentPost()
	require.True(t, ok)
	assert.Equal(t, "p2", p.ID)
}

func TestEmptyFeed(t *testing.T) {
	m := New(fixedNow, nil)
	m.SetSize(40, 10)
	_, ok := m.CurrentPost()
	assert.False(t, ok)
	assert.Equal(t, "", strings.TrimSpace(m.View()))
}
