package atmosphere

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/orbit/internal/store"
	"github.com/abelbrown/orbit/internal/theme"
	"github.com/abelbrown/orbit/internal/ui/voice"
)

func testPosts(n int) []store.Post {
	posts := make([]store.Post, n)
	for i := range posts {
		posts[i] = store.Post{
			ID:        fmt.Sprintf("0f8fad5b-d9cb-469f-a165-70867728950%d", i%10),
			Image:     fmt.Sprintf("https://picsum.photos/seed/%d/800/800", 42+i),
			Handle:    "null_pointer",
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Caption:   "We build grids to hide the void.",
		}
	}
	return posts
}

func newModel(t *testing.T) Model {
	t.Helper()
	m := New(theme.NewState(theme.Config{}), nil, nil)
	m.SetSize(60, 20)
	m.SetContent(testPosts(8), store.SeedMessages)
	return m
}

func press(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestInitialFocusAndLayout(t *testing.T) {
	m := newModel(t)
	assert.Equal(t, SectionTrack, m.Focus())
	assert.Equal(t, Grid, m.Layout())
	assert.Equal(t, "4x4", m.Layout().String())
	assert.Contains(t, m.View(), "SYSTEM MUTE")
}

func TestTabCyclesSections(t *testing.T) {
	m := newModel(t)
	want := []Section{SectionLayout, SectionMessages, SectionSettings, SectionTrack}
	for _, s := range want {
		m, _ = m.Update(press(tea.KeyTab))
		assert.Equal(t, s, m.Focus())
	}
	m, _ = m.Update(press(tea.KeyShiftTab))
	assert.Equal(t, SectionSettings, m.Focus())
}

func TestSearchSurvivesFocusCycle(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(press(tea.KeyEnter))
	require.True(t, m.Track.Open())
	for _, r := range "am" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	require.Equal(t, "am", m.Track.Query())

	for i := 0; i < int(sectionCount); i++ {
		m, _ = m.Update(press(tea.KeyTab))
	}
	require.Equal(t, SectionTrack, m.Focus())
	assert.True(t, m.Capturing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	assert.Equal(t, "amb", m.Track.Query())
}

func TestLayoutToggle(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(press(tea.KeyTab))
	m, _ = m.Update(press(tea.KeyEnter))
	assert.Equal(t, List, m.Layout())

	m.ResetScroll()
	m, _ = m.Update(press(tea.KeyTab))
	m, _ = m.Update(press(tea.KeyShiftTab))
	assert.Contains(t, m.View(), "// FRAGMENT_")

	m, _ = m.Update(press(tea.KeyRight))
	assert.Equal(t, Grid, m.Layout())
}

func TestListRowFormat(t *testing.T) {
	m := New(theme.NewState(theme.Config{}), nil, nil)
	m.SetSize(80, 200)
	m.SetLayout(List)
	m.SetContent(testPosts(1), nil)
	assert.Contains(t, m.View(), "@NULL_POINTER // FRAGMENT_0F8FAD5B")
	assert.Contains(t, m.View(), "We build grids to hide the void.")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0f8fad5b", ShortID("0f8fad5b-d9cb-469f-a165-708677289501"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestMessagesRender(t *testing.T) {
	m := New(theme.NewState(theme.Config{}), nil, nil)
	m.SetSize(80, 400)
	m.SetContent(nil, store.SeedMessages)
	v := m.View()
	assert.Contains(t, v, "[14:02] @void_walker")
	assert.Contains(t, v, "[09:15] @arch_mask")
	assert.Contains(t, v, "15S FRAGMENT (HOLD)")
	assert.Contains(t, v, store.SeedMessages[1].Text)
}

func TestKeyboardHoldOnVoiceMessage(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(press(tea.KeyTab))
	m, _ = m.Update(press(tea.KeyTab))
	require.Equal(t, SectionMessages, m.Focus())
	require.True(t, store.SeedMessages[0].Voice)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	assert.True(t, m.Voice(0).Capturing())

	rel, ok := cmd().(voice.ReleaseMsg)
	require.True(t, ok)
	m, _ = m.Update(rel)
	assert.False(t, m.Voice(0).Capturing())
}

func TestHoldOnTextMessageDoesNothing(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(press(tea.KeyTab))
	m, _ = m.Update(press(tea.KeyTab))
	m, _ = m.Update(press(tea.KeyDown))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, cmd)
}

func TestMousePressAndReleaseOnFragment(t *testing.T) {
	m := New(theme.NewState(theme.Config{}), nil, nil)
	m.SetSize(80, 400)
	m.SetContent(nil, store.SeedMessages)
	require.Len(t, m.hits, 1)
	h := m.hits[0]

	inside := tea.MouseMsg{X: h.col + 1, Y: h.line + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = m.Update(inside)
	assert.True(t, m.Voice(0).Capturing())

	m, _ = m.Update(tea.MouseMsg{X: h.col + 1, Y: h.line + 1, Action: tea.MouseActionRelease})
	assert.False(t, m.Voice(0).Capturing())
}

func TestMouseLeaveReleasesFragment(t *testing.T) {
	m := New(theme.NewState(theme.Config{}), nil, nil)
	m.SetSize(80, 400)
	m.SetContent(nil, store.SeedMessages)
	h := m.hits[0]

	m, _ = m.Update(tea.MouseMsg{X: h.col, Y: h.line, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, m.Voice(0).Capturing())

	m, _ = m.Update(tea.MouseMsg{X: h.col + h.width + 5, Y: h.line, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	assert.False(t, m.Voice(0).Capturing())
}

func TestPressOutsideFragmentIgnored(t *testing.T) {
	m := New(theme.NewState(theme.Config{}), nil, nil)
	m.SetSize(80, 400)
	m.SetContent(nil, store.SeedMessages)
	m, _ = m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.Voice(0).Capturing())
}

func TestResetScroll(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(press(tea.KeyPgDown))
	require.Greater(t, m.YOffset(), 0)
	m.ResetScroll()
	assert.Equal(t, 0, m.YOffset())
}

func TestLeaveAndArriveRestoreOpenSearch(t *testing.T) {
	m := newModel(t)
	m, _ = m.Update(press(tea.KeyEnter))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m, _ = m.Update(press(tea.KeyPgDown))

	m.Leave()
	assert.False(t, m.Capturing())

	m.Arrive()
	assert.Equal(t, SectionTrack, m.Focus())
	assert.Equal(t, 0, m.YOffset())
	require.True(t, m.Capturing())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	assert.Equal(t, "am", m.Track.Query())
}

func TestCapturingFollowsChildren(t *testing.T) {
	m := newModel(t)
	assert.False(t, m.Capturing())

	m, _ = m.Update(press(tea.KeyEnter))
	assert.True(t, m.Track.Open())
	assert.True(t, m.Capturing())

	m, _ = m.Update(press(tea.KeyTab))
	assert.False(t, m.Capturing(), "leaving the track blurs its search")
}

func TestSettingsReachableAndWritesTheme(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := New(th, nil, nil)
	m.SetSize(60, 20)
	m.SetContent(testPosts(2), store.SeedMessages)

	m, _ = m.Update(press(tea.KeyShiftTab))
	require.Equal(t, SectionSettings, m.Focus())
	m, _ = m.Update(press(tea.KeyEnter))
	require.True(t, m.Settings.Expanded())

	for i := 0; i < 3; i++ {
		m, _ = m.Update(press(tea.KeyDown))
	}
	m, _ = m.Update(press(tea.KeyRight))
	m, cmd := m.Update(press(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, theme.Concrete, th.Texture())
}
