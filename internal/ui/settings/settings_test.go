package settings

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/orbit/internal/theme"
)

func press(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func open(t *testing.T, th *theme.State) Model {
	t.Helper()
	m := New(th)
	m.Focus()
	m, _ = m.Update(press(tea.KeyEnter))
	require.True(t, m.Expanded())
	return m
}

func TestCollapsedByDefault(t *testing.T) {
	m := New(theme.NewState(theme.Config{}))
	assert.False(t, m.Expanded())
	assert.Contains(t, m.View(), "TERMINAL CONFIGURATION")
	assert.NotContains(t, m.View(), "TEXTURE_MAP")
}

func TestToggleDisclosure(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := open(t, th)
	assert.Contains(t, m.View(), "HEX_SPECTRUM")
	assert.Contains(t, m.View(), "Auto-Text")

	m, _ = m.Update(press(tea.KeyEnter))
	assert.False(t, m.Expanded())
}

func TestTypedBackgroundWritesTheme(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := open(t, th)
	m, _ = m.Update(press(tea.KeyDown))
	require.True(t, m.Capturing())

	for i := 0; i < 6; i++ {
		m, _ = m.Update(press(tea.KeyBackspace))
	}
	m, _ = m.Update(runes("FFFFFF"))
	m, cmd := m.Update(press(tea.KeyEnter))
	require.NotNil(t, cmd)

	assert.Equal(t, ChangedMsg{Field: FieldBackground, Value: "#ffffff"}, cmd())
	assert.Equal(t, "#ffffff", th.Background())
	assert.Equal(t, "#000000", th.TextColor())
}

func TestMalformedBackgroundIgnored(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := New(th)
	assert.Nil(t, m.ApplyBackground("zz"))
	assert.Nil(t, m.ApplyBackground("#12345g"))
	assert.Equal(t, "#000000", th.Background())
}

func TestApplyBackgroundAddsHash(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := New(th)
	require.NotNil(t, m.ApplyBackground("F5F5F0"))
	assert.Equal(t, "#f5f5f0", th.Background())
}

func TestSwatchSelection(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := open(t, th)
	m, _ = m.Update(press(tea.KeyDown))
	m, _ = m.Update(press(tea.KeyDown))
	m, _ = m.Update(press(tea.KeyRight))
	m, cmd := m.Update(press(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, Swatches[1], th.Background())
	assert.Equal(t, "#000000", th.TextColor())
}

func TestTextureSelectorCycles(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := open(t, th)
	for i := 0; i < 3; i++ {
		m, _ = m.Update(press(tea.KeyDown))
	}

	m, _ = m.Update(press(tea.KeyRight))
	m, cmd := m.Update(press(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, ChangedMsg{Field: FieldTexture, Value: "concrete"}, cmd())
	assert.Equal(t, theme.Concrete, th.Texture())

	m, _ = m.Update(press(tea.KeyRight))
	m, _ = m.Update(press(tea.KeyEnter))
	assert.Equal(t, theme.Grain, th.Texture())

	m, _ = m.Update(press(tea.KeyRight))
	m, _ = m.Update(press(tea.KeyEnter))
	assert.Equal(t, theme.None, th.Texture())
}

func TestUnfocusedIgnoresKeys(t *testing.T) {
	th := theme.NewState(theme.Config{})
	m := New(th)
	m, _ = m.Update(press(tea.KeyEnter))
	assert.False(t, m.Expanded())
}

func TestNotCapturingOnOtherRows(t *testing.T) {
	m := open(t, theme.NewState(theme.Config{}))
	assert.False(t, m.Capturing())
	m.Blur()
	assert.False(t, m.Capturing())
}

func TestViewListsTextures(t *testing.T) {
	m := open(t, theme.NewState(theme.Config{Texture: theme.Grain}))
	v := m.View()
	for _, name := range []string{"NONE", "CONCRETE", "GRAIN"} {
		assert.Contains(t, v, name)
	}
}
