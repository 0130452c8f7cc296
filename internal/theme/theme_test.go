package theme

import (
	"testing"

	"github.com/abelbrown/orbit/internal/contrast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureCycle(t *testing.T) {
	seen := []Texture{None}
	cur := None
	for i := 0; i < 3; i++ {
		cur = cur.Next()
		seen = append(seen, cur)
	}
	assert.Equal(t, []Texture{None, Concrete, Grain, None}, seen)

	// every intermediate value is one of the enumerated textures
	for _, tx := range seen {
		assert.Contains(t, Textures(), tx)
	}
}

func TestZeroTextureIsNone(t *testing.T) {
	var tx Texture
	assert.Equal(t, None, tx)
	assert.Equal(t, "none", tx.String())
}

func TestParseTexture(t *testing.T) {
	for _, tx := range Textures() {
		got, err := ParseTexture(tx.String())
		require.NoError(t, err)
		assert.Equal(t, tx, got)
	}

	got, err := ParseTexture("  GRAIN ")
	require.NoError(t, err)
	assert.Equal(t, Grain, got)

	_, err = ParseTexture("marble")
	assert.Error(t, err)
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState(Config{})
	assert.Equal(t, DefaultBackground, s.Background())
	assert.Equal(t, None, s.Texture())
	assert.Equal(t, contrast.White, s.TextColor())
}

func TestSetters(t *testing.T) {
	s := NewState(Config{Background: "#000000"})

	s.SetBackground("#ffffff")
	s.SetTexture(Concrete)

	assert.Equal(t, Config{Background: "#ffffff", Texture: Concrete}, s.Config())
	assert.Equal(t, contrast.Black, s.TextColor())

	// no validation: malformed colors are stored and resolve to white text
	s.SetBackground("garbage")
	assert.Equal(t, "garbage", s.Background())
	assert.Equal(t, contrast.White, s.TextColor())
}

func TestTextColorMemoizedOnBackground(t *testing.T) {
	s := NewState(Config{Background: "#ffffff"})

	s.TextColor()
	s.TextColor()
	assert.Equal(t, 1, s.Resolutions())

	// texture changes do not invalidate the memo
	s.SetTexture(Grain)
	s.TextColor()
	assert.Equal(t, 1, s.Resolutions())

	s.SetBackground("#000000")
	assert.Equal(t, contrast.White, s.TextColor())
	assert.Equal(t, 2, s.Resolutions())

	// same value again is still a hit
	s.SetBackground("#000000")
	s.TextColor()
	assert.Equal(t, 2, s.Resolutions())
}
