// Package theme holds the shared background/texture selection and the
// contrast-safe text color derived from it.
package theme

import (
	"fmt"
	"strings"

	"github.com/abelbrown/orbit/internal/contrast"
)

// Texture is one of None, Concrete or Grain. The zero value is None and no
// other value can be constructed outside this package.
type Texture struct {
	id uint8
}

var (
	None     = Texture{0}
	Concrete = Texture{1}
	Grain    = Texture{2}
)

var textureNames = [...]string{"none", "concrete", "grain"}

// Textures lists every texture in selector order.
func Textures() []Texture {
	return []Texture{None, Concrete, Grain}
}

// String returns the lowercase texture name.
func (t Texture) String() string {
	return textureNames[t.id]
}

// Next cycles none → concrete → grain → none.
func (t Texture) Next() Texture {
	return Texture{(t.id + 1) % uint8(len(textureNames))}
}

// ParseTexture maps a name (case-insensitive) to a Texture.
func ParseTexture(s string) (Texture, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range textureNames {
		if s == name {
			return Texture{uint8(i)}, nil
		}
	}
	return None, fmt.Errorf("unknown texture %q (want none, concrete or grain)", s)
}

// DefaultBackground is the starting background color.
const DefaultBackground = "#000000"

// Config is a snapshot of the theme.
type Config struct {
	Background string
	Texture    Texture
}

// State is the single shared theme instance. It is owned by the UI event
// loop and passed explicitly to the components that read or write it.
type State struct {
	cfg Config

	// text color memo, keyed on the background it was computed for
	memoBG      string
	memoFG      string
	memoValid   bool
	resolutions int
}

// NewState creates a theme. An empty background becomes DefaultBackground.
func NewState(cfg Config) *State {
	if cfg.Background == "" {
		cfg.Background = DefaultBackground
	}
	return &State{cfg: cfg}
}

// Config returns the current theme values.
func (s *State) Config() Config { return s.cfg }

// Background returns the background color as set, unvalidated.
func (s *State) Background() string { return s.cfg.Background }

// Texture returns the selected texture.
func (s *State) Texture() Texture { return s.cfg.Texture }

// SetBackground replaces the background color.
func (s *State) SetBackground(color string) {
	s.cfg.Background = color
}

// SetTexture replaces the texture.
func (s *State) SetTexture(t Texture) {
	s.cfg.Texture = t
}

// TextColor returns the contrast color for the current background,
// recomputing only when the background has changed.
func (s *State) TextColor() string {
	if !s.memoValid || s.memoBG != s.cfg.Background {
		s.memoBG = s.cfg.Background
		s.memoFG = contrast.TextFor(s.cfg.Background)
		s.memoValid = true
		s.resolutions++
	}
	return s.memoFG
}

// Resolutions reports how many times TextColor actually ran the resolver.
func (s *State) Resolutions() int { return s.resolutions }
