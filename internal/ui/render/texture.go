package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/orbit/internal/theme"
)

// Glyph sets and densities for the two overlays.
var (
	grainGlyphs    = []rune("·.:'`")
	concreteGlyphs = []rune("░▒")
)

const (
	grainDensity    = 0.05
	concreteDensity = 0.10
)

// Layers reports which overlays apply. Outer orbit always adds grain.
func Layers(tex theme.Texture, outer bool) (concrete, grain bool) {
	return tex == theme.Concrete, tex == theme.Grain || outer
}

// Overlay sprinkles texture glyphs into the blank cells of an already
// styled view. Escape sequences are copied untouched and only plain spaces
// are replaced, so the layout and cell widths never change. tick animates
// the grain; concrete is static.
func Overlay(view string, tex theme.Texture, outer bool, tick uint32) string {
	concrete, grain := Layers(tex, outer)
	if !concrete && !grain {
		return view
	}

	lines := strings.Split(view, "\n")
	for row, line := range lines {
		lines[row] = overlayLine(line, uint32(row), concrete, grain, tick)
	}
	return strings.Join(lines, "\n")
}

func overlayLine(line string, row uint32, concrete, grain bool, tick uint32) string {
	var b strings.Builder
	b.Grow(len(line))

	runes := []rune(line)
	col := uint32(0)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\x1b' {
			i = copyEscape(&b, runes, i)
			continue
		}
		if r == ' ' {
			pos := col<<16 | row
			if concrete {
				h := fnv32aTriplet(0xC0C0, pos, row)
				if below(h, concreteDensity) {
					b.WriteRune(concreteGlyphs[h%uint32(len(concreteGlyphs))])
					col++
					continue
				}
			}
			if grain {
				h := fnv32aTriplet(tick, pos, row)
				if below(h, grainDensity) {
					b.WriteRune(grainGlyphs[h%uint32(len(grainGlyphs))])
					col++
					continue
				}
			}
		}
		b.WriteRune(r)
		col += uint32(runewidth.RuneWidth(r))
	}
	return b.String()
}

// copyEscape writes the escape sequence starting at runes[i] and returns the
// index of its last rune. CSI sequences end at a byte in 0x40–0x7E; OSC
// sequences end at BEL or ST.
func copyEscape(b *strings.Builder, runes []rune, i int) int {
	b.WriteRune(runes[i])
	if i+1 >= len(runes) {
		return i
	}
	i++
	b.WriteRune(runes[i])
	switch runes[i] {
	case '[':
		for i+1 < len(runes) {
			i++
			b.WriteRune(runes[i])
			if runes[i] >= 0x40 && runes[i] <= 0x7E {
				break
			}
		}
	case ']':
		for i+1 < len(runes) {
			i++
			b.WriteRune(runes[i])
			if runes[i] == '\a' {
				break
			}
			if runes[i] == '\\' && runes[i-1] == '\x1b' {
				break
			}
		}
	}
	return i
}
