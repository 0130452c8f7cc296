package render

import "strings"

// shades runs from empty to solid.
var shades = []rune(" ░▒▓█")

// cell is the lattice spacing for value noise, in character cells.
const cell = 4

// Thumbnail renders a width×height block of shaded glyphs standing in for
// the image at locator. Equal locators give equal blocks.
func Thumbnail(locator string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	seed := hashString(locator)
	lines := make([]string, height)
	var b strings.Builder
	for y := 0; y < height; y++ {
		b.Reset()
		for x := 0; x < width; x++ {
			v := valueNoise(seed, x, y)
			idx := int(v * float64(len(shades)))
			if idx >= len(shades) {
				idx = len(shades) - 1
			}
			b.WriteRune(shades[idx])
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// valueNoise bilinearly interpolates lattice values around (x, y), in [0,1).
func valueNoise(seed uint32, x, y int) float64 {
	gx, gy := x/cell, y/cell
	fx := float64(x%cell) / cell
	fy := float64(y%cell) / cell

	v00 := lattice(seed, gx, gy)
	v10 := lattice(seed, gx+1, gy)
	v01 := lattice(seed, gx, gy+1)
	v11 := lattice(seed, gx+1, gy+1)

	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fy
}

func lattice(seed uint32, gx, gy int) float64 {
	h := fnv32aTriplet(seed, uint32(gx), uint32(gy))
	return float64(h) / (float64(^uint32(0)) + 1)
}
