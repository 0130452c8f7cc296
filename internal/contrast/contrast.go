// Package contrast picks legible text colors for arbitrary backgrounds.
package contrast

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Text colors returned by TextFor.
const (
	Black = "#000000"
	White = "#ffffff"
)

// threshold is the luminance at or above which a background counts as light.
const threshold = 128

// TextFor returns black or white, whichever reads better on bg.
// Malformed input (shorter than "#rrggbb", missing '#', non-hex digits)
// yields White.
func TextFor(bg string) string {
	y, ok := Luminance(bg)
	if !ok {
		return White
	}
	if y >= threshold {
		return Black
	}
	return White
}

// Luminance computes the weighted sum 0.299R + 0.587G + 0.114B over the
// 8-bit channels of a "#rrggbb" color. Characters past the sixth digit are
// ignored. ok is false when the color cannot be parsed.
func Luminance(hex string) (y float64, ok bool) {
	r, g, b, ok := channels(hex)
	if !ok {
		return 0, false
	}
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000, true
}

// Invert returns the RGB complement of hex. Unparseable input is treated
// as black, so it inverts to White.
func Invert(hex string) string {
	r, g, b, ok := channels(hex)
	if !ok {
		return White
	}
	c := colorful.Color{
		R: float64(255-r) / 255,
		G: float64(255-g) / 255,
		B: float64(255-b) / 255,
	}
	return c.Hex()
}

func channels(hex string) (r, g, b uint8, ok bool) {
	if len(hex) < 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	for i := 1; i < 7; i++ {
		if !isHexDigit(hex[i]) {
			return 0, 0, 0, false
		}
	}
	c, err := colorful.Hex(hex[:7])
	if err != nil {
		return 0, 0, 0, false
	}
	r, g, b = c.RGB255()
	return r, g, b, true
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}
