// Package draw renders to an ANSI terminal: a colour canvas with two
// sub-pixels per cell and a chunked writer for text overlays.
package draw

import (
	"fmt"
	"strconv"
	"strings"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a 24-bit RGB colour. The zero value means "no pixel".
type Color uint32

const colorSet Color = 1 << 24

// RGB builds a colour from components.
func RGB(r, g, b uint8) Color {
	return colorSet | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Common colours.
var (
	White = RGB(0xFF, 0xFF, 0xFF)
	Gray  = RGB(0x80, 0x80, 0x80)
)

// ParseColor parses "#RRGGBB". Anything else yields fallback.
func ParseColor(s string, fallback Color) Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return colorSet | Color(v)
}

// IsSet reports whether c is a real colour rather than an empty pixel.
func (c Color) IsSet() bool { return c&colorSet != 0 }

// RGB returns the components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex formats the colour as "#RRGGBB".
func (c Color) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// Scale darkens or brightens c by f, clamped to [0, 255] per component.
func (c Color) Scale(f float64) Color {
	if !c.IsSet() {
		return c
	}
	r, g, b := c.RGB()
	return RGB(scale(r, f), scale(g, f), scale(b, f))
}

func scale(v uint8, f float64) uint8 {
	x := float64(v) * f
	switch {
	case x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
