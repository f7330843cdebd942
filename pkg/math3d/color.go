package math3d

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a linear RGB color with components in [0, 1].
// The 24-bit hex integer 0xRRGGBB is the interchange form.
type Color struct {
	R, G, B float64
}

// RGB creates a Color from normalized components.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// Hex creates a Color from 0xRRGGBB.
func Hex(hex uint32) Color {
	return Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

// ParseHex parses "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Hex(uint32(v)), nil
}

// ColorFromRGBA converts an 8-bit color, ignoring alpha.
func ColorFromRGBA(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff}
}

// Hex returns the 0xRRGGBB form. Components are clamped and rounded.
func (c Color) Hex() uint32 {
	return uint32(channel(c.R))<<16 ^ uint32(channel(c.G))<<8 ^ uint32(channel(c.B))
}

// HexString returns "#rrggbb".
func (c Color) HexString() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// Add returns the component-wise sum.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the component-wise product.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every component by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Lerp interpolates from c to o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{Lerp(c.R, o.R, t), Lerp(c.G, o.G, t), Lerp(c.B, o.B, t)}
}

// RGBA converts to an 8-bit color with the given alpha in [0, 1].
func (c Color) RGBA(alpha float64) color.RGBA {
	return color.RGBA{channel(c.R), channel(c.G), channel(c.B), channel(alpha)}
}

func channel(v float64) uint8 {
	return uint8(math.Round(Clamp(v, 0, 1) * 255))
}
