// Package swatch defines the 8-bit RGBA color value used throughout the
// stroke compiler together with the perceptual distance used to pick the
// nearest available palette color.
package swatch

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is an immutable non-premultiplied RGBA value. Two colors are equal
// iff all four channels match.
type Color struct {
	R, G, B, A uint8
}

// Transparent is the canonical "no paint" sentinel. Every color with a zero
// alpha channel canonicalizes to it.
var Transparent = Color{}

// Common colors.
var (
	White = Color{255, 255, 255, 255}
	Black = Color{0, 0, 0, 255}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// FromColor converts any color.Color into a non-premultiplied Color.
func FromColor(c color.Color) Color {
	if c == nil {
		return Transparent
	}
	if s, ok := c.(Color); ok {
		return s
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Equal reports whether c and o match on every channel.
func (c Color) Equal(o Color) bool {
	return c == o
}

// IsTransparent reports whether c carries no paint at all.
func (c Color) IsTransparent() bool {
	return c.A == 0
}

// Canonical maps every fully transparent color to Transparent and returns
// other colors unchanged.
func Canonical(c Color) Color {
	if c.A == 0 {
		return Transparent
	}
	return c
}

// Equal reports whether a and b match on every channel.
func Equal(a, b Color) bool {
	return a == b
}

// Distance returns the "redmean" weighted Euclidean distance between the RGB
// parts of a and b. The red and blue terms are weighted by the mean red
// channel and shifted right by 8 after truncation to an integer; alpha is
// ignored.
func Distance(a, b Color) float64 {
	redMean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(int(a.R) - int(b.R))
	dg := float64(int(a.G) - int(b.G))
	db := float64(int(a.B) - int(b.B))
	rTerm := int64((512+redMean)*dr*dr) >> 8
	bTerm := int64((767-redMean)*db*db) >> 8
	return math.Sqrt(float64(rTerm) + 4*dg*dg + float64(bTerm))
}

// Hex renders c as #RRGGBB, or #RRGGBBAA when c is not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// MarshalText renders the color in hex form.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts anything Parse accepts.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse reads #RGB, #RRGGBB, #RRGGBBAA or an SVG color name.
func Parse(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Color{}, fmt.Errorf("color cannot be empty")
	}
	if name == "transparent" {
		return Transparent, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return Color{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	if !strings.HasPrefix(name, "#") {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	hex := name[1:]
	switch len(hex) {
	case 3:
		val, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
		return Color{
			R: uint8(val>>8&0xF) * 17,
			G: uint8(val>>4&0xF) * 17,
			B: uint8(val&0xF) * 17,
			A: 255,
		}, nil
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
		return Color{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
		return Color{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return Color{}, fmt.Errorf("invalid hex length in %q", s)
}
