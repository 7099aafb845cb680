// Package palette holds the fixed set of colors a drawing surface supports
// and resolves arbitrary sampled colors to the nearest member.
package palette

import (
	"errors"
	"fmt"

	"github.com/example/sketchbot/internal/swatch"
)

// ErrEmpty is returned when a palette would contain no usable colors.
var ErrEmpty = errors.New("palette has no colors")

// Entry is one selectable color as reported by the drawing surface.
type Entry struct {
	Name  string       `json:"name" yaml:"name"`
	Color swatch.Color `json:"color" yaml:"color"`
}

// Palette is an ordered, duplicate-free list of colors plus the index used
// to select each one on the surface. It is read-only after New.
type Palette struct {
	entries    []Entry
	index      map[swatch.Color]int
	background swatch.Color
}

// New builds a Palette from entries in declaration order. Duplicate colors
// keep their first occurrence. Transparent entries are rejected because
// transparency means "no paint".
func New(entries []Entry, background swatch.Color) (*Palette, error) {
	p := &Palette{
		index:      make(map[swatch.Color]int, len(entries)),
		background: background,
	}
	for _, e := range entries {
		if e.Color.IsTransparent() {
			return nil, fmt.Errorf("palette entry %q is transparent", e.Name)
		}
		if _, dup := p.index[e.Color]; dup {
			continue
		}
		if e.Name == "" {
			e.Name = e.Color.Hex()
		}
		p.index[e.Color] = len(p.entries)
		p.entries = append(p.entries, e)
	}
	if len(p.entries) == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

// FromColors is a convenience wrapper around New for unnamed colors.
func FromColors(background swatch.Color, colors ...swatch.Color) (*Palette, error) {
	entries := make([]Entry, len(colors))
	for i, c := range colors {
		entries[i] = Entry{Color: c}
	}
	return New(entries, background)
}

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.entries) }

// Colors returns a copy of the colors in declaration order.
func (p *Palette) Colors() []swatch.Color {
	out := make([]swatch.Color, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Color
	}
	return out
}

// Entries returns a copy of the palette entries in declaration order.
func (p *Palette) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Index returns the declaration index of c, which is the token a surface
// uses to select it.
func (p *Palette) Index(c swatch.Color) (int, bool) {
	idx, ok := p.index[c]
	return idx, ok
}

// Name returns the display name of c or an empty string.
func (p *Palette) Name(c swatch.Color) string {
	if idx, ok := p.index[c]; ok {
		return p.entries[idx].Name
	}
	return ""
}

// Background returns the color of an empty canvas.
func (p *Palette) Background() swatch.Color { return p.background }

// IsBackground reports whether painting c would leave the canvas unchanged.
func (p *Palette) IsBackground(c swatch.Color) bool {
	return c == p.background
}

// Skip reports whether a resolved color should produce no stroke.
func (p *Palette) Skip(c swatch.Color) bool {
	return c.IsTransparent() || c == p.background
}
