// Package planner reduces a source image to an ordered list of draw
// primitives using either a dot grid or run-length encoded lines.
package planner

import (
	"errors"
	"fmt"
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/sampler"
	"github.com/example/sketchbot/internal/swatch"
)

var (
	// ErrBrushIndex reports a brush index outside the brush table.
	ErrBrushIndex = errors.New("brush index out of range")
	// ErrMode reports an unknown draw mode.
	ErrMode = errors.New("unknown draw mode")
)

// Mode selects the planning strategy.
type Mode int

const (
	// Lines draws run-length encoded strokes.
	Lines Mode = iota
	// Dots stamps one dot per brush-sized cell.
	Dots
)

func (m Mode) String() string {
	switch m {
	case Lines:
		return "Lines"
	case Dots:
		return "Dots"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText renders the mode name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode accepts "dots" or "lines" in any case; empty selects Lines.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lines", "line":
		return Lines, nil
	case "dots", "dot":
		return Dots, nil
	}
	return Lines, fmt.Errorf("%w %q", ErrMode, s)
}

// Brush is one entry of the surface's brush-size menu. The same menu entry
// paints differently sized marks when clicked and when dragged, so each
// mode has its own diameter.
type Brush struct {
	Dot  int
	Line float64
}

// DefaultBrushes is the brush-size menu of the drawing game.
var DefaultBrushes = []Brush{
	{Dot: 4, Line: 2.7},
	{Dot: 9, Line: 6},
	{Dot: 20, Line: 17},
	{Dot: 40, Line: 37},
}

// Options configures a Planner.
type Options struct {
	Mode       Mode
	BrushIndex int
	// Brushes overrides DefaultBrushes when non-empty.
	Brushes []Brush
	Fit     sampler.FitMode
	// Interpolator defaults to nearest-neighbour.
	Interpolator xdraw.Interpolator
}

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Kind tags a primitive.
type Kind int

const (
	// KindClear wipes the canvas.
	KindClear Kind = iota
	// KindDot is a single click.
	KindDot
	// KindLine is a press, drag and release.
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindClear:
		return "clear"
	case KindDot:
		return "dot"
	case KindLine:
		return "line"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText renders the kind name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Primitive is one immutable draw operation. Dots use Start only.
type Primitive struct {
	Kind     Kind         `json:"kind" yaml:"kind"`
	Start    Point        `json:"start" yaml:"start"`
	End      Point        `json:"end,omitempty" yaml:"end,omitempty"`
	Color    swatch.Color `json:"color" yaml:"color"`
	Diameter float64      `json:"diameter,omitempty" yaml:"diameter,omitempty"`
	Length   float64      `json:"length,omitempty" yaml:"length,omitempty"`
}

// Clear returns the canvas-wipe primitive.
func Clear() Primitive { return Primitive{Kind: KindClear} }

// Plan is the outcome of planning one image.
type Plan struct {
	Mode       Mode        `json:"mode" yaml:"mode"`
	BrushIndex int         `json:"brush" yaml:"brush"`
	Diameter   float64     `json:"diameter" yaml:"diameter"`
	Canvas     image.Point `json:"canvas" yaml:"canvas"`
	Sampled    image.Point `json:"sampled" yaml:"sampled"`
	// Horizontal and Vertical count the candidate line sets; zero in Dots mode.
	Horizontal int         `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	Vertical   int         `json:"vertical,omitempty" yaml:"vertical,omitempty"`
	Primitives []Primitive `json:"primitives" yaml:"primitives"`
}

// Strokes returns the number of non-clear primitives.
func (p *Plan) Strokes() int {
	n := 0
	for _, prim := range p.Primitives {
		if prim.Kind != KindClear {
			n++
		}
	}
	return n
}

// Strategy turns a source image into primitives for a canvas of the given
// size. Strategies do not emit the leading clear.
type Strategy interface {
	Plan(src image.Image, canvas image.Point, plan *Plan) ([]Primitive, error)
}

// Planner binds a palette, a strategy and a brush for one turn.
type Planner struct {
	opts     Options
	brush    Brush
	resolver *palette.Resolver
	strategy Strategy
}

// New validates opts against the palette and brush table before any image
// work happens.
func New(p *palette.Palette, opts Options) (*Planner, error) {
	if p == nil || p.Len() == 0 {
		return nil, palette.ErrEmpty
	}
	brushes := opts.Brushes
	if len(brushes) == 0 {
		brushes = DefaultBrushes
	}
	if opts.BrushIndex < 0 || opts.BrushIndex >= len(brushes) {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrBrushIndex, opts.BrushIndex, len(brushes)-1)
	}
	brush := brushes[opts.BrushIndex]
	pl := &Planner{
		opts:     opts,
		brush:    brush,
		resolver: palette.NewResolver(p),
	}
	switch opts.Mode {
	case Dots:
		if brush.Dot < 1 {
			return nil, fmt.Errorf("%w: dot diameter %d", ErrBrushIndex, brush.Dot)
		}
		pl.strategy = &dotStrategy{resolver: pl.resolver, diameter: brush.Dot, fit: opts.Fit, interp: opts.Interpolator}
	case Lines:
		if brush.Line <= 0 {
			return nil, fmt.Errorf("%w: line diameter %g", ErrBrushIndex, brush.Line)
		}
		pl.strategy = &lineStrategy{resolver: pl.resolver, diameter: brush.Line, fit: opts.Fit, interp: opts.Interpolator}
	default:
		return nil, fmt.Errorf("%w: %v", ErrMode, opts.Mode)
	}
	return pl, nil
}

// Resolver exposes the turn's nearest-color cache.
func (pl *Planner) Resolver() *palette.Resolver { return pl.resolver }

// Diameter returns the brush diameter used by the selected mode.
func (pl *Planner) Diameter() float64 {
	if pl.opts.Mode == Dots {
		return float64(pl.brush.Dot)
	}
	return pl.brush.Line
}

// Plan reduces src to primitives for a canvas of width x height. The first
// primitive is always a clear.
func (pl *Planner) Plan(src image.Image, width, height int) (*Plan, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("canvas %dx%d is empty", width, height)
	}
	plan := &Plan{
		Mode:       pl.opts.Mode,
		BrushIndex: pl.opts.BrushIndex,
		Diameter:   pl.Diameter(),
		Canvas:     image.Pt(width, height),
	}
	prims, err := pl.strategy.Plan(src, plan.Canvas, plan)
	if err != nil {
		return nil, err
	}
	plan.Primitives = make([]Primitive, 0, len(prims)+1)
	plan.Primitives = append(plan.Primitives, Clear())
	plan.Primitives = append(plan.Primitives, prims...)
	return plan, nil
}
