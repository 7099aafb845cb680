package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
	"sync/atomic"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/swatch"
)

// CanvasOptions configures a Canvas.
type CanvasOptions struct {
	// Background defaults to white.
	Background swatch.Color
	// Brushes defaults to planner.DefaultBrushes.
	Brushes []planner.Brush
	// OnChange is called after every action that changed pixels.
	OnChange func()
}

// Canvas is an offscreen raster Surface. A press and release without a
// move stamps a dot at the brush's dot diameter; a drag paints a stroke at
// its line diameter. Canvas is safe for concurrent readers.
type Canvas struct {
	mu         sync.Mutex
	img        *image.RGBA
	entries    []palette.Entry
	background swatch.Color
	brushes    []planner.Brush
	onChange   func()

	tool  Tool
	brush int
	color swatch.Color
	down  bool
	moved bool
	lastX float64
	lastY float64

	inactive atomic.Bool
}

// NewCanvas returns a cleared canvas offering entries as its palette.
func NewCanvas(width, height int, entries []palette.Entry, opts CanvasOptions) *Canvas {
	if opts.Background == (swatch.Color{}) {
		opts.Background = swatch.White
	}
	if len(opts.Brushes) == 0 {
		opts.Brushes = planner.DefaultBrushes
	}
	c := &Canvas{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		entries:    append([]palette.Entry(nil), entries...),
		background: opts.Background,
		brushes:    opts.Brushes,
		onChange:   opts.OnChange,
		tool:       ToolBrush,
		color:      swatch.Black,
	}
	c.fillBackground()
	return c
}

// Palette returns a copy of the canvas palette.
func (c *Canvas) Palette() []palette.Entry {
	return append([]palette.Entry(nil), c.entries...)
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() image.Point { return c.img.Rect.Size() }

// IsActive reports false once Deactivate has been called.
func (c *Canvas) IsActive() bool { return !c.inactive.Load() }

// Deactivate stops the canvas from reporting itself active.
func (c *Canvas) Deactivate() { c.inactive.Store(true) }

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}

// SelectTool switches between brush, fill and eraser.
func (c *Canvas) SelectTool(t Tool) error {
	tool, err := ParseTool(string(t))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.tool = tool
	c.mu.Unlock()
	return nil
}

// SelectBrush picks a brush by index into the canvas brush table.
func (c *Canvas) SelectBrush(index int) error {
	if index < 0 || index >= len(c.brushes) {
		return fmt.Errorf("%w: %d", planner.ErrBrushIndex, index)
	}
	c.mu.Lock()
	c.brush = index
	c.mu.Unlock()
	return nil
}

// SelectColor sets the paint color. Only palette colors are accepted.
func (c *Canvas) SelectColor(col swatch.Color) error {
	for _, e := range c.entries {
		if e.Color == col {
			c.mu.Lock()
			c.color = col
			c.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownColor, col)
}

// PointerDown starts a stroke, or flood fills at (x, y) with the fill tool.
func (c *Canvas) PointerDown(x, y float64) error {
	c.mu.Lock()
	c.down, c.moved = true, false
	c.lastX, c.lastY = x, y
	changed := false
	if c.tool == ToolFill {
		changed = floodFill(c.img, int(math.Floor(x)), int(math.Floor(y)), c.color)
	}
	c.mu.Unlock()
	if changed {
		c.changed()
	}
	return nil
}

// PointerMove extends the current stroke to (x, y).
func (c *Canvas) PointerMove(x, y float64) error {
	c.mu.Lock()
	if !c.down || c.tool == ToolFill {
		c.mu.Unlock()
		return nil
	}
	drawStroke(c.img, c.lastX, c.lastY, x, y, c.brushes[c.brush].Line, c.paint())
	c.moved = true
	c.lastX, c.lastY = x, y
	c.mu.Unlock()
	c.changed()
	return nil
}

// PointerUp ends the stroke. A press without movement stamps a dot.
func (c *Canvas) PointerUp(x, y float64) error {
	c.mu.Lock()
	if !c.down {
		c.mu.Unlock()
		return nil
	}
	c.down = false
	if c.moved || c.tool == ToolFill {
		c.mu.Unlock()
		return nil
	}
	drawDisc(c.img, x, y, float64(c.brushes[c.brush].Dot), c.paint())
	c.mu.Unlock()
	c.changed()
	return nil
}

// Clear repaints the whole canvas with the background.
func (c *Canvas) Clear() error {
	c.mu.Lock()
	c.fillBackground()
	c.mu.Unlock()
	c.changed()
	return nil
}

// paint returns the color the current tool lays down. Callers hold mu.
func (c *Canvas) paint() color.Color {
	if c.tool == ToolEraser {
		return c.background
	}
	return c.color
}

func (c *Canvas) fillBackground() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
}

func (c *Canvas) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// drawDisc fills every pixel whose center lies within diameter/2 of
// (cx, cy). The pixel under the center is always painted.
func drawDisc(img *image.RGBA, cx, cy, diameter float64, col color.Color) {
	r := diameter / 2
	b := img.Bounds()
	if p := image.Pt(int(math.Floor(cx)), int(math.Floor(cy))); p.In(b) {
		img.Set(p.X, p.Y, col)
	}
	for py := int(math.Floor(cy - r)); py <= int(math.Ceil(cy+r)); py++ {
		for px := int(math.Floor(cx - r)); px <= int(math.Ceil(cx+r)); px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= r*r && image.Pt(px, py).In(b) {
				img.Set(px, py, col)
			}
		}
	}
}

// drawStroke walks the Bresenham line between the two points and stamps a
// disc at every step.
func drawStroke(img *image.RGBA, fx0, fy0, fx1, fy1, diameter float64, col color.Color) {
	x0, y0 := int(math.Floor(fx0)), int(math.Floor(fy0))
	x1, y1 := int(math.Floor(fx1)), int(math.Floor(fy1))
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		drawDisc(img, float64(x0)+0.5, float64(y0)+0.5, diameter, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// floodFill replaces the 4-connected region of the color at (x, y) with
// col. It reports whether any pixel changed.
func floodFill(img *image.RGBA, x, y int, col swatch.Color) bool {
	b := img.Bounds()
	if !image.Pt(x, y).In(b) {
		return false
	}
	target := img.RGBAAt(x, y)
	repl := color.RGBAModel.Convert(col).(color.RGBA)
	if target == repl {
		return false
	}
	stack := []image.Point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(b) || img.RGBAAt(p.X, p.Y) != target {
			continue
		}
		img.SetRGBA(p.X, p.Y, repl)
		stack = append(stack,
			image.Pt(p.X+1, p.Y), image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1), image.Pt(p.X, p.Y-1))
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
