package surface

import (
	"fmt"
	"image"
	"strings"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/swatch"
)

// Call is one recorded surface action.
type Call struct {
	Op    string
	Tool  Tool
	Index int
	Color swatch.Color
	X, Y  float64
}

// String renders the call in the compact form used by tests and logs.
func (c Call) String() string {
	switch c.Op {
	case "tool":
		return "tool " + string(c.Tool)
	case "brush":
		return fmt.Sprintf("brush %d", c.Index)
	case "color":
		return "color " + c.Color.Hex()
	case "down", "move", "up":
		return fmt.Sprintf("%s %g,%g", c.Op, c.X, c.Y)
	}
	return c.Op
}

// Recorder is an in-memory Surface that records every call.
type Recorder struct {
	Entries []palette.Entry
	Width   int
	Height  int
	// Live, when set, answers IsActive. A nil Live is always active.
	Live func() bool
	// Fail, when set, is consulted before recording each call; a non-nil
	// error is returned and the call is not recorded.
	Fail  func(op string) error
	Calls []Call
}

// NewRecorder returns an always-active recorder of the given size.
func NewRecorder(entries []palette.Entry, width, height int) *Recorder {
	return &Recorder{Entries: entries, Width: width, Height: height}
}

// Palette returns a copy of Entries.
func (r *Recorder) Palette() []palette.Entry {
	return append([]palette.Entry(nil), r.Entries...)
}

// Size returns Width by Height.
func (r *Recorder) Size() image.Point { return image.Pt(r.Width, r.Height) }

// IsActive consults Live.
func (r *Recorder) IsActive() bool {
	if r.Live == nil {
		return true
	}
	return r.Live()
}

func (r *Recorder) record(c Call) error {
	if r.Fail != nil {
		if err := r.Fail(c.Op); err != nil {
			return err
		}
	}
	r.Calls = append(r.Calls, c)
	return nil
}

// SelectTool records a tool call.
func (r *Recorder) SelectTool(t Tool) error { return r.record(Call{Op: "tool", Tool: t}) }

// SelectBrush records a brush call.
func (r *Recorder) SelectBrush(index int) error { return r.record(Call{Op: "brush", Index: index}) }

// SelectColor records a color call, or fails with ErrUnknownColor when c
// is not one of Entries.
func (r *Recorder) SelectColor(c swatch.Color) error {
	for _, e := range r.Entries {
		if e.Color == c {
			return r.record(Call{Op: "color", Color: c})
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownColor, c)
}

// PointerDown records a down call.
func (r *Recorder) PointerDown(x, y float64) error { return r.record(Call{Op: "down", X: x, Y: y}) }

// PointerMove records a move call.
func (r *Recorder) PointerMove(x, y float64) error { return r.record(Call{Op: "move", X: x, Y: y}) }

// PointerUp records an up call.
func (r *Recorder) PointerUp(x, y float64) error { return r.record(Call{Op: "up", X: x, Y: y}) }

// Clear records a clear call.
func (r *Recorder) Clear() error { return r.record(Call{Op: "clear"}) }

// Counts tallies recorded calls by operation.
func (r *Recorder) Counts() map[string]int {
	out := make(map[string]int)
	for _, c := range r.Calls {
		out[c.Op]++
	}
	return out
}

// Transcript renders the recorded calls one per line.
func (r *Recorder) Transcript() string {
	var b strings.Builder
	for _, c := range r.Calls {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
