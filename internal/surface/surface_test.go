package surface

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/swatch"
)

var (
	red     = swatch.RGB(255, 0, 0)
	green   = swatch.RGB(0, 255, 0)
	entries = []palette.Entry{
		{Name: "White", Color: swatch.White},
		{Name: "Red", Color: red},
		{Name: "Green", Color: green},
	}
)

func at(img *image.RGBA, x, y int) swatch.Color {
	return swatch.FromColor(img.At(x, y))
}

func TestCanvasStartsCleared(t *testing.T) {
	c := NewCanvas(10, 8, entries, CanvasOptions{})
	if c.Size() != image.Pt(10, 8) {
		t.Fatalf("size %v", c.Size())
	}
	img := c.Snapshot()
	if at(img, 0, 0) != swatch.White || at(img, 9, 7) != swatch.White {
		t.Fatalf("canvas not cleared to white")
	}
	if !c.IsActive() {
		t.Fatalf("new canvas should be active")
	}
	c.Deactivate()
	if c.IsActive() {
		t.Fatalf("canvas still active after Deactivate")
	}
}

func TestCanvasClickStampsDot(t *testing.T) {
	c := NewCanvas(20, 20, entries, CanvasOptions{Brushes: []planner.Brush{{Dot: 4, Line: 1}}})
	if err := c.SelectColor(red); err != nil {
		t.Fatal(err)
	}
	_ = c.PointerDown(10, 10)
	_ = c.PointerUp(10, 10)
	img := c.Snapshot()
	for _, p := range []image.Point{{10, 10}, {9, 9}, {8, 10}, {11, 10}} {
		if got := at(img, p.X, p.Y); got != red {
			t.Fatalf("pixel %v = %v, want red", p, got)
		}
	}
	if got := at(img, 13, 10); got != swatch.White {
		t.Fatalf("dot spilled to %v", got)
	}
}

func TestCanvasDragPaintsLine(t *testing.T) {
	c := NewCanvas(20, 5, entries, CanvasOptions{Brushes: []planner.Brush{{Dot: 9, Line: 1}}})
	_ = c.SelectColor(green)
	_ = c.PointerDown(2, 2)
	_ = c.PointerMove(17, 2)
	_ = c.PointerUp(17, 2)
	img := c.Snapshot()
	for x := 2; x <= 17; x++ {
		if got := at(img, x, 2); got != green {
			t.Fatalf("pixel (%d,2) = %v, want green", x, got)
		}
	}
	// The release after a drag must not stamp a dot.
	if got := at(img, 17, 0); got != swatch.White {
		t.Fatalf("release stamped a dot: %v", got)
	}
}

func TestCanvasEraserAndClear(t *testing.T) {
	c := NewCanvas(6, 6, entries, CanvasOptions{Brushes: []planner.Brush{{Dot: 2, Line: 1}}})
	_ = c.SelectColor(red)
	_ = c.PointerDown(3, 3)
	_ = c.PointerUp(3, 3)
	if at(c.Snapshot(), 3, 3) != red {
		t.Fatalf("dot not painted")
	}
	_ = c.SelectTool("Eraser")
	_ = c.PointerDown(3, 3)
	_ = c.PointerUp(3, 3)
	if at(c.Snapshot(), 3, 3) != swatch.White {
		t.Fatalf("eraser did not restore background")
	}
	_ = c.SelectTool(ToolBrush)
	_ = c.PointerDown(1, 1)
	_ = c.PointerUp(1, 1)
	_ = c.Clear()
	if at(c.Snapshot(), 1, 1) != swatch.White {
		t.Fatalf("clear left paint behind")
	}
}

func TestCanvasFloodFill(t *testing.T) {
	c := NewCanvas(9, 9, entries, CanvasOptions{Brushes: []planner.Brush{{Dot: 1, Line: 1}}})
	_ = c.SelectColor(red)
	// Vertical wall at x=4 splits the canvas.
	_ = c.PointerDown(4, 0)
	_ = c.PointerMove(4, 8)
	_ = c.PointerUp(4, 8)
	_ = c.SelectTool(ToolFill)
	_ = c.SelectColor(green)
	_ = c.PointerDown(1, 1)
	_ = c.PointerUp(1, 1)
	img := c.Snapshot()
	if at(img, 0, 8) != green || at(img, 3, 0) != green {
		t.Fatalf("fill did not cover the left side")
	}
	if at(img, 4, 4) != red {
		t.Fatalf("fill crossed the wall")
	}
	if at(img, 6, 4) != swatch.White {
		t.Fatalf("fill leaked into the right side")
	}
}

func TestCanvasRejectsBadSelections(t *testing.T) {
	c := NewCanvas(4, 4, entries, CanvasOptions{})
	if err := c.SelectColor(swatch.RGB(1, 2, 3)); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
	if err := c.SelectBrush(len(planner.DefaultBrushes)); !errors.Is(err, planner.ErrBrushIndex) {
		t.Fatalf("expected ErrBrushIndex, got %v", err)
	}
	if err := c.SelectTool("spray"); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestCanvasOnChange(t *testing.T) {
	calls := 0
	c := NewCanvas(4, 4, entries, CanvasOptions{OnChange: func() { calls++ }})
	_ = c.SelectColor(red)
	_ = c.Clear()
	_ = c.PointerDown(1, 1)
	_ = c.PointerUp(1, 1)
	if calls != 2 {
		t.Fatalf("OnChange called %d times, want 2", calls)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(entries, 800, 600)
	_ = r.Clear()
	_ = r.SelectTool(ToolBrush)
	_ = r.SelectBrush(1)
	_ = r.SelectColor(red)
	_ = r.PointerDown(1, 2)
	_ = r.PointerMove(3, 4)
	_ = r.PointerUp(3, 4)
	if err := r.SelectColor(swatch.RGB(9, 9, 9)); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
	want := "clear\ntool brush\nbrush 1\ncolor #FF0000\ndown 1,2\nmove 3,4\nup 3,4\n"
	if got := r.Transcript(); got != want {
		t.Fatalf("transcript:\n%s\nwant:\n%s", got, want)
	}
	if n := r.Counts()["up"]; n != 1 {
		t.Fatalf("up count %d", n)
	}
	if !r.IsActive() {
		t.Fatalf("recorder without Live should be active")
	}
	r.Live = func() bool { return false }
	if r.IsActive() {
		t.Fatalf("Live not consulted")
	}
}

func TestRecorderFail(t *testing.T) {
	boom := errors.New("boom")
	r := NewRecorder(entries, 1, 1)
	r.Fail = func(op string) error {
		if op == "move" {
			return boom
		}
		return nil
	}
	if err := r.PointerMove(0, 0); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if strings.Contains(r.Transcript(), "move") {
		t.Fatalf("failed call was recorded")
	}
}

func TestParseTool(t *testing.T) {
	if tool, err := ParseTool(" FILL "); err != nil || tool != ToolFill {
		t.Fatalf("ParseTool = %v, %v", tool, err)
	}
}
