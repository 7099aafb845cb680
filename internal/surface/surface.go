// Package surface describes the drawing surface the bot paints on and
// provides two implementations: a raster Canvas and a call Recorder.
package surface

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/swatch"
)

// Tool is a surface tool name.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
	ToolFill   Tool = "fill"
)

// ErrUnknownColor reports a color that is not on the surface's palette.
var ErrUnknownColor = errors.New("color not on palette")

// ParseTool accepts a tool name in any case.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(strings.ToLower(strings.TrimSpace(s))); t {
	case ToolBrush, ToolEraser, ToolFill:
		return t, nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// Surface is the drawing area of one game session. Every action may fail;
// IsActive reports whether the surface still accepts input.
type Surface interface {
	Palette() []palette.Entry
	Size() image.Point
	SelectTool(t Tool) error
	SelectBrush(index int) error
	SelectColor(c swatch.Color) error
	PointerDown(x, y float64) error
	PointerMove(x, y float64) error
	PointerUp(x, y float64) error
	Clear() error
	IsActive() bool
}
