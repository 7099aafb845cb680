package remote

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/surface"
	"github.com/example/sketchbot/internal/swatch"
)

// ErrClosed is returned by surface calls after the socket has gone away.
var ErrClosed = errors.New("remote surface closed")

const writeWait = 10 * time.Second

// Conn is one connected game client. It implements surface.Surface by
// translating every call into a JSON message.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	mu         sync.RWMutex
	entries    []palette.Entry
	size       image.Point
	background swatch.Color
	ready      bool

	active atomic.Bool
	closed atomic.Bool
}

var _ surface.Surface = (*Conn)(nil)

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// hello records the canvas a client describes. The palette must be
// usable before the connection becomes ready.
func (c *Conn) hello(m Inbound) error {
	if m.Width < 1 || m.Height < 1 {
		return fmt.Errorf("hello: canvas %dx%d is empty", m.Width, m.Height)
	}
	bg := swatch.White
	if m.Background != nil {
		bg = *m.Background
	}
	if _, err := palette.New(m.Palette, bg); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	c.mu.Lock()
	c.entries = append([]palette.Entry(nil), m.Palette...)
	c.size = image.Pt(m.Width, m.Height)
	c.background = bg
	c.ready = true
	c.mu.Unlock()
	c.active.Store(true)
	return nil
}

// Ready reports whether the client has described its canvas.
func (c *Conn) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Background returns the color reported in hello.
func (c *Conn) Background() swatch.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.background
}

// Palette returns the entries reported in hello.
func (c *Conn) Palette() []palette.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]palette.Entry(nil), c.entries...)
}

// Size returns the canvas size reported in hello.
func (c *Conn) Size() image.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// IsActive reports whether the client still lets the bot draw.
func (c *Conn) IsActive() bool {
	return c.active.Load() && !c.closed.Load()
}

func (c *Conn) send(v any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.ws.WriteJSON(v); err != nil {
		c.closed.Store(true)
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil
}

// SelectTool sends a tool frame.
func (c *Conn) SelectTool(t surface.Tool) error {
	tool, err := surface.ParseTool(string(t))
	if err != nil {
		return err
	}
	return c.send(toolMsg{Type: TypeTool, Name: string(tool)})
}

// SelectBrush sends a brush frame.
func (c *Conn) SelectBrush(index int) error {
	return c.send(brushMsg{Type: TypeBrush, Index: index})
}

// SelectColor sends a color frame carrying the palette index of col.
func (c *Conn) SelectColor(col swatch.Color) error {
	c.mu.RLock()
	idx := -1
	for i, e := range c.entries {
		if e.Color == col {
			idx = i
			break
		}
	}
	c.mu.RUnlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", surface.ErrUnknownColor, col)
	}
	return c.send(colorMsg{Type: TypeColor, Color: col, Index: idx})
}

// PointerDown sends a pointer frame with action down.
func (c *Conn) PointerDown(x, y float64) error {
	return c.send(pointerMsg{Type: TypePointer, Action: "down", X: x, Y: y})
}

// PointerMove sends a pointer frame with action move.
func (c *Conn) PointerMove(x, y float64) error {
	return c.send(pointerMsg{Type: TypePointer, Action: "move", X: x, Y: y})
}

// PointerUp sends a pointer frame with action up.
func (c *Conn) PointerUp(x, y float64) error {
	return c.send(pointerMsg{Type: TypePointer, Action: "up", X: x, Y: y})
}

// Clear sends a clear frame.
func (c *Conn) Clear() error {
	return c.send(clearMsg{Type: TypeClear})
}

func (c *Conn) sendError(err error) {
	_ = c.send(errorMsg{Type: TypeError, Message: err.Error()})
}
