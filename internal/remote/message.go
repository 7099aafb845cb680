package remote

import (
	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/swatch"
)

// Message types exchanged over the socket.
const (
	TypeHello   = "hello"
	TypeState   = "state"
	TypeTurn    = "turn"
	TypeWelcome = "welcome"
	TypeTool    = "tool"
	TypeBrush   = "brush"
	TypeColor   = "color"
	TypePointer = "pointer"
	TypeClear   = "clear"
	TypeDone    = "done"
	TypeError   = "error"
)

// Inbound is any message a game client sends.
type Inbound struct {
	Type string `json:"type"`

	// hello
	Width      int             `json:"width,omitempty"`
	Height     int             `json:"height,omitempty"`
	Palette    []palette.Entry `json:"palette,omitempty"`
	Background *swatch.Color   `json:"background,omitempty"`

	// state
	Active bool `json:"active,omitempty"`

	// turn
	Image string `json:"image,omitempty"`
	Mode  string `json:"mode,omitempty"`
	Brush *int   `json:"brush,omitempty"`
}

type welcomeMsg struct {
	Type    string `json:"type"`
	Session string `json:"session"`
}

type toolMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type brushMsg struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type colorMsg struct {
	Type  string       `json:"type"`
	Color swatch.Color `json:"color"`
	Index int          `json:"index"`
}

type pointerMsg struct {
	Type   string  `json:"type"`
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type clearMsg struct {
	Type string `json:"type"`
}

// Done reports the end of a turn to the client.
type Done struct {
	Type      string `json:"type"`
	Executed  int    `json:"executed"`
	Abandoned int    `json:"abandoned"`
	Completed bool   `json:"completed"`
	Reason    string `json:"reason"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
