package remote

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/swatch"
	"github.com/example/sketchbot/internal/turn"
)

type outbound struct {
	Type      string
	Session   string
	Name      string
	Index     int
	Color     string
	Action    string
	X, Y      float64
	Executed  int
	Abandoned int
	Completed bool
	Reason    string
	Message   string
}

var rgbw = []palette.Entry{
	{Name: "White", Color: swatch.White},
	{Name: "Red", Color: swatch.RGB(255, 0, 0)},
	{Name: "Green", Color: swatch.RGB(0, 255, 0)},
	{Name: "Blue", Color: swatch.RGB(0, 0, 255)},
}

func quadURI(t *testing.T) string {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	src.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	src.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func dial(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()
	srv := NewServer(turn.Options{
		Mode:    planner.Dots,
		Brushes: []planner.Brush{{Dot: 2, Line: 2}},
		Delay:   -1,
	})
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	var welcome outbound
	if err := ws.ReadJSON(&welcome); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if welcome.Type != TypeWelcome || welcome.Session == "" {
		t.Fatalf("unexpected welcome %+v", welcome)
	}
	return srv, ws
}

func hello(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	if err := ws.WriteJSON(Inbound{Type: TypeHello, Width: 4, Height: 4, Palette: rgbw}); err != nil {
		t.Fatal(err)
	}
}

// readUntil collects messages up to and including the first of type stop.
func readUntil(t *testing.T, ws *websocket.Conn, stop string) []outbound {
	t.Helper()
	var out []outbound
	for {
		_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		var m outbound
		if err := ws.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v (after %d messages)", err, len(out))
		}
		out = append(out, m)
		if m.Type == stop {
			return out
		}
	}
}

func TestServerDrawsTurn(t *testing.T) {
	srv, ws := dial(t)
	if n := srv.Sessions(); n != 1 {
		t.Fatalf("sessions = %d, want 1", n)
	}
	hello(t, ws)
	if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: quadURI(t)}); err != nil {
		t.Fatal(err)
	}
	msgs := readUntil(t, ws, TypeDone)
	counts := map[string]int{}
	var colors []string
	for _, m := range msgs {
		key := m.Type
		if m.Type == TypePointer {
			key += ":" + m.Action
		}
		if m.Type == TypeColor {
			colors = append(colors, m.Color)
		}
		counts[key]++
	}
	if counts[TypeClear] != 1 || counts["pointer:down"] != 3 || counts["pointer:up"] != 3 {
		t.Fatalf("unexpected message counts %v", counts)
	}
	if got := strings.Join(colors, ","); got != "#FF0000,#0000FF,#00FF00" {
		t.Fatalf("colors %s", got)
	}
	done := msgs[len(msgs)-1]
	if !done.Completed || done.Executed != 4 || done.Reason != "drained" {
		t.Fatalf("unexpected done %+v", done)
	}
}

func TestServerColorIndex(t *testing.T) {
	_, ws := dial(t)
	hello(t, ws)
	if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: quadURI(t)}); err != nil {
		t.Fatal(err)
	}
	for _, m := range readUntil(t, ws, TypeDone) {
		if m.Type == TypeColor && m.Color == "#0000FF" && m.Index != 3 {
			t.Fatalf("blue selected with index %d, want 3", m.Index)
		}
	}
}

func TestServerInactiveSurfaceAbandons(t *testing.T) {
	_, ws := dial(t)
	hello(t, ws)
	if err := ws.WriteJSON(Inbound{Type: TypeState, Active: false}); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: quadURI(t)}); err != nil {
		t.Fatal(err)
	}
	msgs := readUntil(t, ws, TypeDone)
	if len(msgs) != 1 {
		t.Fatalf("inactive surface received draw calls: %+v", msgs)
	}
	done := msgs[0]
	if done.Completed || done.Executed != 0 || done.Abandoned != 4 || done.Reason != "not-live" {
		t.Fatalf("unexpected done %+v", done)
	}
}

func TestServerRejectsTurnBeforeHello(t *testing.T) {
	_, ws := dial(t)
	if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: quadURI(t)}); err != nil {
		t.Fatal(err)
	}
	msgs := readUntil(t, ws, TypeError)
	if !strings.Contains(msgs[len(msgs)-1].Message, "hello") {
		t.Fatalf("unexpected error %+v", msgs[len(msgs)-1])
	}
}

func TestServerReportsBadTurn(t *testing.T) {
	_, ws := dial(t)
	hello(t, ws)
	if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: quadURI(t), Mode: "spiral"}); err != nil {
		t.Fatal(err)
	}
	msgs := readUntil(t, ws, TypeError)
	if !strings.Contains(msgs[len(msgs)-1].Message, "spiral") {
		t.Fatalf("unexpected error %+v", msgs[len(msgs)-1])
	}

	if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: "data:image/png;base64,bm9wZQ=="}); err != nil {
		t.Fatal(err)
	}
	msgs = readUntil(t, ws, TypeError)
	if !strings.Contains(msgs[len(msgs)-1].Message, "decode") {
		t.Fatalf("unexpected error %+v", msgs[len(msgs)-1])
	}
}

func TestServerRejectsBadHello(t *testing.T) {
	hole := []palette.Entry{{Name: "Clear", Color: swatch.Color{}}}
	tests := []struct {
		name    string
		palette []palette.Entry
		want    string
	}{
		{"empty", nil, "no colors"},
		{"transparent entry", append(append([]palette.Entry(nil), rgbw...), hole...), "transparent"},
		{"only transparent", hole, "transparent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ws := dial(t)
			if err := ws.WriteJSON(Inbound{Type: TypeHello, Width: 4, Height: 4, Palette: tt.palette}); err != nil {
				t.Fatal(err)
			}
			msgs := readUntil(t, ws, TypeError)
			if !strings.Contains(msgs[0].Message, tt.want) {
				t.Fatalf("unexpected error %+v", msgs[0])
			}
			if err := ws.WriteJSON(Inbound{Type: TypeTurn, Image: quadURI(t)}); err != nil {
				t.Fatal(err)
			}
			msgs = readUntil(t, ws, TypeError)
			if !strings.Contains(msgs[len(msgs)-1].Message, "turn before hello") {
				t.Fatalf("rejected hello left the connection ready: %+v", msgs)
			}
		})
	}
}
