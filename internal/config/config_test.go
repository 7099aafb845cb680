package config

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/sketchbot/internal/swatch"
)

func TestParse(t *testing.T) {
	input := `
palette = skribbl
draw_mode = Dots
brush = 2
delay = 25ms
canvas = 640x480
background: white
listen = :8765

[notify]
done = true
save = false
copy = true

[palette.sunset]
// warm colors first
Orange: #FF8800
Purple = "#552288"
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Palette != "skribbl" || cfg.DrawMode != "Dots" {
		t.Errorf("unexpected palette/mode %q/%q", cfg.Palette, cfg.DrawMode)
	}
	if cfg.Brush != 2 || cfg.Delay != 25*time.Millisecond {
		t.Errorf("unexpected brush/delay %d/%v", cfg.Brush, cfg.Delay)
	}
	if cfg.Canvas != image.Pt(640, 480) {
		t.Errorf("unexpected canvas %v", cfg.Canvas)
	}
	if cfg.Background != "white" || cfg.Listen != ":8765" {
		t.Errorf("unexpected background/listen %q/%q", cfg.Background, cfg.Listen)
	}
	if !cfg.Notify.Done || cfg.Notify.Save || !cfg.Notify.Copy {
		t.Errorf("unexpected notify %+v", cfg.Notify)
	}

	sunset, ok := cfg.Palettes["sunset"]
	if !ok {
		t.Fatal("Expected palette 'sunset' to be loaded")
	}
	if len(sunset) != 2 || sunset[0].Name != "Orange" || sunset[1].Color != swatch.RGB(0x55, 0x22, 0x88) {
		t.Errorf("unexpected palette entries %+v", sunset)
	}
}

func TestParseDefaultsUnset(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Brush != -1 || cfg.Delay != -1 || cfg.Canvas != (image.Point{}) {
		t.Errorf("empty config should leave values unset: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"draw_mode = spiral":        "line 1",
		"brush = -2":                "brush",
		"delay = soon":              "delay",
		"canvas = 800":              "WxH",
		"fit = stretch":             "fit",
		"\n[notify]\ndone = maybe":  "line 3",
		"[palette.x]\nRed: #GG0000": "palette.x",
		"interpolation = lanczos":   "interpolation",
		"background = #12":          "background",
	}
	for input, want := range cases {
		_, err := Parse(strings.NewReader(input))
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
			continue
		}
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Parse(%q) error %q does not mention %q", input, err, want)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `palette = classic
draw_mode = lines
brush = 0
delay = 10ms
fit = fill
interpolation = nearest
canvas = 800x600

[notify]
done = true
save = true
copy = false

[palette.custom]
Ink: #101010
Paper: #F0F0F0
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.Palette != cfg2.Palette || cfg.DrawMode != cfg2.DrawMode || cfg.Fit != cfg2.Fit {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Brush != cfg2.Brush || cfg.Delay != cfg2.Delay || cfg.Canvas != cfg2.Canvas {
		t.Errorf("numeric mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	p1, p2 := cfg.Palettes["custom"], cfg2.Palettes["custom"]
	if len(p1) != 2 || len(p2) != 2 || p1[0] != p2[0] || p1[1] != p2[1] {
		t.Errorf("palette mismatch: %+v vs %+v", p1, p2)
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "sketchbot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	fallback := filepath.Join(dir, "sketchbot.rc")
	if err := os.WriteFile(fallback, []byte("palette = grayscale\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader("v1.0.0", "")
	if got := l.GetConfigPath(); got != fallback {
		t.Fatalf("GetConfigPath = %q, want %q", got, fallback)
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Palette != "grayscale" {
		t.Fatalf("loaded palette %q", cfg.Palette)
	}

	primary := filepath.Join(dir, "config.rc")
	if err := os.WriteFile(primary, []byte("palette = classic\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := l.GetConfigPath(); got != primary {
		t.Fatalf("config.rc should win over sketchbot.rc, got %q", got)
	}

	override := filepath.Join(t.TempDir(), "custom.rc")
	if err := os.WriteFile(override, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := NewLoader("v1.0.0", override).GetConfigPath(); got != override {
		t.Fatalf("override ignored, got %q", got)
	}
}

func TestLoaderNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	l := NewLoader("v1.0.0", "")
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Palette != "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if !strings.HasSuffix(l.SavePath(), filepath.Join("sketchbot", "config.rc")) {
		t.Fatalf("unexpected save path %q", l.SavePath())
	}
}
