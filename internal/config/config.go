package config

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	"github.com/example/sketchbot/internal/palette"
)

// Notify holds notification settings.
type Notify struct {
	Done bool
	Save bool
	Copy bool
}

// Config holds the application configuration. Zero strings, a negative
// Brush or Delay and an empty Canvas mean "not set".
type Config struct {
	Palette       string
	DrawMode      string
	Brush         int
	Delay         time.Duration
	Fit           string
	Interpolation string
	Background    string
	Canvas        image.Point
	Listen        string
	Notify        Notify
	Palettes      map[string][]palette.Entry
}

// New creates a new Config with nothing set.
func New() *Config {
	return &Config{
		Brush:    -1,
		Delay:    -1,
		Palettes: make(map[string][]palette.Entry),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := []struct{ key, value string }{
		{"palette", c.Palette},
		{"draw_mode", c.DrawMode},
		{"fit", c.Fit},
		{"interpolation", c.Interpolation},
		{"background", c.Background},
		{"listen", c.Listen},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	if c.Brush >= 0 {
		fmt.Fprintf(&sb, "brush = %d\n", c.Brush)
	}
	if c.Delay >= 0 {
		fmt.Fprintf(&sb, "delay = %s\n", c.Delay)
	}
	if c.Canvas != (image.Point{}) {
		fmt.Fprintf(&sb, "canvas = %dx%d\n", c.Canvas.X, c.Canvas.Y)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "done = %v\n", c.Notify.Done)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Palettes))
	for name := range c.Palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "[palette.%s]\n", name)
		_ = palette.Format(&sb, c.Palettes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}
