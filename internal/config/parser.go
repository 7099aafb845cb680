package config

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/sampler"
	"github.com/example/sketchbot/internal/swatch"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section, paletteName string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			paletteName = ""
			if name, ok := strings.CutPrefix(section, "palette."); ok {
				paletteName = name
				if _, exists := cfg.Palettes[name]; !exists {
					cfg.Palettes[name] = nil
				}
			}
			continue
		}

		if paletteName != "" {
			entry, ok, err := palette.ParseEntry(line)
			if err != nil {
				return nil, fmt.Errorf("line %d in section [%s]: %w", lineNo, section, err)
			}
			if ok {
				cfg.Palettes[paletteName] = append(cfg.Palettes[paletteName], entry)
			}
			continue
		}

		key, value, ok := splitKV(line)
		if !ok {
			continue
		}
		switch section {
		case "notify":
			if err := setNotifyField(&cfg.Notify, key, value); err != nil {
				return nil, fmt.Errorf("line %d in section [notify]: %w", lineNo, err)
			}
		case "":
			if err := setRootField(cfg, key, value); err != nil {
				return nil, fmt.Errorf("line %d in root section: %w", lineNo, err)
			}
		}
	}

	return cfg, scanner.Err()
}

// splitKV accepts "key = value" and "Key: value".
func splitKV(line string) (string, string, bool) {
	var parts []string
	if strings.Contains(line, "=") {
		parts = strings.SplitN(line, "=", 2)
	} else if strings.Contains(line, ":") {
		parts = strings.SplitN(line, ":", 2)
	} else {
		return "", "", false
	}
	value := strings.TrimSpace(parts[1])
	if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(parts[0]), value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "palette":
		cfg.Palette = value
	case "draw_mode":
		if _, err := planner.ParseMode(value); err != nil {
			return err
		}
		cfg.DrawMode = value
	case "brush":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid brush index %q", value)
		}
		cfg.Brush = n
	case "delay":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid delay %q", value)
		}
		cfg.Delay = d
	case "fit":
		if _, err := sampler.ParseFitMode(value); err != nil {
			return err
		}
		cfg.Fit = value
	case "interpolation":
		if _, err := sampler.ParseInterpolator(value); err != nil {
			return err
		}
		cfg.Interpolation = value
	case "background":
		if _, err := swatch.Parse(value); err != nil {
			return fmt.Errorf("invalid background: %w", err)
		}
		cfg.Background = value
	case "canvas":
		p, err := ParseSize(value)
		if err != nil {
			return err
		}
		cfg.Canvas = p
	case "listen":
		cfg.Listen = value
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "done":
		n.Done = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

// ParseSize parses "WxH" into a point with both sides at least 1.
func ParseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid size %q, want WxH", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if x < 1 || y < 1 {
		return image.Point{}, fmt.Errorf("invalid size %q: sides must be positive", s)
	}
	return image.Pt(x, y), nil
}
