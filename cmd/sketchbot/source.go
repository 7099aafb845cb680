package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"time"

	"github.com/example/sketchbot/internal/clipboard"
	"github.com/example/sketchbot/internal/config"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/sampler"
	"github.com/example/sketchbot/internal/swatch"
	"github.com/example/sketchbot/internal/turn"
)

// defaultCanvas is the drawing area of the game page.
var defaultCanvas = image.Pt(800, 600)

// turnFlags are shared by every command that plans or draws an image.
type turnFlags struct {
	file          string
	url           string
	fromClipboard bool
	canvas        string
	fit           string
	interp        string
	background    string
	delay         time.Duration
}

// register adds the flags to fs. Live surfaces default to the configured
// pause between commands; offscreen ones to none.
func (t *turnFlags) register(fs *flag.FlagSet, cfg *config.Config, live bool) {
	if cfg == nil {
		cfg = config.New()
	}
	fs.StringVar(&t.file, "file", "", "input image file")
	fs.StringVar(&t.url, "url", "", "input image URL or data URI")
	fs.BoolVar(&t.fromClipboard, "from-clipboard", false, "read the input image (or a reference to it) from the clipboard")
	fs.BoolVar(&t.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.StringVar(&t.canvas, "canvas", "", "canvas size WxH (default 800x600)")
	fs.StringVar(&t.fit, "fit", cfg.Fit, "how the image maps onto the canvas: fit or fill")
	fs.StringVar(&t.interp, "interp", cfg.Interpolation, "scaling interpolator: nearest, approx-bilinear, bilinear, catmull-rom")
	fs.StringVar(&t.background, "background", cfg.Background, "canvas background color (default white)")
	var delay time.Duration
	if live {
		delay = turn.DefaultDelay
		if cfg.Delay >= 0 {
			delay = cfg.Delay
		}
	}
	fs.DurationVar(&t.delay, "delay", delay, "pause between surface commands")
}

// validate checks that exactly one image source was given.
func (t *turnFlags) validate() error {
	n := 0
	for _, set := range []bool{t.file != "", t.url != "", t.fromClipboard} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return errors.New("one of -file, -url or -from-clipboard is required")
	case n > 1:
		return errors.New("-file, -url and -from-clipboard are mutually exclusive")
	}
	return nil
}

// load reads the selected source image.
func (t *turnFlags) load(ctx context.Context) (image.Image, string, error) {
	switch {
	case t.fromClipboard:
		img, err := clipboard.Source(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return img, "clipboard image", nil
	case t.url != "":
		img, err := sampler.Open(ctx, t.url)
		return img, t.url, err
	default:
		img, err := sampler.Open(ctx, t.file)
		return img, t.file, err
	}
}

func (t *turnFlags) canvasSize(cfg *config.Config) (image.Point, error) {
	if t.canvas != "" {
		return config.ParseSize(t.canvas)
	}
	if cfg.Canvas != (image.Point{}) {
		return cfg.Canvas, nil
	}
	return defaultCanvas, nil
}

// options turns the flags and the root selections into turn options.
func (t *turnFlags) options(r *root) (turn.Options, error) {
	fit, err := sampler.ParseFitMode(t.fit)
	if err != nil {
		return turn.Options{}, err
	}
	interp, err := sampler.ParseInterpolator(t.interp)
	if err != nil {
		return turn.Options{}, err
	}
	bg := swatch.White
	if t.background != "" {
		if bg, err = swatch.Parse(t.background); err != nil {
			return turn.Options{}, fmt.Errorf("background: %w", err)
		}
	}
	delay := t.delay
	if delay == 0 {
		delay = -1
	}
	return turn.Options{
		Mode:         r.mode,
		BrushIndex:   r.brush,
		Brushes:      planner.DefaultBrushes,
		Fit:          fit,
		Interpolator: interp,
		Delay:        delay,
		Background:   bg,
	}, nil
}
