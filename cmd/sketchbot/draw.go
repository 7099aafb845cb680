package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/example/sketchbot/internal/clipboard"
	"github.com/example/sketchbot/internal/config"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/surface"
	"github.com/example/sketchbot/internal/turn"
)

// drawCmd runs a full turn against an offscreen canvas and saves the result.
type drawCmd struct {
	turnFlags
	output      string
	toClipboard bool
	*root
	fs *flag.FlagSet
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	d.register(fs, rootConfig(r), false)
	fs.StringVar(&d.output, "output", "", "output PNG path")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the drawing to the clipboard")
	fs.BoolVar(&d.toClipboard, "to-clip", false, "copy the drawing to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: d}
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	if d.output == "" && !d.toClipboard {
		return nil, errors.New("an output file is required unless -to-clipboard is set")
	}
	return d, nil
}

func rootConfig(r *root) *config.Config {
	if r == nil || r.config == nil {
		return config.New()
	}
	return r.config
}

func (d *drawCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	canvas, sess, pl, err := d.offscreen()
	if err != nil {
		return err
	}
	src, detail, err := d.load(ctx)
	if err != nil {
		return err
	}
	report, err := sess.DrawPrepared(ctx, pl, src)
	if err != nil {
		return fmt.Errorf("failed to draw %s: %w", detail, err)
	}
	rgba := canvas.Snapshot()
	fmt.Fprintf(os.Stderr, "drew %d of %d strokes (%s, %s)\n",
		max(report.Result.Executed-1, 0), report.Plan.Strokes(), report.Plan.Mode, report.Elapsed.Round(time.Millisecond))
	d.root.notifyDone(detail, rgba)

	if d.output != "" {
		if err := savePNG(d.output, rgba); err != nil {
			return err
		}
		saved := d.output
		if abs, err := filepath.Abs(d.output); err == nil {
			saved = abs
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", saved)
		d.root.notifySave(saved)
	}
	if d.toClipboard {
		if err := clipboard.WriteImage(rgba); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		detail := filepath.Base(d.output)
		if d.output == "" {
			detail = "drawing"
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", detail)
		d.root.notifyCopy(detail)
	}
	return nil
}

// offscreen builds a canvas sized from the flags and a session whose
// palette and brush have already been checked.
func (d *drawCmd) offscreen() (*surface.Canvas, *turn.Session, *planner.Planner, error) {
	size, err := d.canvasSize(rootConfig(d.root))
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := d.options(d.root)
	if err != nil {
		return nil, nil, nil, err
	}
	canvas := surface.NewCanvas(size.X, size.Y, d.entries, surface.CanvasOptions{
		Background: opts.Background,
		Brushes:    opts.Brushes,
	})
	sess := turn.NewSession(canvas, opts)
	pl, err := sess.Prepare()
	if err != nil {
		return nil, nil, nil, err
	}
	return canvas, sess, pl, nil
}

func savePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func(out *os.File) {
		err := out.Close()
		if err != nil {
			log.Printf("error closing %q: %v", out.Name(), err)
		}
	}(out)
	return png.Encode(out, img)
}
