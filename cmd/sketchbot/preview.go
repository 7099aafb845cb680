package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"

	"github.com/example/sketchbot/internal/appstate"
	"github.com/example/sketchbot/internal/surface"
	"github.com/example/sketchbot/internal/turn"
)

// previewCmd replays a turn on a canvas shown in a window. Closing the
// window deactivates the canvas, which stops the replay.
type previewCmd struct {
	turnFlags
	output string
	*root
	fs *flag.FlagSet
}

func (p *previewCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePreviewCmd(args []string, r *root) (*previewCmd, error) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	c := &previewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	c.register(fs, rootConfig(r), true)
	fs.StringVar(&c.output, "output", "", "save the canvas as PNG when the window closes")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *previewCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	size, err := p.canvasSize(rootConfig(p.root))
	if err != nil {
		return err
	}
	opts, err := p.options(p.root)
	if err != nil {
		return err
	}

	var canvas *surface.Canvas
	st := appstate.New(
		appstate.WithTitle(p.program),
		appstate.WithFrame(func() *image.RGBA { return canvas.Snapshot() }),
		appstate.WithOnClose(func() { canvas.Deactivate() }),
	)
	canvas = surface.NewCanvas(size.X, size.Y, p.entries, surface.CanvasOptions{
		Background: opts.Background,
		Brushes:    opts.Brushes,
		OnChange:   st.NotifyImageChanged,
	})
	sess := turn.NewSession(canvas, opts)
	pl, err := sess.Prepare()
	if err != nil {
		return err
	}
	src, detail, err := p.load(ctx)
	if err != nil {
		return err
	}
	st.SetStatus("drawing " + detail)

	type outcome struct {
		report *turn.Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := sess.DrawPrepared(ctx, pl, src)
		if err != nil {
			st.SetStatus("failed: " + err.Error())
		} else {
			st.SetStatus(fmt.Sprintf("%s: %d/%d strokes", report.Result.Reason,
				max(report.Result.Executed-1, 0), report.Plan.Strokes()))
		}
		done <- outcome{report, err}
	}()

	st.Run()
	canvas.Deactivate()
	res := <-done
	if res.err != nil {
		return fmt.Errorf("failed to draw %s: %w", detail, res.err)
	}
	if res.report.Completed {
		p.root.notifyDone(detail, canvas.Snapshot())
	}
	if p.output != "" {
		if err := savePNG(p.output, canvas.Snapshot()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", p.output)
		p.root.notifySave(p.output)
	}
	return nil
}
