package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/surface"
	"github.com/example/sketchbot/internal/turn"
)

// planCmd prints the primitives a turn would replay.
type planCmd struct {
	turnFlags
	format string
	dryRun bool
	stdout io.Writer
	*root
	fs *flag.FlagSet
}

func (p *planCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePlanCmd(args []string, r *root) (*planCmd, error) {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	p := &planCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(p)
	p.register(fs, rootConfig(r), false)
	fs.StringVar(&p.format, "format", "text", "output format: text, yaml or json")
	fs.BoolVar(&p.dryRun, "dry-run", false, "replay the plan on a recording surface and print call counts")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: p}
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	switch p.format {
	case "text", "yaml", "json":
	default:
		return nil, fmt.Errorf("unknown format %q", p.format)
	}
	return p, nil
}

func (p *planCmd) Run() error {
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
	rec := surface.NewRecorder(p.entries, size.X, size.Y)
	sess := turn.NewSession(rec, opts)
	pl, err := sess.Prepare()
	if err != nil {
		return err
	}
	src, detail, err := p.load(ctx)
	if err != nil {
		return err
	}

	if p.dryRun {
		report, err := sess.DrawPrepared(ctx, pl, src)
		if err != nil {
			return fmt.Errorf("failed to replay %s: %w", detail, err)
		}
		return writeCounts(p.stdout, rec.Counts(), report)
	}

	plan, err := sess.PlanPrepared(pl, src)
	if err != nil {
		return fmt.Errorf("failed to plan %s: %w", detail, err)
	}
	return writePlan(p.stdout, p.format, plan)
}

func writePlan(w io.Writer, format string, plan *planner.Plan) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	}
	fmt.Fprintf(w, "mode %s brush %d diameter %g canvas %dx%d sampled %dx%d strokes %d\n",
		plan.Mode, plan.BrushIndex, plan.Diameter, plan.Canvas.X, plan.Canvas.Y,
		plan.Sampled.X, plan.Sampled.Y, plan.Strokes())
	if plan.Mode == planner.Lines {
		fmt.Fprintf(w, "horizontal %d vertical %d\n", plan.Horizontal, plan.Vertical)
	}
	for _, prim := range plan.Primitives {
		switch prim.Kind {
		case planner.KindClear:
			fmt.Fprintln(w, "clear")
		case planner.KindDot:
			fmt.Fprintf(w, "dot %g,%g %s\n", prim.Start.X, prim.Start.Y, prim.Color)
		case planner.KindLine:
			fmt.Fprintf(w, "line %g,%g %g,%g %s %g\n", prim.Start.X, prim.Start.Y,
				prim.End.X, prim.End.Y, prim.Color, prim.Length)
		}
	}
	return nil
}

func writeCounts(w io.Writer, counts map[string]int, report *turn.Report) error {
	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	var b strings.Builder
	for _, op := range ops {
		fmt.Fprintf(&b, "%-6s %d\n", op, counts[op])
	}
	fmt.Fprintf(&b, "commands %d executed %d reason %s\n",
		len(report.Plan.Primitives), report.Result.Executed, report.Result.Reason)
	fmt.Fprintf(&b, "colors cached %d (hits %d, misses %d)\n",
		report.Cache.Size, report.Cache.Hits, report.Cache.Misses)
	_, err := io.WriteString(w, b.String())
	return err
}
