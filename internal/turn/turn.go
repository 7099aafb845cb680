// Package turn runs one drawing turn against a surface: it snapshots the
// surface palette, plans the image, binds each primitive to a surface
// command and replays them through a scheduler.
package turn

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/example/sketchbot/internal/logging"
	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/sampler"
	"github.com/example/sketchbot/internal/scheduler"
	"github.com/example/sketchbot/internal/surface"
	"github.com/example/sketchbot/internal/swatch"
)

// DefaultDelay is the pause between two surface commands.
const DefaultDelay = 10 * time.Millisecond

// Options tunes every turn of a session.
type Options struct {
	Mode         planner.Mode
	BrushIndex   int
	Brushes      []planner.Brush
	Fit          sampler.FitMode
	Interpolator xdraw.Interpolator
	// Delay between commands. Negative means none; zero selects DefaultDelay.
	Delay time.Duration
	// Background is the color a cleared surface shows. Defaults to white.
	Background swatch.Color
}

// Report describes a finished turn.
type Report struct {
	Session   uuid.UUID
	Plan      *planner.Plan
	Result    scheduler.Result
	Cache     palette.Stats
	Elapsed   time.Duration
	Completed bool
}

// Session owns the scheduler for one surface. Turns on a session must not
// overlap.
type Session struct {
	ID      uuid.UUID
	surface surface.Surface
	opts    Options
	sched   *scheduler.Scheduler
}

// NewSession binds a fresh session to s.
func NewSession(s surface.Surface, opts Options) *Session {
	return &Session{
		ID:      uuid.New(),
		surface: s,
		opts:    normalize(opts),
		sched:   scheduler.New(),
	}
}

func normalize(opts Options) Options {
	if opts.Background == (swatch.Color{}) {
		opts.Background = swatch.White
	}
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	return opts
}

// SetOptions replaces the options used by later turns.
func (s *Session) SetOptions(opts Options) { s.opts = normalize(opts) }

// Surface returns the bound surface.
func (s *Session) Surface() surface.Surface { return s.surface }

// Options returns the session options.
func (s *Session) Options() Options { return s.opts }

// DrawSource validates the turn configuration, then loads ref with
// sampler.Open and draws it. A bad palette or brush never reaches the
// network.
func (s *Session) DrawSource(ctx context.Context, ref string) (*Report, error) {
	pl, err := s.Prepare()
	if err != nil {
		return nil, err
	}
	img, err := sampler.Open(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return s.draw(ctx, pl, img)
}

// Prepare snapshots the surface palette and builds the turn's planner. It
// fails with palette.ErrEmpty or planner.ErrBrushIndex before any image
// work.
func (s *Session) Prepare() (*planner.Planner, error) {
	p, err := palette.New(s.surface.Palette(), s.opts.Background)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	pl, err := planner.New(p, planner.Options{
		Mode:         s.opts.Mode,
		BrushIndex:   s.opts.BrushIndex,
		Brushes:      s.opts.Brushes,
		Fit:          s.opts.Fit,
		Interpolator: s.opts.Interpolator,
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return pl, nil
}

// Plan builds the turn's palette and plan without touching the surface.
func (s *Session) Plan(img image.Image) (*planner.Plan, *planner.Planner, error) {
	pl, err := s.Prepare()
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.planWith(pl, img)
	if err != nil {
		return nil, nil, err
	}
	return plan, pl, nil
}

// PlanPrepared plans img with a planner from Prepare.
func (s *Session) PlanPrepared(pl *planner.Planner, img image.Image) (*planner.Plan, error) {
	return s.planWith(pl, img)
}

func (s *Session) planWith(pl *planner.Planner, img image.Image) (*planner.Plan, error) {
	size := s.surface.Size()
	plan, err := pl.Plan(img, size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return plan, nil
}

// Draw plans img and replays it on the surface. A surface that goes
// inactive mid-turn ends the turn early without an error.
func (s *Session) Draw(ctx context.Context, img image.Image) (*Report, error) {
	pl, err := s.Prepare()
	if err != nil {
		return nil, err
	}
	return s.draw(ctx, pl, img)
}

// DrawPrepared replays img with a planner from Prepare. Callers that
// validate before loading their image use it to avoid building the
// palette twice.
func (s *Session) DrawPrepared(ctx context.Context, pl *planner.Planner, img image.Image) (*Report, error) {
	return s.draw(ctx, pl, img)
}

func (s *Session) draw(ctx context.Context, pl *planner.Planner, img image.Image) (*Report, error) {
	started := time.Now()
	log := logging.Logger().With("session", s.ID.String())
	plan, err := s.planWith(pl, img)
	if err != nil {
		return nil, err
	}
	log.Info("turn planned", "mode", plan.Mode.String(), "brush", plan.BrushIndex,
		"strokes", plan.Strokes(), "horizontal", plan.Horizontal, "vertical", plan.Vertical)

	s.sched.Submit(Commands(s.surface, plan))
	delay := s.opts.Delay
	if delay < 0 {
		delay = 0
	}
	res, err := s.sched.Start(ctx, delay, s.surface.IsActive)
	report := &Report{
		Session:   s.ID,
		Plan:      plan,
		Result:    res,
		Cache:     pl.Resolver().Stats(),
		Elapsed:   time.Since(started),
		Completed: res.Reason == scheduler.Drained,
	}
	log.Info("turn finished", "executed", res.Executed, "abandoned", res.Abandoned,
		"reason", res.Reason.String(), "elapsed", report.Elapsed)
	log.Debug("color cache", "hits", report.Cache.Hits, "misses", report.Cache.Misses, "size", report.Cache.Size)
	if err != nil {
		return report, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return report, nil
}

// Commands binds every primitive of plan to one deferred surface action.
func Commands(surf surface.Surface, plan *planner.Plan) []scheduler.Command {
	cmds := make([]scheduler.Command, 0, len(plan.Primitives))
	for i, prim := range plan.Primitives {
		cmds = append(cmds, bind(surf, plan.BrushIndex, i, prim))
	}
	return cmds
}

func bind(surf surface.Surface, brush, i int, prim planner.Primitive) scheduler.Command {
	name := fmt.Sprintf("%s #%d", prim.Kind, i)
	switch prim.Kind {
	case planner.KindClear:
		return scheduler.Command{Name: name, Exec: surf.Clear}
	case planner.KindDot:
		return scheduler.Command{Name: name, Exec: func() error {
			if err := selectPaint(surf, brush, prim.Color); err != nil {
				return err
			}
			if err := surf.PointerDown(prim.Start.X, prim.Start.Y); err != nil {
				return err
			}
			return surf.PointerUp(prim.Start.X, prim.Start.Y)
		}}
	default:
		return scheduler.Command{Name: name, Exec: func() error {
			if err := selectPaint(surf, brush, prim.Color); err != nil {
				return err
			}
			if err := surf.PointerDown(prim.Start.X, prim.Start.Y); err != nil {
				return err
			}
			if err := surf.PointerMove(prim.End.X, prim.End.Y); err != nil {
				return err
			}
			return surf.PointerUp(prim.End.X, prim.End.Y)
		}}
	}
}

func selectPaint(surf surface.Surface, brush int, c swatch.Color) error {
	if err := surf.SelectTool(surface.ToolBrush); err != nil {
		return err
	}
	if err := surf.SelectBrush(brush); err != nil {
		return err
	}
	return surf.SelectColor(c)
}
