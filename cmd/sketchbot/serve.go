package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/remote"
	"github.com/example/sketchbot/internal/sampler"
	"github.com/example/sketchbot/internal/turn"
)

const defaultListen = ":8080"

// serveCmd accepts game clients over a websocket at /ws.
type serveCmd struct {
	listen string
	fit    string
	interp string
	delay  time.Duration
	*root
	fs *flag.FlagSet
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	s := &serveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	cfg := rootConfig(r)
	listen := cfg.Listen
	if listen == "" {
		listen = defaultListen
	}
	delay := turn.DefaultDelay
	if cfg.Delay >= 0 {
		delay = cfg.Delay
	}
	fs.StringVar(&s.listen, "listen", listen, "address to listen on")
	fs.StringVar(&s.fit, "fit", cfg.Fit, "how images map onto client canvases: fit or fill")
	fs.StringVar(&s.interp, "interp", cfg.Interpolation, "scaling interpolator")
	fs.DurationVar(&s.delay, "delay", delay, "pause between surface commands")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *serveCmd) options() (turn.Options, error) {
	fit, err := sampler.ParseFitMode(s.fit)
	if err != nil {
		return turn.Options{}, err
	}
	interp, err := sampler.ParseInterpolator(s.interp)
	if err != nil {
		return turn.Options{}, err
	}
	delay := s.delay
	if delay == 0 {
		delay = -1
	}
	return turn.Options{
		Mode:         s.mode,
		BrushIndex:   s.brush,
		Brushes:      planner.DefaultBrushes,
		Fit:          fit,
		Interpolator: interp,
		Delay:        delay,
	}, nil
}

func (s *serveCmd) Run() error {
	opts, err := s.options()
	if err != nil {
		return err
	}
	srv := remote.NewServer(opts)
	srv.OnDone = func(id uuid.UUID, report *turn.Report) {
		if report.Completed {
			s.root.notifyDone(fmt.Sprintf("turn for %s", id), nil)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "ok %d sessions\n", srv.Sessions())
	})
	httpSrv := &http.Server{Addr: s.listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "listening on %s (ws path /ws)\n", s.listen)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", s.listen, err)
	}
	return nil
}
