package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/example/sketchbot/internal/config"
	"github.com/example/sketchbot/internal/logging"
	"github.com/example/sketchbot/internal/notify"
	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/planner"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	verbose     bool
	doneAlerts  bool
	saveAlerts  bool
	copyAlerts  bool
	paletteName string
	modeName    string
	brush       int

	// resolved in Run
	entries []palette.Entry
	mode    planner.Mode
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:     program,
		notifier:    r.notifier,
		config:      r.config,
		verbose:     r.verbose,
		doneAlerts:  r.doneAlerts,
		saveAlerts:  r.saveAlerts,
		copyAlerts:  r.copyAlerts,
		paletteName: r.paletteName,
		modeName:    r.modeName,
		brush:       r.brush,
		entries:     r.entries,
		mode:        r.mode,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("sketchbot", flag.ExitOnError),
		program:  "sketchbot",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.verbose, "v", false, "log planning and replay details to stderr")
	r.fs.BoolVar(&r.doneAlerts, "notify-done", cfg.Notify.Done, "show a desktop notification after a drawing finishes")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default
	// Empty or negative flag values fall through in Run.
	r.fs.StringVar(&r.paletteName, "palette", "", "palette preset, file or [palette.name] config section (default skribbl)")
	r.fs.StringVar(&r.modeName, "mode", "", "draw mode: lines or dots (default lines)")
	r.fs.IntVar(&r.brush, "brush", -1, "brush size index (default 0)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventDone, r.doneAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	if err := r.resolve(); err != nil {
		return err
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	sub := r.subcommand(cmdName)
	switch cmdName {
	case "draw":
		cmd, err = parseDrawCmd(subArgs, sub)
	case "plan":
		cmd, err = parsePlanCmd(subArgs, sub)
	case "preview":
		cmd, err = parsePreviewCmd(subArgs, sub)
	case "serve":
		cmd, err = parseServeCmd(subArgs, sub)
	case "palettes":
		cmd, err = parsePalettesCmd(subArgs, sub)
	case "config":
		cmd, err = parseConfigCmd(subArgs, sub)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	if runErr := cmd.Run(); runErr != nil {
		return runErr
	}
	return nil
}

// resolve applies the flag, environment, config and default precedence to
// the palette, draw mode and brush.
func (r *root) resolve() error {
	name := r.paletteName
	if name == "" {
		name = os.Getenv("SKETCHBOT_PALETTE")
	}
	if name == "" {
		name = r.config.Palette
	}
	entries, err := lookupPalette(r.config, name)
	if err != nil {
		return err
	}
	r.entries = entries

	modeName := r.modeName
	if modeName == "" {
		modeName = os.Getenv("SKETCHBOT_DRAW_MODE")
	}
	if modeName == "" {
		modeName = r.config.DrawMode
	}
	if r.mode, err = planner.ParseMode(modeName); err != nil {
		return err
	}

	if r.brush < 0 {
		r.brush = r.config.Brush
	}
	if r.brush < 0 {
		r.brush = 0
	}
	return nil
}

// lookupPalette checks the config's [palette.name] sections before the
// preset loader.
func lookupPalette(cfg *config.Config, name string) ([]palette.Entry, error) {
	if cfg != nil {
		if entries, ok := cfg.Palettes[name]; ok {
			return entries, nil
		}
	}
	entries, err := palette.NewLoader().Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}
	return entries, nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			log.SetFlags(0)
			log.Print(err)
			os.Exit(1)
		}
	}
}

func (r *root) notifyDone(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Done(detail, img)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}
