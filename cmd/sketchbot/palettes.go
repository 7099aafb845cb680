package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/example/sketchbot/internal/palette"
)

type palettesCmd struct {
	stdout io.Writer
	*root
	fs *flag.FlagSet
}

func parsePalettesCmd(args []string, r *root) (*palettesCmd, error) {
	fs := flag.NewFlagSet("palettes", flag.ExitOnError)
	cmd := &palettesCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *palettesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *palettesCmd) Run() error {
	if c.fs.NArg() == 1 {
		entries, err := lookupPalette(rootConfig(c.root), c.fs.Arg(0))
		if err != nil {
			return err
		}
		return palette.Format(c.stdout, entries)
	}

	fmt.Fprintln(c.stdout, "built-in palettes:")
	for _, name := range palette.Presets() {
		marker := " "
		if name == palette.DefaultPreset {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %s\n", marker, name)
	}
	cfg := rootConfig(c.root)
	if len(cfg.Palettes) > 0 {
		names := make([]string, 0, len(cfg.Palettes))
		for name := range cfg.Palettes {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(c.stdout, "config palettes:")
		for _, name := range names {
			fmt.Fprintf(c.stdout, "  %s (%d colors)\n", name, len(cfg.Palettes[name]))
		}
	}
	return nil
}
