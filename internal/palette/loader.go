package palette

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed defaults/*.palette
var embeddedPalettes embed.FS

// DefaultPreset names the palette used when nothing else is configured.
const DefaultPreset = "skribbl"

// Loader finds palette presets on disk or among the embedded defaults.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a new Loader with standard paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "sketchbot", "palettes"),
		SystemDir: "/usr/share/sketchbot/palettes",
	}
}

// Load resolves a palette by name or path.
// Order:
// 1. If it's a file path that exists, load it.
// 2. Check embedded presets.
// 3. Check ConfigDir.
// 4. Check SystemDir.
func (l *Loader) Load(name string) ([]Entry, error) {
	if name == "" {
		name = DefaultPreset
	}

	if _, err := os.Stat(name); err == nil {
		return loadFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".palette") {
		filename += ".palette"
	}

	if f, err := embeddedPalettes.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return Parse(f)
	}

	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		}
	}

	return nil, fmt.Errorf("palette '%s' not found", name)
}

func loadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return entries, nil
}

// Presets returns the names of the embedded palettes, sorted.
func Presets() []string {
	matches, err := fs.Glob(embeddedPalettes, "defaults/*.palette")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".palette"))
	}
	sort.Strings(names)
	return names
}
