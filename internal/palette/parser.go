package palette

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/example/sketchbot/internal/swatch"
)

// Parse reads a palette definition from an io.Reader.
// The format is one color per line, in declaration order: Name: #RRGGBB
// ("Name = #RRGGBB" is accepted too). Blank lines and lines starting with
// "//" or ";" are ignored.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}
		entry, ok, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseEntry parses a single "Name: color" or "Name = color" line. It
// reports false for lines that are not key/value pairs.
func ParseEntry(line string) (Entry, bool, error) {
	var parts []string
	if strings.Contains(line, "=") {
		parts = strings.SplitN(line, "=", 2)
	} else if strings.Contains(line, ":") {
		parts = strings.SplitN(line, ":", 2)
	} else {
		return Entry{}, false, nil
	}
	name := strings.TrimSpace(parts[0])
	value := strings.Trim(strings.TrimSpace(parts[1]), "\"")
	c, err := swatch.Parse(value)
	if err != nil {
		return Entry{}, false, fmt.Errorf("invalid color for %s: %w", name, err)
	}
	return Entry{Name: name, Color: c}, true, nil
}

// Format renders entries in the format Parse reads.
func Format(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s: %s\n", e.Name, e.Color.Hex()); err != nil {
			return err
		}
	}
	return nil
}
