package palette

import (
	"math"

	"github.com/example/sketchbot/internal/swatch"
)

// Resolver maps sampled colors to the nearest palette color and memoizes
// the answer. A Resolver belongs to exactly one Palette; building a new
// palette means building a new Resolver. It is not safe for concurrent use.
type Resolver struct {
	palette *Palette
	cache   map[swatch.Color]swatch.Color
	hits    int
	misses  int
}

// Stats counts cache behaviour for one Resolver.
type Stats struct {
	Hits   int
	Misses int
	Size   int
}

// NewResolver returns an empty resolver for p.
func NewResolver(p *Palette) *Resolver {
	return &Resolver{palette: p, cache: make(map[swatch.Color]swatch.Color)}
}

// Palette returns the palette the resolver searches.
func (r *Resolver) Palette() *Palette { return r.palette }

// Nearest returns the palette color closest to c. Transparent input yields
// swatch.Transparent without searching. Ties keep the earlier palette entry.
func (r *Resolver) Nearest(c swatch.Color) swatch.Color {
	if c.IsTransparent() {
		return swatch.Transparent
	}
	if hit, ok := r.cache[c]; ok {
		r.hits++
		return hit
	}
	r.misses++
	best := math.MaxFloat64
	var nearest swatch.Color
	for _, e := range r.palette.entries {
		if d := swatch.Distance(c, e.Color); d < best {
			best = d
			nearest = e.Color
		}
	}
	r.cache[c] = nearest
	return nearest
}

// Stats reports cache hits and misses so far.
func (r *Resolver) Stats() Stats {
	return Stats{Hits: r.hits, Misses: r.misses, Size: len(r.cache)}
}
