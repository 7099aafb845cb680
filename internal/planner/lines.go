package planner

import (
	"image"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/sampler"
	"github.com/example/sketchbot/internal/swatch"
)

type lineStrategy struct {
	resolver *palette.Resolver
	diameter float64
	fit      sampler.FitMode
	interp   xdraw.Interpolator
}

func (s *lineStrategy) Plan(src image.Image, canvas image.Point, plan *Plan) ([]Primitive, error) {
	// One sample per brush width.
	img, err := sampler.Scale(src, float64(canvas.X)/s.diameter, float64(canvas.Y)/s.diameter, s.fit, s.interp)
	if err != nil {
		return nil, err
	}
	plan.Sampled = image.Pt(img.Width(), img.Height())
	g := grid{
		img:      img,
		resolver: s.resolver,
		d:        s.diameter,
		xOffset:  (float64(canvas.X) - float64(img.Width())*s.diameter) / 2,
		yOffset:  (float64(canvas.Y) - float64(img.Height())*s.diameter) / 2,
	}
	horizontal := g.rows()
	vertical := g.columns()
	plan.Horizontal = len(horizontal)
	plan.Vertical = len(vertical)

	lines := horizontal
	if len(vertical) < len(horizontal) {
		lines = vertical
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Length > lines[j].Length
	})
	return lines, nil
}

// grid resolves sampled pixels to palette colors and maps sample
// coordinates back into canvas space.
type grid struct {
	img      *sampler.Image
	resolver *palette.Resolver
	d        float64
	xOffset  float64
	yOffset  float64
}

func (g grid) color(x, y int) swatch.Color {
	return g.resolver.Nearest(g.img.At(x, y))
}

func (g grid) point(x, y int) Point {
	return Point{X: float64(x)*g.d + g.xOffset, Y: float64(y)*g.d + g.yOffset}
}

// rows emits one line per run of equal colors along each row, the last run
// included. Runs of background or transparent samples are dropped.
func (g grid) rows() []Primitive {
	var out []Primitive
	for y := 0; y < g.img.Height(); y++ {
		out = g.runs(out, g.img.Width(), func(i int) (int, int) { return i, y })
	}
	return out
}

// columns is rows transposed.
func (g grid) columns() []Primitive {
	var out []Primitive
	for x := 0; x < g.img.Width(); x++ {
		out = g.runs(out, g.img.Height(), func(i int) (int, int) { return x, i })
	}
	return out
}

// runs walks n samples addressed through at and appends a line for every
// maximal run of one color.
func (g grid) runs(out []Primitive, n int, at func(int) (int, int)) []Primitive {
	if n == 0 {
		return out
	}
	p := g.resolver.Palette()
	start := 0
	runColor := g.color(at(0))
	for i := 1; i <= n; i++ {
		var next swatch.Color
		if i < n {
			next = g.color(at(i))
			if next == runColor {
				continue
			}
		}
		if !p.Skip(runColor) {
			a := g.point(at(start))
			b := g.point(at(i - 1))
			out = append(out, Primitive{
				Kind:     KindLine,
				Start:    a,
				End:      b,
				Color:    runColor,
				Diameter: g.d,
				Length:   (b.X - a.X) + (b.Y - a.Y),
			})
		}
		start, runColor = i, next
	}
	return out
}
