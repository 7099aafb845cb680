package planner

import (
	"image"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/example/sketchbot/internal/palette"
	"github.com/example/sketchbot/internal/sampler"
)

type dotStrategy struct {
	resolver *palette.Resolver
	diameter int
	fit      sampler.FitMode
	interp   xdraw.Interpolator
}

func (s *dotStrategy) Plan(src image.Image, canvas image.Point, plan *Plan) ([]Primitive, error) {
	img, err := sampler.Scale(src, float64(canvas.X), float64(canvas.Y), s.fit, s.interp)
	if err != nil {
		return nil, err
	}
	plan.Sampled = image.Pt(img.Width(), img.Height())
	xOffset := float64(canvas.X-img.Width()) / 2
	yOffset := float64(canvas.Y-img.Height()) / 2
	return dotsFor(img, s.resolver, s.diameter, xOffset, yOffset), nil
}

// dotsFor tiles img into d x d cells and emits one dot per painted cell,
// ordered left to right.
func dotsFor(img *sampler.Image, resolver *palette.Resolver, d int, xOffset, yOffset float64) []Primitive {
	p := resolver.Palette()
	var dots []Primitive
	for y := 0; y < img.Height(); y += d {
		for x := 0; x < img.Width(); x += d {
			avg := img.AverageColor(image.Rect(x, y, x+d, y+d))
			c := resolver.Nearest(avg)
			if p.Skip(c) {
				continue
			}
			dots = append(dots, Primitive{
				Kind: KindDot,
				Start: Point{
					X: float64(x+x+d-1)/2 + xOffset,
					Y: float64(y+y+d-1)/2 + yOffset,
				},
				Color:    c,
				Diameter: float64(d),
			})
		}
	}
	sort.SliceStable(dots, func(i, j int) bool {
		return dots[i].Start.X < dots[j].Start.X
	})
	return dots
}
