// Package sampler rescales source images into canvas space and answers the
// per-pixel and per-region color queries the stroke planner needs.
package sampler

import (
	"fmt"
	"image"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/sketchbot/internal/swatch"
)

// FitMode selects how a source image is mapped onto a target box.
type FitMode int

const (
	// ScaleToFit shrinks or grows the image until it fits inside the box,
	// keeping the aspect ratio. The output may be smaller than the box.
	ScaleToFit FitMode = iota
	// ScaleToFill grows the image until it covers the box and crops the
	// overflow. The output is exactly the box.
	ScaleToFill
)

func (m FitMode) String() string {
	switch m {
	case ScaleToFit:
		return "fit"
	case ScaleToFill:
		return "fill"
	}
	return fmt.Sprintf("FitMode(%d)", int(m))
}

// ParseFitMode accepts "fit", "fill", "scaleToFit" or "scaleToFill".
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fit", "scaletofit":
		return ScaleToFit, nil
	case "fill", "scaletofill":
		return ScaleToFill, nil
	}
	return ScaleToFit, fmt.Errorf("unknown fit mode %q", s)
}

var interpolators = map[string]xdraw.Interpolator{
	"nearest":         xdraw.NearestNeighbor,
	"approx-bilinear": xdraw.ApproxBiLinear,
	"bilinear":        xdraw.BiLinear,
	"catmull-rom":     xdraw.CatmullRom,
}

// InterpolatorNames lists the names ParseInterpolator accepts.
func InterpolatorNames() []string {
	return []string{"nearest", "approx-bilinear", "bilinear", "catmull-rom"}
}

// ParseInterpolator maps a name to an x/image/draw interpolator. The empty
// name selects nearest-neighbour.
func ParseInterpolator(name string) (xdraw.Interpolator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return xdraw.NearestNeighbor, nil
	}
	if in, ok := interpolators[key]; ok {
		return in, nil
	}
	return nil, fmt.Errorf("unknown interpolation %q", name)
}

// Image is an immutable grid of non-premultiplied colors with its origin at
// (0, 0).
type Image struct {
	pix *image.NRGBA
}

// Wrap samples img at its native resolution.
func Wrap(img image.Image) *Image {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return &Image{pix: dst}
}

// Width returns the number of columns.
func (m *Image) Width() int { return m.pix.Rect.Dx() }

// Height returns the number of rows.
func (m *Image) Height() int { return m.pix.Rect.Dy() }

// Bounds returns the zero-origin bounds of the image.
func (m *Image) Bounds() image.Rectangle { return m.pix.Rect }

// At returns the color at (x, y), or Transparent outside the image.
func (m *Image) At(x, y int) swatch.Color {
	if !image.Pt(x, y).In(m.pix.Rect) {
		return swatch.Transparent
	}
	i := m.pix.PixOffset(x, y)
	p := m.pix.Pix[i : i+4 : i+4]
	return swatch.Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// AverageColor returns the alpha-weighted mean color of r clipped to the
// image. Alpha acts as the per-pixel weight for the RGB channels, so fully
// transparent pixels contribute nothing; the output alpha is the mean
// weight, kept at 1 or more whenever any pixel carries paint.
func (m *Image) AverageColor(r image.Rectangle) swatch.Color {
	r = r.Intersect(m.pix.Rect)
	if r.Empty() {
		return swatch.Transparent
	}
	var sumR, sumG, sumB, sumA, n uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.pix.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			p := m.pix.Pix[row : row+4 : row+4]
			a := uint64(p[3])
			sumR += uint64(p[0]) * a
			sumG += uint64(p[1]) * a
			sumB += uint64(p[2]) * a
			sumA += a
			n++
			row += 4
		}
	}
	if sumA == 0 {
		return swatch.Transparent
	}
	alpha := sumA / n
	if alpha == 0 {
		alpha = 1
	}
	return swatch.Color{
		R: uint8(sumR / sumA),
		G: uint8(sumG / sumA),
		B: uint8(sumB / sumA),
		A: uint8(alpha),
	}
}

// Scale maps src onto a targetW x targetH box using mode and interp. The
// scaled content is always centered in its box. A nil interp selects
// nearest-neighbour.
func Scale(src image.Image, targetW, targetH float64, mode FitMode, interp xdraw.Interpolator) (*Image, error) {
	sb := src.Bounds()
	if sb.Empty() {
		return nil, fmt.Errorf("source image is empty")
	}
	if targetW < 1 || targetH < 1 || math.IsNaN(targetW) || math.IsNaN(targetH) {
		return nil, fmt.Errorf("target %gx%g is smaller than one pixel", targetW, targetH)
	}
	if interp == nil {
		interp = xdraw.NearestNeighbor
	}
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	wRatio := targetW / sw
	hRatio := targetH / sh

	var (
		outW, outH int
		srcRect    = sb
	)
	switch mode {
	case ScaleToFill:
		ratio := math.Max(wRatio, hRatio)
		outW = floorDim(targetW, targetW)
		outH = floorDim(targetH, targetH)
		srcRect = centeredWindow(sb, float64(outW)/ratio, float64(outH)/ratio)
	default:
		ratio := math.Min(wRatio, hRatio)
		outW = floorDim(sw*ratio, targetW)
		outH = floorDim(sh*ratio, targetH)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	interp.Scale(dst, dst.Bounds(), src, srcRect, xdraw.Src, nil)
	return &Image{pix: dst}, nil
}

// centeredWindow returns the w x h window centered in b, clamped to b.
func centeredWindow(b image.Rectangle, w, h float64) image.Rectangle {
	cw := int(math.Round(w))
	ch := int(math.Round(h))
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	if cw > b.Dx() {
		cw = b.Dx()
	}
	if ch > b.Dy() {
		ch = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// floorDim floors v to a pixel count, absorbing float error just below an
// integer, and keeps the result within [1, floor(limit)].
func floorDim(v, limit float64) int {
	n := int(math.Floor(v + 1e-9))
	if top := int(math.Floor(limit + 1e-9)); n > top {
		n = top
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ToRGBA copies the sampled image into a premultiplied RGBA image.
func (m *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(m.pix.Rect)
	xdraw.Draw(out, out.Bounds(), m.pix, image.Point{}, xdraw.Src)
	return out
}
