package appstate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const statusHeight = 20

var (
	backdrop  = color.RGBA{0x60, 0x60, 0x60, 0xff}
	statusBar = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
)

// Compose renders one window frame into dst: the surface in the top-left
// corner on a grey backdrop and the status bar along the bottom edge.
func Compose(dst *image.RGBA, src *image.RGBA, title, status string) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(backdrop), image.Point{}, draw.Src)

	area := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y-statusHeight)
	if src != nil {
		draw.Draw(dst, area.Intersect(src.Bounds().Sub(src.Bounds().Min).Add(area.Min)), src, src.Bounds().Min, draw.Src)
	}

	bar := image.Rect(b.Min.X, b.Max.Y-statusHeight, b.Max.X, b.Max.Y)
	if bar.Min.Y < b.Min.Y {
		bar.Min.Y = b.Min.Y
	}
	draw.Draw(dst, bar, image.NewUniform(statusBar), image.Point{}, draw.Src)

	text := title
	if status != "" {
		text += "  " + status
	}
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(bar.Min.X+4, bar.Min.Y+14)}
	d.DrawString(text)
}
