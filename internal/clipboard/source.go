// Package clipboard moves drawings and image references through the system
// clipboard.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"strings"

	"github.com/example/sketchbot/internal/sampler"
)

var (
	// ErrNoDisplay is returned when no graphical session is available.
	ErrNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	// ErrEmpty is returned when the clipboard holds nothing usable.
	ErrEmpty = errors.New("clipboard is empty")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// Source returns the image on the clipboard. When the clipboard holds text
// instead, the text is treated as an image reference (URL, data URI or
// path) and loaded with sampler.Open.
func Source(ctx context.Context) (image.Image, error) {
	return source(ctx, ReadImage, ReadText)
}

func source(ctx context.Context, readImage func() ([]byte, error), readText func() (string, error)) (image.Image, error) {
	data, imgErr := readImage()
	if imgErr == nil {
		return sampler.Decode(bytes.NewReader(data))
	}
	if !errors.Is(imgErr, ErrEmpty) {
		return nil, imgErr
	}
	text, err := readText()
	if err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(text)
	if ref == "" {
		return nil, ErrEmpty
	}
	return sampler.Open(ctx, ref)
}
