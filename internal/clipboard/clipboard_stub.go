//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("clipboard is not supported on this platform")

func ensureInit() error { return errUnsupported }

func WriteImage(image.Image) error { return errUnsupported }

func ReadImage() ([]byte, error) { return nil, errUnsupported }

func ReadText() (string, error) { return "", errUnsupported }
