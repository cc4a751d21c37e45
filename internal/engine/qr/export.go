package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const DefaultSize = 400

// ValidSizes are the download sizes offered by the form, in pixels.
var ValidSizes = []int{200, 300, 400, 500, 600}

var ErrInvalidSize = errors.New("image size must be a positive number of pixels")

func IsValidSize(size int) bool {
	for _, s := range ValidSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Resize scales img to size x size with nearest-neighbour sampling so module
// edges stay sharp.
func Resize(img image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return imaging.Resize(img, size, size, imaging.NearestNeighbor), nil
}

func ToPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// Export resizes img and serialises the result as PNG.
func Export(img image.Image, size int) ([]byte, error) {
	resized, err := Resize(img, size)
	if err != nil {
		return nil, err
	}
	return ToPNG(resized)
}
