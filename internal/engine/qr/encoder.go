package qr

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultBoxSize = 10
	DefaultBorder  = 4
)

var (
	ErrEmptyPayload    = errors.New("qr payload is empty")
	ErrInvalidColor    = errors.New("fill color must be a hex value like #1e3a5f")
	ErrInvalidGeometry = errors.New("box size must be positive and border must not be negative")
)

// EncodingError is returned when the payload cannot be represented by any
// QR symbol version at the configured error-correction level.
type EncodingError struct {
	PayloadLen int
	Err        error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %d byte payload as QR code: %v", e.PayloadLen, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encode renders payload as a two-colour QR symbol (error-correction level M)
// with the fill colour on a white background. Each module is boxSize pixels
// wide and the quiet zone is border modules wide on every side.
func Encode(payload, fillColor string, boxSize, border int) (*image.Paletted, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	if boxSize < 1 || border < 0 {
		return nil, ErrInvalidGeometry
	}

	fill, err := ParseHexColor(fillColor)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, &EncodingError{PayloadLen: len(payload), Err: err}
	}

	// The quiet zone is drawn below so that border is honoured exactly.
	code.DisableBorder = true
	bitmap := code.Bitmap()

	side := SideLength(len(bitmap), boxSize, border)
	palette := color.Palette{color.White, fill}
	img := image.NewPaletted(image.Rect(0, 0, side, side), palette)

	offset := border * boxSize
	for row, modules := range bitmap {
		for col, dark := range modules {
			if !dark {
				continue
			}
			x0 := offset + col*boxSize
			y0 := offset + row*boxSize
			for y := y0; y < y0+boxSize; y++ {
				start := img.PixOffset(x0, y)
				for i := start; i < start+boxSize; i++ {
					img.Pix[i] = 1
				}
			}
		}
	}

	return img, nil
}

// SideLength is the pixel side of an encoded symbol with moduleCount modules.
func SideLength(moduleCount, boxSize, border int) int {
	return (moduleCount + 2*border) * boxSize
}

// ModuleCount returns the number of modules per side for a symbol version.
func ModuleCount(version int) int {
	return 17 + 4*version
}

// ParseHexColor accepts #rgb and #rrggbb, with or without the leading '#'.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, ErrInvalidColor
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, ErrInvalidColor
	}

	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}
