package pipeline

import (
	"errors"
	"image"
	"time"

	"qrgen/internal/engine/qr"
	"qrgen/internal/engine/shortener"
)

const (
	DownloadFilename = "qrcode_url.png"
	DownloadMIME     = "image/png"
)

var ErrNoImage = errors.New("no QR code has been generated yet")

// State is everything a session remembers between requests. Image and
// TargetURL are always set together; ShortURL is only set when the
// submission that produced Image asked for shortening and it succeeded.
type State struct {
	Image       image.Image
	TargetURL   string
	ShortURL    string
	Color       string
	Size        int
	GeneratedAt time.Time
}

func (s State) HasImage() bool {
	return s.Image != nil
}

// Export resizes the cached image and returns it as PNG bytes.
func (s State) Export(size int) ([]byte, error) {
	if !s.HasImage() {
		return nil, ErrNoImage
	}
	return qr.Export(s.Image, size)
}

// Event is a user interaction applied to a State.
type Event interface {
	isEvent()
}

// Submit is the generate button.
type Submit struct {
	URL      string
	Color    string
	Shorten  bool
	Provider shortener.Provider
}

// SelectSize changes the output size without regenerating anything.
type SelectSize struct {
	Size int
}

// Clear drops the cached result.
type Clear struct{}

func (Submit) isEvent()     {}
func (SelectSize) isEvent() {}
func (Clear) isEvent()      {}

// Render describes what the page shows after an event. It is always derived
// from the resulting State plus the messages produced while applying the event.
type Render struct {
	Warnings  []string
	Errors    []string
	ShortURL  string
	TargetURL string
	HasImage  bool
	Size      int
	Filename  string

	// Err is the validation or encoding error that stopped a Submit, if any.
	Err error
	// ShortenErr is set when shortening failed and the original URL was used.
	ShortenErr error
}
