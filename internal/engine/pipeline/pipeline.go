package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"qrgen/internal/engine/qr"
	"qrgen/internal/engine/shortener"
)

type Config struct {
	BoxSize     int
	Border      int
	DefaultSize int
}

func DefaultConfig() Config {
	return Config{
		BoxSize:     qr.DefaultBoxSize,
		Border:      qr.DefaultBorder,
		DefaultSize: qr.DefaultSize,
	}
}

// Pipeline turns form events into new session state. It holds no state of
// its own; the caller owns State and stores whatever Apply returns.
type Pipeline struct {
	shortener shortener.Shortener
	cfg       Config
	now       func() time.Time
}

func New(s shortener.Shortener, cfg Config) *Pipeline {
	if cfg.BoxSize < 1 {
		cfg.BoxSize = qr.DefaultBoxSize
	}
	if cfg.Border < 0 {
		cfg.Border = qr.DefaultBorder
	}
	if !qr.IsValidSize(cfg.DefaultSize) {
		cfg.DefaultSize = qr.DefaultSize
	}
	return &Pipeline{shortener: s, cfg: cfg, now: time.Now}
}

// Apply handles one event. On any blocking error the prior state is returned
// untouched.
func (p *Pipeline) Apply(ctx context.Context, prior State, ev Event) (State, Render) {
	switch e := ev.(type) {
	case Submit:
		return p.submit(ctx, prior, e)
	case SelectSize:
		return p.selectSize(prior, e)
	case Clear:
		return State{}, p.render(State{}, Render{})
	default:
		r := Render{Err: fmt.Errorf("unsupported event %T", ev)}
		r.Errors = append(r.Errors, r.Err.Error())
		return prior, p.render(prior, r)
	}
}

func (p *Pipeline) submit(ctx context.Context, prior State, e Submit) (State, Render) {
	var r Render

	if err := ValidateURL(e.URL); err != nil {
		r.Err = err
		r.Warnings = append(r.Warnings, err.Error())
		return prior, p.render(prior, r)
	}

	target := e.URL
	var short string

	if e.Shorten {
		s, err := p.shortener.Shorten(ctx, e.URL, e.Provider)
		if err != nil {
			log.Warn().Err(err).Str("provider", e.Provider.String()).Msg("shortening failed, using original URL")
			r.ShortenErr = err
			r.Errors = append(r.Errors, "URL shortening failed: "+shortenReason(err))
		} else {
			short = s
			target = s
		}
	}

	color := ResolveColor(e.Color)
	img, err := qr.Encode(target, color, p.cfg.BoxSize, p.cfg.Border)
	if err != nil {
		log.Error().Err(err).Int("payload_len", len(target)).Msg("QR encoding failed")
		r.Err = err
		r.Errors = append(r.Errors, encodeMessage(err))
		return prior, p.render(prior, r)
	}

	size := prior.Size
	if !qr.IsValidSize(size) {
		size = p.cfg.DefaultSize
	}

	next := State{
		Image:       img,
		TargetURL:   target,
		ShortURL:    short,
		Color:       color,
		Size:        size,
		GeneratedAt: p.now(),
	}
	return next, p.render(next, r)
}

func (p *Pipeline) selectSize(prior State, e SelectSize) (State, Render) {
	var r Render
	if !qr.IsValidSize(e.Size) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unsupported image size %d", e.Size))
		return prior, p.render(prior, r)
	}

	next := prior
	next.Size = e.Size
	return next, p.render(next, r)
}

// View renders s without applying an event, for plain page loads.
func (p *Pipeline) View(s State) Render {
	return p.render(s, Render{})
}

func (p *Pipeline) render(s State, r Render) Render {
	r.HasImage = s.HasImage()
	r.TargetURL = s.TargetURL
	r.ShortURL = s.ShortURL
	r.Size = s.Size
	if !qr.IsValidSize(r.Size) {
		r.Size = p.cfg.DefaultSize
	}
	if r.HasImage {
		r.Filename = DownloadFilename
	}
	return r
}

func shortenReason(err error) string {
	var f *shortener.Failure
	if errors.As(err, &f) {
		return f.Error()
	}
	return err.Error()
}

func encodeMessage(err error) string {
	var encErr *qr.EncodingError
	if errors.As(err, &encErr) {
		return "the URL is too long to fit in a QR code"
	}
	return "QR code generation failed: " + err.Error()
}
