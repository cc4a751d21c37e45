package shortener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "qrgen/1.0"
	maxResponseBytes = 4096
)

// Endpoints are the base URLs of each provider's shortening API.
type Endpoints struct {
	IsGd    string
	DaGd    string
	ClckRu  string
	TinyURL string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		IsGd:    "https://is.gd/create.php",
		DaGd:    "https://da.gd/s",
		ClckRu:  "https://clck.ru/--",
		TinyURL: "https://tinyurl.com/api-create.php",
	}
}

// Failure is returned for every unsuccessful shortening attempt. Reason is
// suitable for showing to the user.
type Failure struct {
	Provider Provider
	Reason   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Provider, f.Reason)
}

// Shortener is implemented by Client and by test stubs.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string, provider Provider) (string, error)
}

type Client struct {
	http      *http.Client
	endpoints Endpoints
	userAgent string
}

type Option func(*Client)

func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		endpoints: DefaultEndpoints(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Shorten makes a single request to the provider. It never retries and every
// error it returns is a *Failure.
func (c *Client) Shorten(ctx context.Context, rawURL string, provider Provider) (string, error) {
	reqURL, err := c.requestURL(rawURL, provider)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", &Failure{Provider: provider, Reason: "building request: " + err.Error()}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Failure{Provider: provider, Reason: "request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &Failure{Provider: provider, Reason: "reading response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Failure{Provider: provider, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", &Failure{Provider: provider, Reason: "empty response"}
	}
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		return "", &Failure{Provider: provider, Reason: "unexpected response: " + truncate(short, 80)}
	}

	return short, nil
}

func (c *Client) requestURL(rawURL string, provider Provider) (string, error) {
	var base string
	q := url.Values{}
	q.Set("url", rawURL)

	switch provider {
	case IsGd:
		base = c.endpoints.IsGd
		q.Set("format", "simple")
	case DaGd:
		base = c.endpoints.DaGd
	case ClckRu:
		base = c.endpoints.ClckRu
	case TinyURL:
		base = c.endpoints.TinyURL
	default:
		return "", &Failure{Provider: provider, Reason: "unsupported shortening service"}
	}

	if base == "" {
		return "", &Failure{Provider: provider, Reason: "no endpoint configured"}
	}
	return base + "?" + q.Encode(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
