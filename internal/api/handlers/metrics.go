package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Metrics counts pipeline outcomes. Exported in Prometheus text format
// without pulling in the client library.
type Metrics struct {
	Generated          atomic.Int64
	ValidationFailures atomic.Int64
	ShortenAttempts    atomic.Int64
	ShortenFailures    atomic.Int64
	EncodingFailures   atomic.Int64
	Downloads          atomic.Int64
}

type SessionCounter interface {
	Len() int
}

type MetricsHandler struct {
	metrics  *Metrics
	sessions SessionCounter
}

func NewMetricsHandler(metrics *Metrics, sessions SessionCounter) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, sessions: sessions}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP qrgen_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE qrgen_up gauge\n")
	fmt.Fprintf(w, "qrgen_up 1\n")

	counter(w, "qrgen_qr_generated_total", "QR codes generated", h.metrics.Generated.Load())
	counter(w, "qrgen_validation_failures_total", "Submissions rejected by URL validation", h.metrics.ValidationFailures.Load())
	counter(w, "qrgen_shorten_attempts_total", "Link shortening requests made", h.metrics.ShortenAttempts.Load())
	counter(w, "qrgen_shorten_failures_total", "Link shortening requests that failed", h.metrics.ShortenFailures.Load())
	counter(w, "qrgen_encoding_failures_total", "Submissions that could not be encoded", h.metrics.EncodingFailures.Load())
	counter(w, "qrgen_downloads_total", "PNG downloads served", h.metrics.Downloads.Load())

	fmt.Fprintf(w, "# HELP qrgen_sessions Sessions holding a cached QR code\n")
	fmt.Fprintf(w, "# TYPE qrgen_sessions gauge\n")
	fmt.Fprintf(w, "qrgen_sessions %d\n", h.sessions.Len())
}

func counter(w http.ResponseWriter, name, help string, v int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n", name, v)
}
