package handlers

import (
	"embed"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"qrgen/internal/api/middleware"
	"qrgen/internal/engine/pipeline"
	"qrgen/internal/engine/qr"
	"qrgen/internal/engine/shortener"
	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/audit"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// SessionStore is the per-session state cache used by QRHandler.
type SessionStore interface {
	Get(id string) (pipeline.State, bool)
	Put(id string, state pipeline.State)
	Delete(id string)
	Len() int
}

type QRHandler struct {
	pipeline *pipeline.Pipeline
	sessions SessionStore
	audit    *audit.Logger
	metrics  *Metrics
	version  string
}

func NewQRHandler(p *pipeline.Pipeline, sessions SessionStore, auditLog *audit.Logger, metrics *Metrics, version string) *QRHandler {
	return &QRHandler{
		pipeline: p,
		sessions: sessions,
		audit:    auditLog,
		metrics:  metrics,
		version:  version,
	}
}

type formValues struct {
	URL      string
	Color    string
	Shorten  bool
	Provider string
}

type pageData struct {
	Colors       []pipeline.ColorPreset
	Providers    []shortener.Provider
	Sizes        []int
	Form         formValues
	Render       pipeline.Render
	ImageURL     string
	DownloadURL  string
	DisplayWidth int
	Version      string
}

// Page renders the form and, when the session has one, the cached result.
func (h *QRHandler) Page(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFrom(r.Context())
	state, _ := h.sessions.Get(sid)
	render := h.pipeline.View(state)

	h.writePage(w, http.StatusOK, state, render, formValues{
		Color:    colorKey(state.Color),
		Provider: shortener.IsGd.Key(),
	})
}

func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid form body", nil)
		return
	}

	form := formValues{
		URL:      r.PostFormValue("url"),
		Color:    r.PostFormValue("color"),
		Shorten:  r.PostFormValue("shorten") != "",
		Provider: r.PostFormValue("provider"),
	}

	state, render := h.apply(r, pipeline.Submit{
		URL:      form.URL,
		Color:    form.Color,
		Shorten:  form.Shorten,
		Provider: shortener.ParseProvider(form.Provider),
	})

	if form.Color == "" {
		form.Color = colorKey(state.Color)
	}
	if form.Provider == "" {
		form.Provider = shortener.IsGd.Key()
	}
	h.writePage(w, http.StatusOK, state, render, form)
}

func (h *QRHandler) SelectSize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid form body", nil)
		return
	}

	size, _ := strconv.Atoi(r.PostFormValue("size"))
	state, render := h.apply(r, pipeline.SelectSize{Size: size})

	h.writePage(w, http.StatusOK, state, render, formValues{
		Color:    colorKey(state.Color),
		Provider: shortener.IsGd.Key(),
	})
}

func (h *QRHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.apply(r, pipeline.Clear{})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Image serves the cached QR code resized to ?size= (or the session's
// selected size). ?download=1 turns the response into a file download.
func (h *QRHandler) Image(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFrom(r.Context())
	state, ok := h.sessions.Get(sid)
	if !ok || !state.HasImage() {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, pipeline.ErrNoImage.Error(), nil)
		return
	}

	size := state.Size
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || !qr.IsValidSize(v) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unsupported image size", qr.ValidSizes)
			return
		}
		size = v
	}
	if !qr.IsValidSize(size) {
		size = qr.DefaultSize
	}

	png, err := state.Export(size)
	if err != nil {
		log.Error().Err(err).Int("size", size).Msg("failed to export QR image")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to export image", nil)
		return
	}

	w.Header().Set("Content-Type", pipeline.DownloadMIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.DownloadFilename))
		h.metrics.Downloads.Add(1)
		h.audit.Log(sid, audit.ActionQRDownloaded, r.RemoteAddr, r.UserAgent(), map[string]interface{}{
			"size": size,
		})
	}
	w.Write(png)
}

type generateRequest struct {
	URL      string `json:"url"`
	Color    string `json:"color"`
	Shorten  bool   `json:"shorten"`
	Provider string `json:"provider"`
	Size     int    `json:"size"`
}

type stateResponse struct {
	HasImage    bool     `json:"has_image"`
	TargetURL   string   `json:"target_url,omitempty"`
	ShortURL    string   `json:"short_url,omitempty"`
	Color       string   `json:"color,omitempty"`
	Size        int      `json:"size"`
	ImageURL    string   `json:"image_url,omitempty"`
	DownloadURL string   `json:"download_url,omitempty"`
	GeneratedAt int64    `json:"generated_at,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Errors      []string `json:"errors,omitempty"`

	// Set when shortening was requested but failed and the original URL was
	// encoded instead.
	ShortenError *errors.ErrorResponse `json:"shorten_error,omitempty"`
}

// APIGenerate is the JSON counterpart of Generate. An optional size is
// applied after a successful generation.
func (h *QRHandler) APIGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	provider := shortener.IsGd
	if req.Provider != "" {
		provider = shortener.ParseProvider(req.Provider)
	}

	state, render := h.apply(r, pipeline.Submit{
		URL:      req.URL,
		Color:    req.Color,
		Shorten:  req.Shorten,
		Provider: provider,
	})

	switch {
	case stdErrors.Is(render.Err, pipeline.ErrEmptyInput):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeEmptyInput, render.Err.Error(), nil)
		return
	case stdErrors.Is(render.Err, pipeline.ErrInvalidScheme):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidScheme, render.Err.Error(), nil)
		return
	case render.Err != nil:
		errors.WriteError(w, http.StatusUnprocessableEntity, errors.ErrCodeEncoding, render.Err.Error(), render.Errors)
		return
	}

	if req.Size != 0 {
		var sizeRender pipeline.Render
		state, sizeRender = h.apply(r, pipeline.SelectSize{Size: req.Size})
		render.Warnings = append(render.Warnings, sizeRender.Warnings...)
		render.Size = sizeRender.Size
	}

	writeJSON(w, http.StatusOK, h.stateResponse(state, render))
}

func (h *QRHandler) State(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFrom(r.Context())
	state, _ := h.sessions.Get(sid)
	writeJSON(w, http.StatusOK, h.stateResponse(state, h.pipeline.View(state)))
}

func (h *QRHandler) Providers(w http.ResponseWriter, r *http.Request) {
	type providerInfo struct {
		Key    string `json:"key"`
		Name   string `json:"name"`
		InForm bool   `json:"in_form"`
	}

	inForm := map[shortener.Provider]bool{}
	for _, p := range shortener.FormProviders() {
		inForm[p] = true
	}

	var out []providerInfo
	for _, p := range shortener.AllProviders() {
		out = append(out, providerInfo{Key: p.Key(), Name: p.String(), InForm: inForm[p]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *QRHandler) Colors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.ColorPresets)
}

// apply runs one event against the caller's session and stores the result.
func (h *QRHandler) apply(r *http.Request, ev pipeline.Event) (pipeline.State, pipeline.Render) {
	sid := middleware.SessionIDFrom(r.Context())
	prior, _ := h.sessions.Get(sid)

	next, render := h.pipeline.Apply(r.Context(), prior, ev)
	if next.HasImage() || next.Size != 0 {
		h.sessions.Put(sid, next)
	} else {
		h.sessions.Delete(sid)
	}

	if submit, ok := ev.(pipeline.Submit); ok {
		h.recordSubmit(r, sid, submit, next, render)
	}
	return next, render
}

func (h *QRHandler) recordSubmit(r *http.Request, sid string, ev pipeline.Submit, state pipeline.State, render pipeline.Render) {
	if stdErrors.Is(render.Err, pipeline.ErrEmptyInput) || stdErrors.Is(render.Err, pipeline.ErrInvalidScheme) {
		h.metrics.ValidationFailures.Add(1)
		return
	}

	if ev.Shorten {
		h.metrics.ShortenAttempts.Add(1)
	}
	if render.ShortenErr != nil {
		h.metrics.ShortenFailures.Add(1)
		h.audit.Log(sid, audit.ActionShortenerFailed, r.RemoteAddr, r.UserAgent(), map[string]interface{}{
			"provider": ev.Provider.String(),
			"reason":   render.ShortenErr.Error(),
		})
	}

	if render.Err != nil {
		h.metrics.EncodingFailures.Add(1)
		return
	}

	h.metrics.Generated.Add(1)
	h.audit.Log(sid, audit.ActionQRGenerated, r.RemoteAddr, r.UserAgent(), map[string]interface{}{
		"target_url": state.TargetURL,
		"shortened":  state.ShortURL != "",
		"color":      state.Color,
	})
}

func (h *QRHandler) writePage(w http.ResponseWriter, status int, state pipeline.State, render pipeline.Render, form formValues) {
	data := pageData{
		Colors:       pipeline.ColorPresets,
		Providers:    shortener.FormProviders(),
		Sizes:        qr.ValidSizes,
		Form:         form,
		Render:       render,
		DisplayWidth: min(render.Size, 600),
		Version:      h.version,
	}
	if render.HasImage {
		data.ImageURL = imageURL(state, render.Size, false)
		data.DownloadURL = imageURL(state, render.Size, true)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render page")
	}
}

func (h *QRHandler) stateResponse(state pipeline.State, render pipeline.Render) stateResponse {
	resp := stateResponse{
		HasImage:  render.HasImage,
		TargetURL: render.TargetURL,
		ShortURL:  render.ShortURL,
		Color:     state.Color,
		Size:      render.Size,
		Warnings:  render.Warnings,
		Errors:    render.Errors,
	}
	if render.ShortenErr != nil {
		resp.ShortenError = &errors.ErrorResponse{
			Error:   http.StatusText(http.StatusBadGateway),
			Message: render.ShortenErr.Error(),
			Code:    errors.ErrCodeShortenerFailure,
		}
	}
	if render.HasImage {
		resp.ImageURL = imageURL(state, render.Size, false)
		resp.DownloadURL = imageURL(state, render.Size, true)
		resp.GeneratedAt = state.GeneratedAt.Unix()
	}
	return resp
}

func imageURL(state pipeline.State, size int, download bool) string {
	if download {
		return fmt.Sprintf("/qr.png?size=%d&download=1", size)
	}
	// v busts browser caches when the session regenerates.
	return fmt.Sprintf("/qr.png?size=%d&v=%d", size, state.GeneratedAt.UnixNano())
}

func colorKey(hex string) string {
	for _, p := range pipeline.ColorPresets {
		if p.Hex == hex {
			return p.Key
		}
	}
	return pipeline.ColorPresets[0].Key
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
