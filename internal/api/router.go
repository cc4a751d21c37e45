package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
	"qrgen/internal/pkg/errors"
)

type Dependencies struct {
	QRHandler         *handlers.QRHandler
	HealthHandler     *handlers.HealthHandler
	MetricsHandler    *handlers.MetricsHandler
	SessionMiddleware *middleware.SessionMiddleware
	RateLimiter       *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	sessionMid := deps.SessionMiddleware
	limit := deps.RateLimiter

	// HTML form
	router.GET("/", chain(deps.QRHandler.Page, sessionMid.Handle))
	router.POST("/generate", chain(deps.QRHandler.Generate, sessionMid.Handle, limit.Handle))
	router.POST("/size", chain(deps.QRHandler.SelectSize, sessionMid.Handle))
	router.POST("/clear", chain(deps.QRHandler.Clear, sessionMid.Handle))
	router.GET("/qr.png", chain(deps.QRHandler.Image, sessionMid.Handle))

	// JSON API
	router.POST("/api/v1/qr", chain(deps.QRHandler.APIGenerate, sessionMid.Handle, limit.Handle))
	router.GET("/api/v1/state", chain(deps.QRHandler.State, sessionMid.Handle))
	router.GET("/api/v1/providers", wrap(deps.QRHandler.Providers))
	router.GET("/api/v1/colors", wrap(deps.QRHandler.Colors))

	// Operations
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Not found", nil)
	})

	return middleware.RequestLogger(router)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}
