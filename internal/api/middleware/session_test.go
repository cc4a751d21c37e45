package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qrgen/internal/platform/auth"
	"qrgen/internal/platform/config"
)

func newSessionMiddleware() *SessionMiddleware {
	svc := auth.NewTokenService(config.SessionConfig{Secret: "secret", TTL: time.Hour})
	return NewSessionMiddleware(svc, "qrgen_session", false)
}

func TestSessionMiddleware(t *testing.T) {
	m := newSessionMiddleware()

	var seen string
	handler := m.Handle(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("New Session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen == "" {
			t.Fatal("handler did not receive a session id")
		}
		cookies := rr.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != "qrgen_session" {
			t.Fatalf("expected session cookie, got %v", cookies)
		}
		if !cookies[0].HttpOnly {
			t.Error("session cookie should be HttpOnly")
		}
	})

	t.Run("Existing Session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		first := seen
		cookie := rr.Result().Cookies()[0]

		req = httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen != first {
			t.Errorf("session id = %q, want %q", seen, first)
		}
		if len(rr.Result().Cookies()) != 0 {
			t.Error("fresh token should not be re-issued")
		}
	})

	t.Run("Tampered Cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "qrgen_session", Value: "tampered"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen == "" {
			t.Fatal("handler did not receive a session id")
		}
		if len(rr.Result().Cookies()) != 1 {
			t.Error("expected a replacement cookie")
		}
	})
}
