package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	apiContext "qrgen/internal/api/context"
	"qrgen/internal/platform/auth"
)

type SessionMiddleware struct {
	tokenSvc   *auth.TokenService
	cookieName string
	secure     bool
}

func NewSessionMiddleware(tokenSvc *auth.TokenService, cookieName string, secure bool) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "qrgen_session"
	}
	return &SessionMiddleware{tokenSvc: tokenSvc, cookieName: cookieName, secure: secure}
}

// Handle resolves the caller's session id from the signed cookie, issuing a
// fresh session when the cookie is missing, invalid or expired. Tokens past
// half their lifetime are re-issued so active sessions do not lapse.
func (m *SessionMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		reissue := true

		if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
			claims, err := m.tokenSvc.ValidateToken(cookie.Value)
			if err == nil {
				sessionID = claims.SessionID
				if claims.IssuedAt != nil && time.Since(claims.IssuedAt.Time) < m.tokenSvc.TTL()/2 {
					reissue = false
				}
			} else {
				log.Debug().Err(err).Msg("discarding invalid session cookie")
			}
		}

		if sessionID == "" {
			sessionID = auth.NewSessionID()
		}

		if reissue {
			token, err := m.tokenSvc.GenerateSessionToken(sessionID)
			if err != nil {
				log.Error().Err(err).Msg("failed to sign session token")
			} else {
				http.SetCookie(w, &http.Cookie{
					Name:     m.cookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(m.tokenSvc.TTL().Seconds()),
					HttpOnly: true,
					Secure:   m.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
		}

		ctx := context.WithValue(r.Context(), apiContext.SessionID, sessionID)
		next(w, r.WithContext(ctx))
	}
}

// SessionIDFrom returns the id stored by SessionMiddleware.
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(apiContext.SessionID).(string)
	return id
}
