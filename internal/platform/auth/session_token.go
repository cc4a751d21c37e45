package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"qrgen/internal/platform/config"
)

const issuer = "qrgen"

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the session cookie value. The token only
// carries the session id; state stays server-side.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService signs with cfg.Secret. Without one a random key is
// generated, so sessions do not survive a restart.
func NewTokenService(cfg config.SessionConfig) *TokenService {
	secret := cfg.Secret
	if secret == "" {
		log.Warn().Msg("session.secret is not set; using a random per-process signing key")
		secret = rand.Text()
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

func NewSessionID() string {
	return uuid.New().String()
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) GenerateSessionToken(sessionID string) (string, error) {
	now := s.now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if _, err := uuid.Parse(claims.SessionID); err != nil {
			return nil, errors.New("invalid session id")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
