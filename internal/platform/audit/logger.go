package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"qrgen/internal/pkg/parser"
)

const (
	ActionQRGenerated     = "qr_generated"
	ActionQRDownloaded    = "qr_downloaded"
	ActionShortenerFailed = "shortener_failed"
)

type Event struct {
	ID        string
	SessionID string
	Action    string
	Metadata  map[string]interface{}
	IPAddress string
	UserAgent string
	OS        string
	Browser   string
	CreatedAt int64
}

// Logger writes audit events as structured log lines. Events are not
// persisted anywhere else.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger() *Logger {
	return &Logger{logger: log.Logger.With().Str("component", "audit").Logger()}
}

func NewLoggerWith(l zerolog.Logger) *Logger {
	return &Logger{logger: l}
}

func (l *Logger) Log(sessionID, action, ip, userAgent string, metadata map[string]interface{}) *Event {
	event := &Event{
		ID:        "evt_" + uuid.New().String(),
		SessionID: sessionID,
		Action:    action,
		Metadata:  metadata,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: time.Now().Unix(),
	}
	event.OS, event.Browser = parser.ParseUserAgent(userAgent)

	l.logger.Info().
		Str("event_id", event.ID).
		Str("session_id", event.SessionID).
		Str("action", event.Action).
		Str("ip_address", event.IPAddress).
		Str("os", event.OS).
		Str("browser", event.Browser).
		Fields(event.Metadata).
		Int64("created_at", event.CreatedAt).
		Msg("audit")

	return event
}
