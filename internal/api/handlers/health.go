package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthHandler struct {
	sessions SessionCounter
}

func NewHealthHandler(sessions SessionCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	// Shortening providers are not probed.
	response := struct {
		Status    string `json:"status"`
		Timestamp int64  `json:"timestamp"`
		Sessions  int    `json:"sessions"`
	}{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Sessions:  h.sessions.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
