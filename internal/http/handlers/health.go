package handlers

import (
	"net/http"
	"time"
)

// Health reports service status and which upstream credentials are
// configured. It never performs upstream calls.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"version":         a.Version,
		"qloo_configured": a.QlooConfigured,
		"hf_configured":   a.HFConfigured,
	})
}
