package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tastetarget/internal/domain"
	"tastetarget/internal/middleware"
)

// GenerateTargeting runs the targeting pipeline for a product brief and
// returns the full response envelope.
func (a *App) GenerateTargeting(w http.ResponseWriter, r *http.Request) {
	var brief domain.Brief
	if err := json.NewDecoder(r.Body).Decode(&brief); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := brief.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_brief", err.Error())
		return
	}

	logger := a.Logger.With().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("product", brief.ProductName).
		Logger()

	result, err := a.Pipeline.GenerateTargeting(r.Context(), brief)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			logger.Error().Err(err).Msg("targeting generation failed")
			a.error(w, http.StatusInternalServerError, "generation_failed", "targeting generation failed")
			return
		}
		logger.Error().Err(err).Msg("targeting pipeline error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	logger.Info().
		Int("personas", len(result.Personas)).
		Str("data_source", result.DataSource).
		Msg("targeting generated")
	a.json(w, http.StatusOK, result)
}
