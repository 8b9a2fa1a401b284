package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tastetarget/internal/domain"
	"tastetarget/internal/infra"
)

// TargetingPipeline is the slice of the targeting pipeline the HTTP layer
// depends on.
type TargetingPipeline interface {
	GenerateTargeting(ctx context.Context, brief domain.Brief) (*domain.TargetingResult, error)
}

// App is the handler container; everything request handlers need is injected
// here at startup.
type App struct {
	Pipeline       TargetingPipeline
	Logger         infra.Logger
	Version        string
	QlooConfigured bool
	HFConfigured   bool
}

func NewApp(pipeline TargetingPipeline, logger infra.Logger, version string, qlooConfigured, hfConfigured bool) *App {
	return &App{
		Pipeline:       pipeline,
		Logger:         logger,
		Version:        version,
		QlooConfigured: qlooConfigured,
		HFConfigured:   hfConfigured,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
