package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tastetarget/internal/http/handlers"
	"tastetarget/internal/http/httpapi"
	"tastetarget/internal/infra"
	"tastetarget/internal/providers/taste"
	"tastetarget/internal/providers/textgen"
	"tastetarget/internal/targeting"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	tasteClient := taste.NewClient(taste.Options{
		APIKey:         cfg.QlooAPIKey,
		BaseURL:        cfg.QlooBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.TasteTimeout,
	})
	textClient := textgen.NewClient(textgen.Options{
		APIKey:         cfg.HFAPIKey,
		BaseURL:        cfg.HFBaseURL,
		Model:          cfg.HFModel,
		FallbackModel:  cfg.HFFallbackModel,
		Logger:         &logger,
		RequestTimeout: cfg.TextGenTimeout,
	})

	pipeline := targeting.NewPipeline(
		tasteClient,
		targeting.NewPersonaSynthesizer(textClient, &logger),
		targeting.NewCopySynthesizer(textClient, &logger),
		logger,
	)

	app := handlers.NewApp(pipeline, logger, version, cfg.QlooConfigured(), cfg.HFConfigured())
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("version", version).
			Bool("qloo_configured", cfg.QlooConfigured()).
			Bool("hf_configured", cfg.HFConfigured()).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
