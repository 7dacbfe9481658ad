package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boltadmin/internal/api"
	"boltadmin/internal/assist"
	"boltadmin/internal/catalog"
	"boltadmin/internal/config"
	"boltadmin/internal/http/handlers"
	"boltadmin/internal/http/middleware"
	"boltadmin/internal/session"
	"boltadmin/internal/telemetry"
	"boltadmin/internal/upload"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize telemetry (optional)
	shutdown, enabled, err := telemetry.Init()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		shutdown = func() {}
	} else if enabled {
		log.Info().Msg("Telemetry initialized")
	}
	defer shutdown()

	backend := api.NewClient(cfg.APIBaseURL)
	sessions := session.NewStore(cfg.StateDir, backend)

	uploader, err := newUploader(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure image storage")
	}

	listing := catalog.NewListing(backend, sessions)
	workflow := catalog.NewWorkflow(sessions, backend, uploader)

	var suggest *assist.DescriptionGenerator
	if cfg.OpenAIKey != "" {
		suggest = assist.NewDescriptionGenerator(cfg.OpenAIKey)
		log.Info().Msg("AI description assist enabled")
	}

	// Restore a persisted session before serving, so a restart does not force
	// a fresh login while the token is still accepted.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	sessions.Restore(ctx)
	cancel()

	// Setup Echo
	e := echo.New()
	e.HideBanner = true

	renderer, err := handlers.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}
	e.Renderer = renderer

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h := handlers.New(sessions, backend, listing, workflow, suggest, os.Getenv("GOOGLE_CLIENT_ID"))
	h.Register(e, middleware.RequireAuth(sessions))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("backend", cfg.APIBaseURL).Msg("Console started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down console...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func newUploader(cfg *config.Config) (upload.Uploader, error) {
	switch cfg.ImageStorage {
	case "s3":
		return upload.NewS3Uploader(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	default:
		return upload.NewImgBBClient(cfg.ImgBBEndpoint, cfg.ImgBBKey), nil
	}
}
