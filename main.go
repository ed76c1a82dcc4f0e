package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MohamedH1998/onbored-sub001/analytics"
	"github.com/MohamedH1998/onbored-sub001/config"
	"github.com/MohamedH1998/onbored-sub001/database"
	"github.com/MohamedH1998/onbored-sub001/handlers"
	"github.com/MohamedH1998/onbored-sub001/inference"
	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/middleware"
	"github.com/MohamedH1998/onbored-sub001/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL (accounts, funnels, insights) ---
	dbClient, err := database.NewPostgresDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize PostgreSQL database")
	}
	defer dbClient.Close()

	// --- ClickHouse (events, replays, account health) ---
	chClient, err := database.NewClickHouseDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize ClickHouse database")
	}
	defer chClient.Close()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dbClient.EnsureSchema(schemaCtx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to apply PostgreSQL schema")
	}
	if err := chClient.EnsureSchema(schemaCtx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to apply ClickHouse schema")
	}
	schemaCancel()

	// --- Stores ---
	analyticsStore := store.NewAnalyticsStore(chClient)
	accountStore := store.NewAccountStore(dbClient.DB)
	funnelStore := store.NewFunnelStore(dbClient.DB)
	insightStore := store.NewInsightStore(dbClient.DB)

	// --- Inference ---
	model, err := inference.NewModel(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize inference model")
	}
	generator := inference.NewGenerator(model, cfg)
	pipeline := analytics.NewInsightPipeline(insightStore, funnelStore, generator)

	// --- Handlers ---
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsStore, accountStore)
	insightHandlers := handlers.NewInsightHandlers(analyticsStore, insightStore, pipeline, cfg.InferenceTimeout+30*time.Second)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.FEOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.AuthRequired([]byte(cfg.JWTSecret), cfg.ServiceKey))
	{
		api.POST("/track", analyticsHandlers.TrackEvent)
		api.POST("/replay", analyticsHandlers.TrackReplay)

		project := api.Group("/projects/:projectId")
		{
			project.GET("/journeys", analyticsHandlers.GetJourneyGraph)
			project.GET("/accounts/health", analyticsHandlers.GetAccountHealth)
			project.GET("/sessions/:sessionId/insight", insightHandlers.GetInsight)
			project.POST("/sessions/:sessionId/insight", insightHandlers.GenerateInsight)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("API server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}

	logging.Info().Msg("Server exiting")
}
