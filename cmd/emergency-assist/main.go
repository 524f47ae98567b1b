package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-emergency-assist/internal/api"
	"github.com/mr1hm/go-emergency-assist/internal/classifier"
	"github.com/mr1hm/go-emergency-assist/internal/config"
	internalgrpc "github.com/mr1hm/go-emergency-assist/internal/grpc"
	"github.com/mr1hm/go-emergency-assist/internal/llm"
	"github.com/mr1hm/go-emergency-assist/internal/logging"
	"github.com/mr1hm/go-emergency-assist/internal/repository"
	"github.com/mr1hm/go-emergency-assist/internal/responders"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "store", cfg.Store.Backend)

	store, err := repository.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var gen llm.Generator
	gemini, err := llm.NewGemini(ctx, llm.GeminiOptions{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		slog.Warn("GEMINI_API_KEY not set, classification and knowledge search disabled")
	case err != nil:
		logging.Fatalf("Failed to create Gemini client: %v", err)
	default:
		gen = gemini
	}

	directory, err := responders.NewDirectory(responders.DirectoryOptions{
		APIKey:        cfg.Places.APIKey,
		BaseURL:       cfg.Places.BaseURL,
		MapsBaseURL:   cfg.Places.MapsBaseURL,
		RegionCode:    cfg.Places.RegionCode,
		RadiusMeters:  cfg.Places.RadiusMeters,
		Timeout:       cfg.Places.Timeout,
		DetailWorkers: cfg.Places.DetailWorkers,
	})
	if err != nil {
		logging.Fatalf("Failed to create places directory: %v", err)
	}
	if !directory.Configured() {
		slog.Warn("GOOGLE_MAPS_API_KEY not set, directory lookup disabled")
	}

	locator := responders.NewLocator(gen, responders.LocatorOptions{
		Model:           cfg.Gemini.SearchModel,
		Fallback:        cfg.Responder.DefaultLocality,
		TTL:             cfg.Responder.LocalityCacheTTL,
		CleanupInterval: time.Hour,
	})

	service := responders.NewService(
		classifier.New(gen, cfg.Gemini.Model),
		cfg.Responder.Limit,
		directory,
		responders.NewKnowledge(gen, cfg.Gemini.SearchModel, locator),
		responders.NewSeed(responders.DefaultSeedData()),
	)
	slog.Info("resolution tiers", "status", service.TierStatus())

	// Start gRPC health server
	grpcServer := internalgrpc.NewServer(service)
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	limiter := api.NewClientLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, 10*time.Minute, time.Minute)
	router.Use(api.RateLimitMiddleware(limiter))

	handler := api.NewHandler(service, store, store)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
