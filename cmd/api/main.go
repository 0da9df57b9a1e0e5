package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/npcforge/dialogue-engine/internal/config"
	"github.com/npcforge/dialogue-engine/internal/engine"
	"github.com/npcforge/dialogue-engine/internal/handlers"
	"github.com/npcforge/dialogue-engine/internal/logger"
	"github.com/npcforge/dialogue-engine/internal/middleware"
	"github.com/npcforge/dialogue-engine/internal/services"
	"github.com/npcforge/dialogue-engine/internal/session"
	"github.com/npcforge/dialogue-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Dialogue Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.Provider)

	var embedder services.Embedder
	var composer services.Composer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		svc := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EmbedModel)
		embedder, composer = svc, svc
		log.Info("Using OpenAI provider", "chat_model", cfg.OpenAIModel, "embed_model", cfg.EmbedModel)
	case config.ProviderGemini:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		svc, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbedModel)
		cancel()
		if err != nil {
			log.Error("Failed to initialize Gemini provider", "error", err)
			os.Exit(1)
		}
		embedder, composer = svc, svc
		log.Info("Using Gemini provider", "chat_model", cfg.GeminiModel)
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.Provider,
			"supported", []string{config.ProviderOpenAI, config.ProviderGemini})
		os.Exit(1)
	}

	classifier := services.NewHFClassifierService(cfg.ClassifierKey, cfg.ClassifierModel).
		WithBaseURL(cfg.ClassifierURL)

	sessions := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sessions.Ping(pingCtx); err != nil {
		pingCancel()
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	pingCancel()
	log.Info("Redis connection established")

	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 30*time.Second)
	memories, err := storage.NewMongoStore(mongoCtx, cfg.MongoURI, cfg.MongoDB, log)
	mongoCancel()
	if err != nil {
		log.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	log.Info("MongoDB connection established", "database", cfg.MongoDB)

	eng := engine.New(embedder, classifier, composer, sessions, memories, engine.Options{
		DriftThreshold: cfg.DriftThreshold,
		RankLimit:      cfg.RankLimit,
		DefaultContext: cfg.DefaultContext,
		ContentRating:  cfg.ContentRating,
	}, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(map[string]services.HealthChecker{
		"sessions": sessions,
		"memories": memories,
	}, log))
	mux.Handle("/v1/turn", handlers.NewTurnHandler(eng, log))
	mux.Handle("/v1/session/", handlers.NewSessionHandler(eng, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := sessions.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := memories.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
