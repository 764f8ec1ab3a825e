// Package main is the entry point for the civic issue reporting server.
// It exposes the REST API for photo-based issue reports, AI-assisted
// classification, role-scoped dashboards, worker assignment and
// before/after resolution verification.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicpulse/civic-server/internal/blob"
	"github.com/civicpulse/civic-server/internal/config"
	"github.com/civicpulse/civic-server/internal/database"
	"github.com/civicpulse/civic-server/internal/handlers"
	"github.com/civicpulse/civic-server/internal/logging"
	"github.com/civicpulse/civic-server/internal/middleware"
	"github.com/civicpulse/civic-server/internal/oracle"
	"github.com/civicpulse/civic-server/internal/services"
	"github.com/civicpulse/civic-server/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting civic server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"model", cfg.AnthropicModel,
	)

	ctx := context.Background()

	// Issue store: PostgreSQL, or memory for local development
	st, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	blobs, err := blob.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		sugar.Fatalf("Failed to open upload dir: %v", err)
	}

	if cfg.AnthropicAPIKey == "" {
		sugar.Warn("ANTHROPIC_API_KEY is not set; classification and chat will degrade")
	}
	orc := oracle.NewClaude(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.OracleTimeout)

	// Rate limiting is optional; without Redis every request is allowed
	var limiter *middleware.Limiter
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			sugar.Warnw("Redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer rdb.Close()
			limiter = middleware.NewLimiter(rdb, cfg.RateLimitRPM, time.Minute)
		}
	}

	// Initialize services
	activitySvc := services.NewActivityService(st, sugar)
	issueSvc := services.NewIssueService(st, blobs, orc, activitySvc, services.Policy{
		RequireSameDepartment:    cfg.AssignRequireSameDepartment,
		RecomputeSLAOnReclassify: cfg.RecomputeSLAOnReclassify,
	}, sugar)
	chatSvc := services.NewChatService(orc, cfg.ChatHistoryLimit, sugar)

	// Initialize handlers
	exposeInternal := cfg.IsDevelopment()
	router := handlers.NewRouter(handlers.RouterConfig{
		Issues:          handlers.NewIssueHandler(issueSvc, cfg.MaxUploadBytes, exposeInternal, sugar),
		Chat:            handlers.NewChatHandler(chatSvc, exposeInternal, sugar),
		Health:          handlers.NewHealthHandler(st, sugar),
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		Limiter:         limiter,
		RequestTimeout:  cfg.OracleTimeout + 30*time.Second,
		UploadDir:       blobs.Dir(),
		UploadURLPrefix: cfg.UploadURLPrefix,
		Logger:          logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OracleTimeout + 45*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("DATABASE_URL is required outside development")
		}
		logger.Warn("DATABASE_URL is not set; using the in-memory store")
		return store.NewMemoryStore(), nil
	}

	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return store.NewPostgresStore(db, logger), nil
}
