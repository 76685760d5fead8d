package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/vnmchuo/spend-analytics/config"
	"github.com/vnmchuo/spend-analytics/internal/analytics"
	"github.com/vnmchuo/spend-analytics/internal/api"
	"github.com/vnmchuo/spend-analytics/internal/audit"
	"github.com/vnmchuo/spend-analytics/internal/directory"
	"github.com/vnmchuo/spend-analytics/internal/gateway"
	"github.com/vnmchuo/spend-analytics/internal/telemetry"
	"github.com/vnmchuo/spend-analytics/pkg/ratelimit"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Init telemetry
	shutdownTracer, err := telemetry.InitTracer("spend-analytics", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	// 3. Connect PostgreSQL
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}
	log.Println("PostgreSQL connected")

	// 4. Connect Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to ping redis: %v", err)
	}
	log.Println("Redis connected")

	// 5. Init audit store
	auditStore := audit.NewPostgresStore(pool)

	// 6. Init rate limiter
	limiter := ratelimit.NewLimiter(rdb, cfg.DefaultRateLimitRPM)

	// 7. Init upstream gateway client
	var client gateway.API = gateway.New(cfg.GatewayBaseURL, cfg.GatewayAPIKey)

	// 8. Init team directory and model mapper
	teams := directory.NewTeamDirectory(client)
	models := directory.NewModelMapper(client, cfg.ModelMapTTL)

	// Warm the team cache; a cold gateway is not fatal at startup.
	if _, err := teams.TeamIDs(ctx); err != nil {
		log.Printf("team directory warm-up failed: %v", err)
	}

	// 9. Init analytics service
	svc := analytics.NewService(client, teams, models)

	// 10. Init handler
	tracer := otel.GetTracerProvider().Tracer("spend-analytics")
	handler := api.NewHandler(svc, auditStore, tracer)

	// 11. Init Chi router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Public routes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"spend-analytics"}`))
	})

	// Analytics routes
	r.Group(func(r chi.Router) {
		r.Use(api.RateLimit(limiter))
		r.Get("/tokens", handler.HandleTeamTokens)
		r.Get("/tokens/timeseries", handler.HandleTimeSeries)
		r.Get("/tokens/models", handler.HandleModelUsage)
		r.Get("/tokens/success-rate", handler.HandleSuccessRate)
		r.Get("/tokens/cost-efficiency", handler.HandleCostEfficiency)
	})

	// Admin routes
	r.Get("/admin/queries", handler.HandleRecentQueries)

	// 12. Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Spend analytics starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
