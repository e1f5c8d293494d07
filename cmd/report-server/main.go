package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-report/internal/config"
	"daily-report/internal/handler"
	"daily-report/internal/messaging"
	"daily-report/internal/middleware"
	"daily-report/internal/observability"
	"daily-report/internal/repository/postgres"
	"daily-report/internal/security"
	"daily-report/internal/service"
	"daily-report/internal/session"
	"daily-report/internal/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting report server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgresql")

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			slog.Error("failed to apply schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("database schema ensured")
	}

	go collectDBStats(ctx, db, 15*time.Second)

	var (
		publisher service.EventPublisher
		broker    handler.BrokerStatus
	)
	if cfg.EventsEnabled() {
		rmqCtx, rmqCancel := context.WithTimeout(ctx, 60*time.Second)
		rmq, err := messaging.NewRabbitMQWithRetry(rmqCtx, cfg.RabbitMQURL, 10, 3*time.Second)
		rmqCancel()
		if err != nil {
			slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rmq.Close()
		publisher, broker = rmq, rmq
		slog.Info("report events enabled", slog.String("exchange", messaging.ReportExchange))
	} else {
		slog.Info("report events disabled")
	}

	if cfg.DevEmployee != nil {
		slog.Warn("development employee injected into sessions",
			slog.Int64("employee_id", cfg.DevEmployee.ID))
	}

	provider := service.NewProvider(postgres.NewConnPool(db), publisher, cfg.ReportsPerPage)
	openReports := func(ctx context.Context) (handler.ReportService, error) {
		svc, err := provider.Open(ctx)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	registry := web.NewRegistry(nil)
	registry.MustRegister(handler.ReportHandlerName, handler.ReportHandlerFactory(openReports))

	renderer, err := web.NewTemplateRenderer()
	if err != nil {
		slog.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessions := session.NewCookieStore(session.Options{
		Secret: []byte(cfg.SessionSecret),
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.IsProduction(),
	})

	front := web.NewFrontController(registry, sessions, renderer, security.NewTokenManager())

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, http.MethodPost)
	defer limiter.Stop()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, broker))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware())
		r.Use(middleware.Session(sessions, cfg.DevEmployee))

		r.Method(http.MethodGet, web.EntryPath, front)
		r.Method(http.MethodPost, web.EntryPath, front)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("report server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()

	slog.Info("server stopped gracefully")
}

// collectDBStats mirrors the pool statistics into the connection gauges
func collectDBStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats := db.Stats()
		observability.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		observability.DBConnectionsInUse.Set(float64(stats.InUse))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
