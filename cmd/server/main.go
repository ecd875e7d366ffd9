package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/shelf/internal"
	"github.com/dukerupert/shelf/internal/auth"
	"github.com/dukerupert/shelf/internal/cookie"
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/email"
	"github.com/dukerupert/shelf/internal/events"
	"github.com/dukerupert/shelf/internal/handler/api"
	"github.com/dukerupert/shelf/internal/jobs"
	"github.com/dukerupert/shelf/internal/middleware"
	"github.com/dukerupert/shelf/internal/postgres"
	"github.com/dukerupert/shelf/internal/router"
	"github.com/dukerupert/shelf/internal/routes"
	"github.com/dukerupert/shelf/internal/service"
	"github.com/dukerupert/shelf/internal/storage"
	"github.com/dukerupert/shelf/internal/telemetry"
	"github.com/dukerupert/shelf/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	version, err := internal.Migrate(ctx, sqlDB, logger)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database schema ready", "version", version)

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Stores
	productStore := postgres.NewProductStore(pool)
	profileStore := postgres.NewProfileStore(pool)
	userStore := postgres.NewUserStore(pool)

	// File storage
	fileStorage, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "provider", cfg.Storage.Provider)

	// Change events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		publisher = natsPublisher
		logger.Info("Publishing change events", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}
	defer publisher.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics("shelf", registry)
	telemetry.Business = telemetry.NewBusinessMetrics("shelf", registry)

	// Account notices
	var mailer email.Sender = email.LogSender{Logger: logger}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		}, logger)
	}
	outbox := email.NewAsyncSender(mailer, 64, logger)
	notifier := email.NewNotifier(outbox, cfg.SMTP.FromName)

	// Services
	hasher := auth.NewHasher()
	authService := service.NewAuthService(userStore, profileStore, hasher, cfg.SessionTTL, logger)
	productService := service.NewProductService(productStore, publisher, logger)
	profileService := service.NewProfileService(profileStore, userStore, fileStorage, hasher, publisher, notifier, logger)

	// Rate limiting
	apiLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	defer apiLimiter.Stop()

	authLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.AuthRequestsPerMinute / 60,
		BurstSize:         cfg.RateLimit.AuthBurst,
	})
	defer authLimiter.Stop()

	// Router
	r := router.New()
	r.Use(
		middleware.Recover,
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithSession(authService),
		telemetry.SentryContextMiddleware(sentryUser),
		middleware.WithRequestLogger(logger),
		middleware.AccessLog,
		httpMetrics.Middleware,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{HSTS: cfg.IsProd()}),
		router.CORS(router.ParseOrigins(cfg.CORSOrigins)),
		apiLimiter.Middleware,
		middleware.Timeout(),
	)

	cookies := cookie.NewConfig("", cfg.IsProd())
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		AuthHandler:      api.NewAuthHandler(authService, cookies, logger),
		ProductHandler:   api.NewProductHandler(productService, logger),
		DashboardHandler: api.NewDashboardHandler(productService, logger),
		ProfileHandler:   api.NewProfileHandler(profileService, logger),
		AuthRateLimiter:  authLimiter,
	})

	opsDeps := routes.OpsDeps{
		HealthHandler:  api.NewHealthHandler(pool),
		MetricsHandler: httpMetrics.Handler(),
	}
	if local, ok := fileStorage.(*storage.LocalStorage); ok {
		opsDeps.UploadsDir = local.Dir()
	}
	routes.RegisterOpsRoutes(r, opsDeps)

	// Background worker
	sessionCleanup := jobs.NewCleanupExpiredSessions(authService, logger)
	bg := worker.NewWorker(worker.Config{
		Interval:   cfg.SessionSweepInterval,
		RunOnStart: true,
	}, logger, sessionCleanup)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := bg.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("worker stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	stop()
	<-workerDone
	if err := outbox.Close(shutdownCtx); err != nil {
		logger.Warn("email queue not drained", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}

// sentryUser tags error reports with the signed-in user.
func sentryUser(ctx context.Context) *telemetry.UserInfo {
	session := domain.SessionFromContext(ctx)
	if session == nil {
		return nil
	}
	return &telemetry.UserInfo{ID: session.UserID.String(), Email: session.Email}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
