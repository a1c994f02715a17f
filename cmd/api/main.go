// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the accounts HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations (idempotent).
//  4. Connect to PostgreSQL (pgxpool).
//  5. Connect to Redis.
//  6. Build the email pipeline (renderer, sender, dispatcher).
//  7. Wire stores, services and HTTP handlers.
//  8. Start the reset token purge loop.
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-accounts/internal/api"
	"github.com/taibuivan/yomira-accounts/internal/notify"
	"github.com/taibuivan/yomira-accounts/internal/platform/config"
	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
	"github.com/taibuivan/yomira-accounts/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-accounts/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-accounts/internal/platform/redis"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/internal/users/auth"
	"github.com/taibuivan/yomira-accounts/internal/users/password"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context lives until shutdown; startup gets a 30s deadline so
	// misconfiguration is caught quickly rather than hanging indefinitely.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log, pgstore.WithMaxConns(cfg.DatabaseMaxConns))
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisPoolSize, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 6. Email Pipeline ─────────────────────────────────────────────────
	renderer, err := notify.NewRenderer(cfg.SiteName)
	must(log, err, "parse email templates")

	var sender notify.Sender
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, renderer)
		log.Info("mail_transport_selected", slog.String("transport", "smtp"), slog.String("host", cfg.SMTPHost))
	} else {
		sender = notify.NewLogSender(renderer, log)
		log.Warn("mail_transport_selected", slog.String("transport", "log"))
	}

	dispatcher := notify.NewDispatcher(sender, cfg.NotifyTimeout, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	accountStore := account.NewPostgresStore(pool)
	sessionStore := auth.NewRedisSessionStore(rdb, cfg.RememberSessionTTL)

	var throttle auth.LoginThrottle
	if cfg.LoginLockoutThreshold > 0 {
		throttle = auth.NewRedisLoginThrottle(rdb, cfg.LoginLockoutThreshold, cfg.LoginLockoutWindow)
	}

	authService := auth.NewService(auth.Dependencies{
		Accounts: accountStore,
		Sessions: sessionStore,
		Throttle: throttle,
		Notifier: dispatcher,
		Hasher:   sec.NewBcryptHasher(0),
		Policy:   password.NewPolicy(password.Complexity(), password.Length(cfg.PasswordMinLength, cfg.PasswordMaxLength)),
		Settings: auth.Settings{
			PublicBaseURL: cfg.PublicBaseURL,
			ResetTokenTTL: cfg.ResetTokenTTL,
			RememberTTL:   cfg.RememberSessionTTL,
			EphemeralTTL:  cfg.EphemeralSessionTTL,
		},
	})

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.CookieSecure),
		Account:   account.NewHandler(account.NewService(accountStore)),
	}

	// ── 8. Reset Token Purge ──────────────────────────────────────────────
	go purgeLoop(rootCtx, log, authService, cfg.ResetPurgeInterval)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, authService, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete, then drain emails.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	exitCode := 0
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		exitCode = 1
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.NotifyTimeout+time.Second)
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Error("notification_drain_incomplete", slog.Any("error", err))
	}
	drainCancel()
	rootCancel()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	log.Info("server_stopped_cleanly")
}

// purgeLoop clears lapsed reset tokens every interval until ctx is done.
func purgeLoop(ctx context.Context, log *slog.Logger, service *auth.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := service.PurgeExpiredResetTokens(ctx); err != nil {
				log.Error("reset_token_purge_failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
