package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/terraincognita07/stillhere/internal/api"
	"github.com/terraincognita07/stillhere/internal/config"
	"github.com/terraincognita07/stillhere/internal/db"
	"github.com/terraincognita07/stillhere/internal/notify"
	"github.com/terraincognita07/stillhere/internal/services"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	location := mustLoadLocation(cfg.Timezone)
	time.Local = location

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("database init failed", "error", err)
		os.Exit(1)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	notifier := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.ResendFrom, cfg.NotifierTimeout)
	handler := api.NewHandler(database, cfg, location, notifier)

	app := fiber.New(fiber.Config{
		AppName:               "Still Here",
		DisableStartupMessage: true,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Device-ID, X-Admin-Token",
	}))

	api.RegisterRoutes(app, handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	if notifier.Enabled() {
		scheduler := services.NewSweepScheduler(handler.SweepService(), cfg.SweepInterval)
		scheduler.Start(lifecycleCtx)
	} else {
		slog.Warn("resend api key missing, background sweep disabled; alerts can still be triggered via POST /api/sweep")
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("stillhere listening",
		"port", cfg.Port,
		"db", cfg.DBPath,
		"tz", location.String(),
		"threshold", cfg.InactivityThreshold.String(),
		"cooldown", cfg.NotificationCooldown.String(),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("invalid timezone, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}
