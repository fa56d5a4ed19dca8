package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/database"
	"github.com/example/haribookstore/internal/handlers"
	"github.com/example/haribookstore/internal/logging"
	"github.com/example/haribookstore/internal/mail"
	"github.com/example/haribookstore/internal/middleware"
	"github.com/example/haribookstore/internal/routes"
	"github.com/example/haribookstore/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.AppEnv)

	// Amounts go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if _, err := database.SeedBooks(db); err != nil {
		slog.Error("catalog seeding failed", "error", err)
		os.Exit(1)
	}

	sender, err := mail.NewSender(cfg)
	if err != nil {
		slog.Error("mail sender setup failed", "error", err)
		os.Exit(1)
	}
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	notifier, err := services.NewNotifier(sender, telegram, cfg.AdminEmail, cfg.UPIID)
	if err != nil {
		slog.Error("email templates failed to load", "error", err)
		os.Exit(1)
	}
	slog.Info("notifications ready", "mail_provider", cfg.MailProvider, "telegram", telegram.Enabled())

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "HariBookStore API",
		BodyLimit:    1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(cfg),
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Register(app, db, cfg, notifier)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	notifier.Wait()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
