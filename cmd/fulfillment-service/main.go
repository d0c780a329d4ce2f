package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/skylane/skylane-fulfillment-service/internal/app/background"
	"github.com/skylane/skylane-fulfillment-service/internal/app/setup"
	"github.com/skylane/skylane-fulfillment-service/internal/config"
	httpdelivery "github.com/skylane/skylane-fulfillment-service/internal/delivery/http"
	"github.com/skylane/skylane-fulfillment-service/internal/delivery/http/handlers"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/migrate"
	"github.com/skylane/skylane-fulfillment-service/internal/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	deps, err := setup.InitializeDependencies()
	if err != nil {
		log.Fatalf("failed to initialize dependencies: %v", err)
	}
	setupLogger(deps.Config)

	if path := deps.Config.FulfillmentDB.MigrationsPath; path != "" {
		if err := migrate.RunMigrations(deps.DB, path); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	usecases := setup.InitializeUseCases(deps)

	bookingVerifier := webhook.NewHMACVerifier(deps.Config.BookingProvider.WebhookSecret)
	paymentVerifier := webhook.NewHMACVerifier(deps.Config.PaymentProvider.WebhookSecret)

	router := httpdelivery.NewRouter(&httpdelivery.Handlers{
		BookingWebhook: handlers.NewBookingWebhookHandler(
			bookingVerifier,
			deps.Repositories.WebhookEventRepo,
			deps.Publisher,
			setup.AllowUnverifiedWebhooks(deps),
			deps.Metrics,
		),
		PaymentWebhook: handlers.NewPaymentWebhookHandler(paymentVerifier, usecases.Payments, deps.Metrics),
		Refund:         handlers.NewRefundHandler(usecases.Payments),
		Intent:         handlers.NewIntentHandler(usecases.Payments),
		Change:         handlers.NewChangeHandler(usecases.Changes),
		Health:         handlers.NewHealthHandler(deps.DB, deps.Redis),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tasks := background.NewBackgroundTasks(
		usecases.Events,
		usecases.Fulfillment,
		deps.Repositories.OrderRepo,
		deps.Subscriber,
		deps.Scheduler,
		deps.Config.KafkaService.Topic,
		deps.Config.KafkaService.GroupID,
	)
	tasks.StartAll(ctx)

	addr := fmt.Sprintf("%s:%s", deps.Config.HTTPServer.Host, deps.Config.HTTPServer.Port)
	go func() {
		if err := router.Start(addr); err != nil {
			slog.Error("http server stopped", "error", err.Error())
			stop()
		}
	}()
	slog.Info("fulfillment service started", "addr", addr, "env", deps.Config.Env)

	<-ctx.Done()
	slog.Info("shutting down")
	if err := router.Close(); err != nil {
		slog.Error("failed to close http server", "error", err.Error())
	}
	if err := deps.Publisher.Close(); err != nil {
		slog.Error("failed to close kafka publisher", "error", err.Error())
	}
}

func setupLogger(cfg *config.FulfillmentConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogConfig.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogConfig.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
