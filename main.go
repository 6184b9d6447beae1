package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venuebook/payment-service/config"
	"github.com/venuebook/payment-service/internal/consumer"
	"github.com/venuebook/payment-service/internal/handler"
	"github.com/venuebook/payment-service/internal/location"
	"github.com/venuebook/payment-service/internal/metrics"
	"github.com/venuebook/payment-service/internal/middleware"
	"github.com/venuebook/payment-service/internal/processor"
	"github.com/venuebook/payment-service/internal/repository"
	"github.com/venuebook/payment-service/internal/service"
	"github.com/venuebook/payment-service/pkg/auth"
	"github.com/venuebook/payment-service/pkg/database"
	"github.com/venuebook/payment-service/pkg/logging"
	"github.com/venuebook/payment-service/pkg/rabbitmq"
)

const (
	splitRequestMaxAge = 7 * 24 * time.Hour
	expirySweepEvery   = time.Hour
)

func main() {
	logging.Setup()
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewNotificationConsumer(consumer.LogSender{}).Start(msgs)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	// Repositories
	bookingRepo := repository.NewBookingRepository(db)
	splitRepo := repository.NewSplitRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	bookingSvc := service.NewBookingService(bookingRepo)
	ledgerSvc := service.NewLedgerService(bookingRepo, splitRepo)
	reconcileSvc := service.NewReconcileService(bookingRepo, splitRepo, notificationRepo, publisher, m)

	// Processor clients
	paystack := processor.NewPaystack(cfg.PaystackSecretKey, cfg.PaystackWebhookSecret)
	stripe := processor.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	detector := location.NewDetector(cfg.GeoAPIURL, cfg.GeoAPIToken, "NG")

	verifier := auth.NewVerifier(cfg.JWTSecret)

	// Stale pending requests sweep
	go func() {
		ticker := time.NewTicker(expirySweepEvery)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := reconcileSvc.ExpireStale(context.Background(), splitRequestMaxAge); err != nil {
				slog.Error("expiry sweep failed", "error", err)
			}
		}
	}()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "payment-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	splitHandler := handler.NewSplitHandler(ledgerSvc)
	paymentHandler := handler.NewPaymentHandler(splitRepo, detector, paystack, stripe, cfg.AppBaseURL)
	handler.NewBookingHandler(bookingSvc, notificationRepo, splitHandler, paymentHandler).RegisterRoutes(e, verifier)
	handler.NewWebhookHandler(reconcileSvc, paystack, stripe, m).RegisterRoutes(e)

	slog.Info("payment service starting", "port", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
