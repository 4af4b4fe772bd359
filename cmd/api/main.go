package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coinbridge/checkout-gateway/internal/config"
	"github.com/coinbridge/checkout-gateway/internal/handler"
	"github.com/coinbridge/checkout-gateway/internal/invoicer"
	"github.com/coinbridge/checkout-gateway/internal/logging"
	"github.com/coinbridge/checkout-gateway/internal/middleware"
	"github.com/coinbridge/checkout-gateway/internal/repository"
	"github.com/coinbridge/checkout-gateway/internal/service"
	"github.com/coinbridge/checkout-gateway/internal/service/checkout"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("checkout-gateway", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	records := repository.NewPaymentRecordRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	settingsSvc := service.NewSettingsService(settingsRepo, cfg.MerchantID)
	if err := settingsSvc.EnsureDefault(ctx); err != nil {
		slog.Error("failed to seed default settings", "error", err)
		os.Exit(1)
	}

	invoicerClient := invoicer.NewHTTPClient(
		cfg.InvoicerBaseURL,
		cfg.CallbackSecret,
		time.Duration(cfg.InvoicerTimeoutS)*time.Second,
	)

	checkoutSvc := checkout.NewService(invoicerClient, records, cfg.CallbackURL, cfg.LinkbackURL)
	notificationSvc := service.NewNotificationService(invoicerClient, records, logger)

	sweeper := service.NewExpirySweeper(
		records,
		settingsSvc,
		logger,
		time.Duration(cfg.SweepIntervalS)*time.Second,
		time.Duration(cfg.SweepGraceMinutes)*time.Minute,
	)
	go sweeper.Start(ctx)

	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, settingsSvc)
	callbackHandler := handler.NewCallbackHandler(notificationSvc)
	paymentHandler := handler.NewPaymentHandler(records)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	healthHandler := handler.NewHealthHandler(db)

	authRequired := middleware.Auth(cfg.AdminJWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/checkout", checkoutHandler.Initiate)
	mux.HandleFunc("GET /api/v1/checkout/currencies", checkoutHandler.Currencies)
	mux.HandleFunc("POST /api/v1/callbacks/invoicer", callbackHandler.ReceiveInvoicerCallback)
	mux.HandleFunc("GET /api/v1/payments/{invoice_id}", paymentHandler.GetByInvoice)

	mux.Handle("GET /api/v1/settings", authRequired(http.HandlerFunc(settingsHandler.Get)))
	mux.Handle("PUT /api/v1/settings", authRequired(http.HandlerFunc(settingsHandler.Update)))

	chain := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
