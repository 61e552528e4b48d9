package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financepilot/internal/amqp"
	"financepilot/internal/cli"
	"financepilot/internal/config"
	apphttp "financepilot/internal/http"
	"financepilot/internal/log"
	"financepilot/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	store := cli.OpenLedger(cfg, logger)
	opts := []services.ServiceOption{services.WithListLimit(cfg.ListLimit)}

	if cfg.EventsEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Appends still work without the broker; the worker just sees nothing.
			logger.Warn("AMQP unavailable, append events disabled", log.FieldError, err)
		} else {
			opts = append(opts, services.WithPublisher(amqpClient))
		}
	}

	svc := services.NewLedgerService(store, logger, opts...)
	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", log.FieldError, err)
		}
	})

	logger.Info("Starting financepilot server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldLedgerPath, cfg.LedgerFile,
		"events", cfg.EventsEnabled())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if cerr := svc.Close(); cerr != nil {
			logger.Error("Service close error", log.FieldError, cerr)
		}
		return err
	}

	cli.WaitForShutdown(ctx, done)
	return nil
}
