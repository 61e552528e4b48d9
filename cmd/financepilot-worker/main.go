package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financepilot/internal/amqp"
	"financepilot/internal/backend"
	"financepilot/internal/cli"
	"financepilot/internal/config"
	"financepilot/internal/log"
	"financepilot/internal/services"
	"financepilot/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// run owns every resource the worker opens, so each one is released by its
// defer whether the worker stops on a signal or on an error.
func run(cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting financepilot-worker", log.FieldOperation, log.OpStartup)

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := services.NewLedgerService(cli.OpenLedger(cfg, logger), logger)
	exporter := services.NewExportProcessor(svc, repo,
		services.ExportProcessorConfig{Interval: cfg.ExportInterval}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logger.Warn("Export processor stop error", log.FieldError, err)
		}
	})

	if err := exporter.Start(ctx); err != nil {
		return fmt.Errorf("start export processor: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := exporter.Stop(stopCtx); err != nil {
			logger.Warn("Export processor stop error", log.FieldError, err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.EventsEnabled() {
		backendCfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return fmt.Errorf("mirror configuration: %w", err)
		}
		mirror, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
		if err != nil {
			return fmt.Errorf("create mirror: %w", err)
		}

		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer amqpClient.Close()

		syncWorker := worker.NewSyncWorker(mirror.Mirror, repo, logger)
		if err := syncWorker.Prepare(ctx); err != nil {
			// Not fatal: appends still land, only the header may be missing.
			logger.Error("Failed to prepare mirror", log.FieldError, err)
		}

		g.Go(func() error {
			err := amqpClient.ConsumeTransactions(gctx, syncWorker.HandleMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Mirroring appended rows", "backend", backendCfg.Type.String())
	} else {
		logger.Info("AMQP_URL not set, running export only")
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	cli.WaitForShutdown(ctx, done)
	return nil
}
