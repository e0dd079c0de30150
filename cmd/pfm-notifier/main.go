package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pfm/internal/amqp"
	"pfm/internal/cli"
	"pfm/internal/log"
	"pfm/internal/metrics"
	"pfm/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), "pfm-notifier")
	logger.Info("Starting pfm-notifier")

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, "pfm-notifier")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier worker",
			"error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	m := metrics.New("pfm_notifier")
	w := worker.NewNotificationWorker(cli.DeliveryNotifier(cfg, logger), m, logger)

	// Metrics only; the worker has no other HTTP surface.
	var metricsSrv *http.Server
	if cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, client)
	})
	if metricsSrv != nil {
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("pfm-notifier failed", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
