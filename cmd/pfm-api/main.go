package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pfm/internal/amqp"
	"pfm/internal/auth"
	"pfm/internal/cache"
	"pfm/internal/cli"
	apphttp "pfm/internal/http"
	"pfm/internal/log"
	"pfm/internal/metrics"
	"pfm/internal/notify"
	"pfm/internal/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), "pfm-api")
	logger.Info("Starting pfm-api")

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, "pfm-api")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	m := metrics.New("pfm")

	cacheManager := cache.NewManager()
	reportCache, releaseCache := cli.ReportCache(context.Background(), cfg, logger, cacheManager)
	defer releaseCache()
	cacheManager.StartCleanup(time.Minute)

	// With a broker the API only publishes; pfm-notifier delivers.
	var notifier notify.Notifier
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		amqpClient = client
		notifier = notify.NewQueue(client)
		logger.Info("Notifications published to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		notifier = cli.DeliveryNotifier(cfg, logger)
	}
	// Requests only queue notifications; delivery runs in the background.
	dispatcher := notify.NewDispatcher(notifier, notify.DispatcherConfig{QueueSize: cfg.NotifyQueueSize})
	dispatcher.Start()
	notifier = dispatcher

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	milestoneSvc := services.NewMilestoneService(repo, notifier, m).WithReportCache(reportCache)
	budgetSvc := services.NewBudgetService(repo, notifier, m)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Users:          services.NewUserService(repo, tokens, milestoneSvc),
		Expenses:       services.NewExpenseService(repo, budgetSvc, milestoneSvc),
		Categories:     services.NewCategoryService(repo, milestoneSvc),
		Children:       services.NewChildrenService(repo, milestoneSvc),
		Questionnaires: services.NewQuestionnaireService(repo, milestoneSvc),
		Milestones:     milestoneSvc,
		Tokens:         tokens,
		Store:          repo,
		Metrics:        m,
		Logger:         logger,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MetricsEnabled:     cfg.MetricsEnabled,
	})

	var sweeper *services.MilestoneSweeper
	if cfg.SweepInterval > 0 {
		sweeper = services.NewMilestoneSweeper(repo, milestoneSvc, services.SweeperConfig{Interval: cfg.SweepInterval})
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if sweeper != nil {
			if err := sweeper.Stop(ctx); err != nil {
				logger.Error("Sweeper shutdown error", log.FieldError, err)
			}
		}
		if err := dispatcher.Close(ctx); err != nil {
			logger.Error("Notification dispatcher shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if sweeper != nil {
		g.Go(func() error {
			return sweeper.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("pfm-api failed", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
