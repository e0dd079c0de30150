// Package cli provides common initialization utilities shared by
// cmd/pfm-api, cmd/pfm-notifier and cmd/pfmctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pfm/internal/cache"
	"pfm/internal/config"
	"pfm/internal/log"
	"pfm/internal/notify"
	"pfm/internal/storage"

	"github.com/joho/godotenv"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger.
func SetupLogger(level, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads and validates configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err,
			"error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath,
			"error_type", log.ErrorTypeDatabase)
		os.Exit(1)
	}
	return repo
}

// DeliveryNotifier builds the channels that actually reach users: email
// when SMTP is configured and Telegram when a bot token is set. Sends are
// throttled to cfg.NotifyRatePerMinute. With no channel configured it
// returns notify.Noop.
func DeliveryNotifier(cfg *config.Config, logger *log.Logger) notify.Notifier {
	var channels notify.Multi
	if cfg.SMTPHost != "" {
		mailer, err := notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.SMTPTimeout,
		})
		if err != nil {
			logger.Error("Email notifications disabled", log.FieldError, err)
		} else {
			channels = append(channels, mailer)
			logger.Info("Email notifications enabled", "smtp_host", cfg.SMTPHost)
		}
	}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken)
		if err != nil {
			logger.Error("Telegram notifications disabled", log.FieldError, err)
		} else {
			channels = append(channels, tg)
			logger.Info("Telegram notifications enabled")
		}
	}
	if len(channels) == 0 {
		logger.Warn("No notification channel configured, notifications are dropped")
		return notify.Noop{}
	}
	return notify.NewThrottled(channels, cfg.NotifyRatePerMinute)
}

// Limits of the in-process report cache.
const (
	localReportEntries = 1000
	localReportBytes   = 8 << 20
)

// ReportCache returns the milestone report cache: Redis when cfg.RedisAddr
// is set and reachable, otherwise an in-process LRU registered with mgr for
// expiry sweeps. The returned func releases the Redis client.
func ReportCache(ctx context.Context, cfg *config.Config, logger *log.Logger, mgr *cache.Manager) (cache.Store, func()) {
	if cfg.RedisAddr != "" {
		client, err := cache.Dial(ctx, cfg.RedisAddr)
		if err == nil {
			logger.Info("Using Redis report cache", "addr", cfg.RedisAddr, "ttl", cfg.ReportCacheTTL)
			return cache.NewRedis(client, "pfm:", cfg.ReportCacheTTL), func() { _ = client.Close() }
		}
		logger.Warn("Redis unavailable, falling back to in-process cache", log.FieldError, err)
	}
	local := cache.NewLocal(localReportEntries, localReportBytes, cfg.ReportCacheTTL)
	if mgr != nil {
		mgr.Register(local)
	}
	return local, func() {}
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs after the signal, bounded by timeout; done closes once it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
