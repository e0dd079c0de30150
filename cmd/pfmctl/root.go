package main

import (
	"fmt"

	"pfm/internal/cli"
	"pfm/internal/config"
	"pfm/internal/notify"
	"pfm/internal/services"
	"pfm/internal/storage"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	dbPath   string
	logLevel string
	jsonOut  bool
}

// app is what every subcommand works against. It is opened lazily so that
// --help never touches the database.
type app struct {
	cfg        *config.Config
	repo       *storage.SQLiteRepository
	milestones *services.MilestoneService
	budget     *services.BudgetService
	expenses   *services.ExpenseService
}

func (a *app) Close() {
	if a.repo != nil {
		_ = a.repo.Close()
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "pfmctl",
		Short:        "Personal finance manager admin CLI",
		Long:         "Administer the personal finance manager: migrations, Baby Steps evaluation, budget checks and exports.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (default from SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "Print JSON instead of text")

	open := func() (*app, error) { return openApp(flags) }

	root.AddCommand(
		newMigrateCmd(open),
		newMilestonesCmd(flags),
		newEvaluateCmd(open, flags),
		newRecalcCmd(open),
		newBudgetCmd(open, flags),
		newExportCmd(open),
	)
	return root
}

func openApp(flags *rootFlags) (*app, error) {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(flags.logLevel, "pfmctl")

	// The CLI needs neither the HTTP nor the auth settings, so the config
	// is loaded without full validation.
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.SQLiteDBPath = flags.dbPath
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.SQLiteDBPath, err)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" || cfg.TelegramBotToken != "" {
		notifier = cli.DeliveryNotifier(cfg, logger)
	}
	ms := services.NewMilestoneService(repo, notifier, nil)
	bs := services.NewBudgetService(repo, notifier, nil)

	return &app{
		cfg:        cfg,
		repo:       repo,
		milestones: ms,
		budget:     bs,
		expenses:   services.NewExpenseService(repo, bs, ms),
	}, nil
}
