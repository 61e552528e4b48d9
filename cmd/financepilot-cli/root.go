package main

import (
	"os"

	"github.com/spf13/cobra"

	"financepilot/internal/cli"
	"financepilot/internal/config"
	"financepilot/internal/log"
	"financepilot/internal/services"
)

// app carries what every subcommand needs once flags and env are resolved.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	svc    *services.LedgerService
}

func newRootCmd() *cobra.Command {
	var (
		a          app
		ledgerPath string
		dbPath     string
		logLevel   string
	)

	root := &cobra.Command{
		Use:           "financepilot-cli",
		Short:         "Personal finance ledger",
		Long:          "financepilot-cli reads and appends to a CSV ledger and reports on it.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg := config.Load()
			if ledgerPath != "" {
				cfg.LedgerFile = config.ExpandHome(ledgerPath)
			}
			if dbPath != "" {
				cfg.SQLiteDBPath = config.ExpandHome(dbPath)
			}
			switch {
			case logLevel != "":
				cfg.LogLevel = logLevel
			case os.Getenv("LOG_LEVEL") == "":
				// Keep terminal output clean unless asked.
				cfg.LogLevel = "warn"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg, log.ComponentCLI)
			a.svc = services.NewLedgerService(cli.OpenLedger(cfg, a.logger), a.logger,
				services.WithListLimit(cfg.ListLimit))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "ledger CSV file (default: $LEDGER_FILE)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "export database (default: $SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(initCmd(&a))
	root.AddCommand(dashboardCmd(&a))
	root.AddCommand(listCmd(&a))
	root.AddCommand(addCmd(&a))
	root.AddCommand(draftCmd(&a))
	root.AddCommand(exportCmd(&a))
	root.AddCommand(reportCmd(&a))

	return root
}
