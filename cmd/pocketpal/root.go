package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pocketpal/internal/cli"
	"pocketpal/internal/config"
	"pocketpal/internal/log"
)

// app carries what every subcommand needs once PersistentPreRunE has run.
type app struct {
	dbPath string
	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pocketpal",
		Short: "A personal expense ledger with day, week and month reports.",
		Long: `pocketpal records spending transactions in a local SQLite ledger and
reports totals per day, week and month, broken down by category.

Run "pocketpal serve" for the JSON API or use the subcommands directly:
  pocketpal add 25000 Transport --app GoPay
  pocketpal report week`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig(a.dbPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "ledger database path (overrides POCKETPAL_DB_PATH)")

	root.AddCommand(
		newServeCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newSummaryCmd(a),
		newReportCmd(a),
		newTrendCmd(a),
		newCompareCmd(a),
		newCategoriesCmd(a),
		newExportCmd(a),
		newEventsCmd(a),
	)
	return root
}

// withLedger opens the ledger for the duration of fn.
func (a *app) withLedger(cmd *cobra.Command, fn func(*cli.Ledger) error) error {
	ledger, err := cli.OpenLedger(cmd.Context(), a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			a.logger.Warn("Ledger close error", log.FieldError, err)
		}
	}()
	return fn(ledger)
}

func (a *app) printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
