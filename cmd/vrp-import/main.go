// Package main provides the vrp-import CLI.
//
// vrp-import validates CSV files destined for a VRP dataset (vehicles, jobs,
// locations, routes, shipments), maps their columns onto the table schema and
// resolves their locations against a location master.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vrp-import/internal/config"
	"vrp-import/internal/logging"
)

var (
	configPath string
	dbPath     string
	envFile    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vrp-import",
	Short: "Import VRP CSV data and resolve its locations",
	Long: `vrp-import checks and parses CSV files for a VRP dataset, maps their
headers onto the table schema, matches every row's location against the
location master and imports the rows with location ids.

Tables: vehicles, jobs, locations, routes, shipments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		var err error

		cfg, err = config.Load(configPath, nil)
		if err != nil {
			return err
		}

		if dbPath != "" {
			cfg.Store.Driver = config.DriverSQLite
			cfg.Store.DSN = dbPath
		}

		logger, err = logging.New(cfg.Log, verbose)
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite location store (overrides store settings)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with VRP_IMPORT_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		parseCmd,
		mapCmd,
		resolveCmd,
		importCmd,
		exportCmd,
		templateCmd,
		serveCmd,
		configCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
