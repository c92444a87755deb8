package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicops/refclean/internal/db"
	"github.com/clinicops/refclean/internal/exitcode"
	"github.com/clinicops/refclean/internal/export"
	"github.com/clinicops/refclean/internal/logging"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the derived episode table to Parquet",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&cfg.OutPath, "out", "", "Output Parquet path (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	res, err := export.Episodes(ctx, pool, log, cfg.OutPath)
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		os.Exit(exitcode.ExportError)
	}

	fmt.Printf("Export complete: %d episodes written to %s (%.1fs)\n",
		res.Rows, cfg.OutPath, res.Duration.Seconds())
	return nil
}
