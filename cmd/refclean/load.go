package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicops/refclean/internal/csvload"
	"github.com/clinicops/refclean/internal/db"
	"github.com/clinicops/refclean/internal/exitcode"
	"github.com/clinicops/refclean/internal/logging"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a raw CSV export into the database",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to CSV export (required)")
	f.StringVar(&cfg.Kind, "kind", "", "Export kind: referrals, transactions, denials, or crosswalk (required)")
	f.BoolVar(&cfg.Truncate, "truncate", false, "Empty the target table before loading")
	f.BoolVar(&cfg.Force, "force", false, "Reload even if this file SHA was already loaded")
	_ = loadCmd.MarkFlagRequired("file")
	_ = loadCmd.MarkFlagRequired("kind")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	kind, err := csvload.ParseKind(cfg.Kind)
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	res, err := csvload.LoadFile(ctx, pool, log, cfg.FilePath, kind, cfg.Truncate, cfg.Force)
	if err != nil {
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.LoadError)
	}

	if res.Skipped {
		fmt.Printf("Load skipped: %d rows already loaded (sha %s)\n", res.RowsLoaded, res.FileSHA256[:12])
		return nil
	}
	fmt.Printf("Load complete: %d rows loaded, %d rejected (%.1fs)\n",
		res.RowsLoaded, res.RowsRejected, res.Duration.Seconds())
	return nil
}
