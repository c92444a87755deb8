package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicops/refclean/internal/db"
	"github.com/clinicops/refclean/internal/exitcode"
	"github.com/clinicops/refclean/internal/logging"
	"github.com/clinicops/refclean/internal/refresh"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the derived episode, transaction, and denial tables",
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := loadConfigFile(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ValidationError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	sum, err := refresh.Run(ctx, pool, log, &cfg)
	if err != nil {
		var pe *refresh.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("refresh failed")
		} else {
			log.Error().Err(err).Msg("refresh failed")
		}
		os.Exit(exitcode.RefreshError)
	}

	fmt.Printf("Refresh complete: %d episodes from %d referrals, %d transactions attributed (%.1fs)\n",
		sum.Episodes, sum.Referrals, sum.Transactions-sum.UnattributedTransactions, sum.DurationTotal.Seconds())
	return nil
}
