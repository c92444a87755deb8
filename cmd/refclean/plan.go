package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicops/refclean/internal/db"
	"github.com/clinicops/refclean/internal/exitcode"
	"github.com/clinicops/refclean/internal/logging"
	"github.com/clinicops/refclean/internal/refresh"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run refresh: compute and report, no writes",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	cfg.DryRun = true
	sum, err := refresh.Run(ctx, pool, log, &cfg)
	if err != nil {
		log.Error().Err(err).Msg("plan failed")
		os.Exit(exitcode.RefreshError)
	}

	fmt.Printf("Plan (no writes):\n")
	fmt.Printf("  referrals:                 %d\n", sum.Referrals)
	fmt.Printf("  episodes:                  %d\n", sum.Episodes)
	fmt.Printf("  degenerate episodes:       %d\n", sum.DegenerateEpisodes)
	fmt.Printf("  self-pay episodes:         %d\n", sum.SelfPayEpisodes)
	fmt.Printf("  transactions:              %d\n", sum.Transactions)
	fmt.Printf("  unattributed transactions: %d\n", sum.UnattributedTransactions)
	fmt.Printf("  denials:                   %d\n", sum.Denials)
	fmt.Printf("  unattributed denials:      %d\n", sum.UnattributedDenials)
	fmt.Printf("  crosswalk misses:          %d\n", sum.CrosswalkMisses)
	return nil
}
