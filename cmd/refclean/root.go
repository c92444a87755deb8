package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicops/refclean/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "refclean",
	Short: "Clinic referral and billing data cleaner",
	Long:  "Loads raw referral, billing, and denial exports into Postgres, then rebuilds the cleaned episode-level tables: identifier normalization, episode partitioning, transaction attribution, and insurer ranking.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.ConfigFile, "config", "", "Path to YAML config with identifier exception overrides")
}

// loadConfigFile merges the --config file, if given, into cfg.
func loadConfigFile() error {
	if cfg.ConfigFile == "" {
		return nil
	}
	return cfg.LoadFromFile(cfg.ConfigFile)
}
