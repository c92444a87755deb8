package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clinicops/refclean/internal/normalize"
)

// Config holds all runtime configuration for a refclean run.
type Config struct {
	DSN       string
	LogFormat string // "text" or "json"
	DryRun    bool

	// Per-command flags.
	ConfigFile string
	FilePath   string
	Kind       string
	Truncate   bool
	Force      bool
	OutPath    string

	// Site-specific identifier exception pairs merged over the built-in
	// tables. Pre runs before the pattern rules, Post after.
	IdentifierExceptions ExceptionTables `yaml:"identifier_exceptions"`
}

// ExceptionTables is the on-disk shape of the exception overrides.
type ExceptionTables struct {
	Pre  map[string]string `yaml:"pre"`
	Post map[string]string `yaml:"post"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc Config
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.IdentifierExceptions = yc.IdentifierExceptions
	return c.validateExceptions()
}

// validateExceptions rejects blank keys, which would rewrite empty
// identifiers and break normalizer idempotence.
func (c *Config) validateExceptions() error {
	for _, table := range []map[string]string{c.IdentifierExceptions.Pre, c.IdentifierExceptions.Post} {
		for k := range table {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("identifier exception with blank key")
			}
		}
	}
	return nil
}

// Normalizer builds the patient-identifier normalizer with any configured
// exception overrides applied.
func (c *Config) Normalizer() *normalize.PatientNormalizer {
	if len(c.IdentifierExceptions.Pre) == 0 && len(c.IdentifierExceptions.Post) == 0 {
		return normalize.Default
	}
	return normalize.NewPatientNormalizer(c.IdentifierExceptions.Pre, c.IdentifierExceptions.Post)
}

// ValidateWithDSN checks that a database connection string is configured.
func (c *Config) ValidateWithDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
