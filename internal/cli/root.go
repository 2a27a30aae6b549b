// Package cli holds the campushub command tree: the HTTP server, schema
// migration, and the ban maintenance commands operators run against the same
// database.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/config"
	"github.com/tbourn/campus-hub/internal/repo"
	"github.com/tbourn/campus-hub/internal/sysutil"
)

// RootOptions holds global flags and the configuration resolved for the
// running command.
type RootOptions struct {
	DatabaseURL string
	LogLevel    string
	Format      string // "text" | "json"
	EnvFile     string

	Version string
	Config  config.Config
}

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the campushub root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:           "campushub",
		Short:         "Anonymous campus confession board",
		Long:          "Serves the confession board API and runs its maintenance tasks.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database", "", "database url, overrides DATABASE_URL (sqlite://path or postgres://dsn)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file read before the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewBanCommand(opts))

	return cmd
}

// load reads the dotenv file (a missing file is fine), then the environment,
// then applies flag overrides and configures the global logger.
func (o *RootOptions) load() error {
	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", o.EnvFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.DatabaseURL = sysutil.FirstNonEmpty(o.DatabaseURL, cfg.DatabaseURL)
	cfg.LogLevel = sysutil.FirstNonEmpty(o.LogLevel, cfg.LogLevel)
	o.Config = cfg

	return setupLogging(cfg)
}

func setupLogging(cfg config.Config) error {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return sysutil.SetLogLevel(cfg.LogLevel)
}

// openDB connects to the configured database, with query tracing when OTel
// is on.
func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			return nil, fmt.Errorf("gorm tracing: %w", err)
		}
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
