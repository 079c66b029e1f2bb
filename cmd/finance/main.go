package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"finance-manager/internal/accounting"
	"finance-manager/internal/config"
	"finance-manager/internal/console"
	"finance-manager/internal/identity"
	"finance-manager/internal/logging"
	"finance-manager/internal/reporting"
	"finance-manager/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("finance", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to TOML config file")
	driver := fs.String("driver", "", "Database driver: sqlite or postgres")
	dsn := fs.String("db", "", "Database file path (sqlite) or connection URL (postgres)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error or disabled")
	quiet := fs.Bool("quiet", false, "Do not print the startup banner")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadEnvFile(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, stderr)
	if !*quiet {
		printBanner(stderr, cfg)
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info().Str("driver", db.Driver()).Msg("Database ready")

	session := console.NewSession(stdin, stdout, console.Services{
		Identity: identity.NewService(db, logger),
		Accounting: accounting.NewService(db, logger,
			accounting.WithDefaultDescription(cfg.App.DefaultDescription)),
		Reporting: reporting.NewService(db, logger),
	}, logger)

	return session.Run(ctx)
}
