//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-retailbi.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailbi/internal/config"
	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/seed"
	"github.com/pgEdge/pgedge-retailbi/internal/snapshot"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
	"github.com/pgEdge/pgedge-retailbi/pkg/version"

	// Register table sources
	_ "github.com/pgEdge/pgedge-retailbi/internal/source/memory"
	_ "github.com/pgEdge/pgedge-retailbi/internal/source/postgres"
	_ "github.com/pgEdge/pgedge-retailbi/internal/source/sqlite"
)

var (
	// Global flags
	cfgFile    string
	sourceName string
	connection string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "retailbi",
		Short: "Retail BI dashboard snapshot builder",
		Long: `retailbi reads a normalized retail dataset (orders, items, customers,
products, geolocation, reviews and payments) from PostgreSQL, SQLite or an
in-memory demo source, and assembles the complete set of dashboard metrics
into a single snapshot.

Snapshots can be written to stdout or served over HTTP to the dashboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./retailbi.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "",
		"table source: postgres, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string or SQLite file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (console, json)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sectionsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if sourceName != "" {
		cfg.Source = sourceName
	}
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	// Reinitialize logger with config
	return logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the snapshot sections and their failure tiers",
	Long: `List the sections a snapshot build runs. A failure in a hard section
aborts the build and keeps the previous snapshot; a soft section falls back
to default values for the metrics it could not fetch.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range snapshot.Plan() {
			cmd.Printf("  %-22s %s\n", s.Name, s.Tier)
			for _, step := range s.Steps {
				dep := ""
				if step.DependsOn != "" {
					dep = " <- " + step.DependsOn
				}
				cmd.Printf("      %-8s %-16s %s%s\n", step.Kind, step.Table, step.Name, dep)
			}
		}
	},
}

// snapshotOptions maps the snapshot config section onto assembler options.
func snapshotOptions(c config.SnapshotConfig) snapshot.Options {
	return snapshot.Options{
		BatchSize:            c.BatchSize,
		Concurrency:          c.Concurrency,
		TrendLimit:           c.TrendLimit,
		CategorySample:       c.CategorySample,
		SellerSample:         c.SellerSample,
		TopCategories:        c.TopCategories,
		TopSellers:           c.TopSellers,
		GeoLimit:             c.GeoLimit,
		TopProducts:          c.TopProducts,
		TopProductCategories: c.TopProductCategories,
		InstallmentBuckets:   c.InstallmentBuckets,
	}
}

func seedConfig(c config.SeedConfig) seed.Config {
	return seed.Config{
		Orders:    c.Orders,
		Customers: c.Customers,
		Products:  c.Products,
		Sellers:   c.Sellers,
		Seed:      c.Seed,
	}
}

// openSource opens the configured table source. The memory source starts
// empty, so it is populated with the generated demo dataset.
func openSource(ctx context.Context) (source.Source, error) {
	src, err := source.Open(ctx, cfg.Source, cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", cfg.Source, err)
	}

	if cfg.Source != config.SourceMemory {
		return src, nil
	}

	loader, ok := src.(source.Loader)
	if !ok {
		src.Close()
		return nil, fmt.Errorf("source %s cannot be seeded", cfg.Source)
	}

	logging.Info().
		Int("orders", cfg.Seed.Orders).
		Int64("seed", cfg.Seed.Seed).
		Msg("Seeding in-memory demo dataset")

	sc := seedConfig(cfg.Seed)
	ds, err := seed.Generate(sc)
	if err != nil {
		src.Close()
		return nil, err
	}
	if err := seed.Load(ctx, loader, ds, sc, seed.LoadOptions{Driver: cfg.Source}); err != nil {
		src.Close()
		return nil, err
	}
	return src, nil
}

func buildTimeout() time.Duration {
	return time.Duration(cfg.Snapshot.Timeout) * time.Second
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
