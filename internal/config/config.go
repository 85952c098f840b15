//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-retailbi.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"
)

// Supported source drivers.
const (
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
	SourceMemory   = "memory"
)

var sources = []string{SourcePostgres, SourceSQLite, SourceMemory}

// Config holds all configuration for pgedge-retailbi.
type Config struct {
	// Source selects the table source backend: postgres, sqlite or memory.
	Source string `mapstructure:"source"`

	// Connection is the PostgreSQL connection string or the SQLite file path.
	// It is ignored by the memory source.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat selects console or json log output.
	LogFormat string `mapstructure:"log_format"`

	// Snapshot holds configuration for snapshot assembly.
	Snapshot SnapshotConfig `mapstructure:"snapshot"`

	// Seed holds configuration for the init subcommand and the demo dataset.
	Seed SeedConfig `mapstructure:"seed"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`
}

// SnapshotConfig holds the sampling limits and concurrency of a build.
type SnapshotConfig struct {
	// BatchSize is the number of ids per in-list query.
	BatchSize int `mapstructure:"batch_size"`

	// Concurrency is the number of sections fetched at once.
	Concurrency int `mapstructure:"concurrency"`

	// TrendLimit is the number of delivered orders in the revenue trend.
	TrendLimit int `mapstructure:"trend_limit"`

	// CategorySample is the number of items sampled for category revenue.
	CategorySample int `mapstructure:"category_sample"`

	// SellerSample is the number of items sampled for top sellers.
	SellerSample int `mapstructure:"seller_sample"`

	TopCategories        int `mapstructure:"top_categories"`
	TopSellers           int `mapstructure:"top_sellers"`
	GeoLimit             int `mapstructure:"geo_limit"`
	TopProducts          int `mapstructure:"top_products"`
	TopProductCategories int `mapstructure:"top_product_categories"`
	InstallmentBuckets   int `mapstructure:"installment_buckets"`

	// Timeout bounds a single build in seconds (0 = no limit).
	Timeout int `mapstructure:"timeout"`
}

// SeedConfig holds configuration for dataset generation.
type SeedConfig struct {
	Orders    int   `mapstructure:"orders"`
	Customers int   `mapstructure:"customers"`
	Products  int   `mapstructure:"products"`
	Sellers   int   `mapstructure:"sellers"`
	Seed      int64 `mapstructure:"seed"`

	// BatchSize is the number of rows per bulk insert.
	BatchSize int `mapstructure:"batch_size"`

	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// ServeConfig holds configuration for the HTTP server.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`

	// CacheTTL is how long a published snapshot is served before a request
	// triggers a rebuild, in seconds.
	CacheTTL int `mapstructure:"cache_ttl"`

	// AllowedOrigins lists the CORS origins permitted to read the API.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// RefreshInterval rebuilds the snapshot in the background every N
	// seconds (0 = only on demand).
	RefreshInterval int `mapstructure:"refresh_interval"`

	// ReportInterval is how often to log refresh statistics (in seconds).
	ReportInterval int `mapstructure:"report_interval"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Source:    SourcePostgres,
		LogLevel:  "info",
		LogFormat: "console",
		Snapshot: SnapshotConfig{
			BatchSize:            50,
			Concurrency:          4,
			TrendLimit:           1000,
			CategorySample:       1000,
			SellerSample:         2000,
			TopCategories:        10,
			TopSellers:           5,
			GeoLimit:             300,
			TopProducts:          20,
			TopProductCategories: 15,
			InstallmentBuckets:   12,
			Timeout:              60,
		},
		Seed: SeedConfig{
			Orders:       2000,
			Customers:    1500,
			Products:     300,
			Sellers:      60,
			Seed:         42,
			BatchSize:    1000,
			DropExisting: false,
		},
		Serve: ServeConfig{
			Addr:           ":8080",
			CacheTTL:       300,
			AllowedOrigins: []string{"*"},
			ReportInterval: 60,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./retailbi.yaml
// 3. ~/.config/retailbi/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("retailbi")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "retailbi"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that a usable source is configured.
func (c *Config) Validate() error {
	if !slices.Contains(sources, c.Source) {
		return fmt.Errorf("source must be one of %v, got %q", sources, c.Source)
	}
	if c.Source != SourceMemory && c.Connection == "" {
		return fmt.Errorf("connection string is required for source %q", c.Source)
	}
	return nil
}

// ValidateSnapshot checks configuration required to build a snapshot.
func (c *Config) ValidateSnapshot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	s := c.Snapshot
	if s.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	limits := map[string]int{
		"trend_limit":            s.TrendLimit,
		"category_sample":        s.CategorySample,
		"seller_sample":          s.SellerSample,
		"top_categories":         s.TopCategories,
		"top_sellers":            s.TopSellers,
		"geo_limit":              s.GeoLimit,
		"top_products":           s.TopProducts,
		"top_product_categories": s.TopProductCategories,
		"installment_buckets":    s.InstallmentBuckets,
	}
	for name, v := range limits {
		if v < 1 {
			return fmt.Errorf("%s must be at least 1", name)
		}
	}
	return nil
}

// ValidateSeed checks configuration required for the init command. The
// memory source lives only as long as the process, so it cannot be
// initialized from the command line.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Source == SourceMemory {
		return fmt.Errorf("init requires a persistent source (postgres or sqlite)")
	}
	return c.validateDataset()
}

func (c *Config) validateDataset() error {
	s := c.Seed
	if s.Orders < 1 || s.Customers < 1 || s.Products < 1 || s.Sellers < 1 {
		return fmt.Errorf("orders, customers, products and sellers must each be at least 1")
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("seed batch_size must be at least 1")
	}
	return nil
}

// ValidateServe checks configuration required for the serve command. The
// memory source is seeded in-process, so the dataset settings apply too.
func (c *Config) ValidateServe() error {
	if err := c.ValidateSnapshot(); err != nil {
		return err
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Serve.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative")
	}
	if c.Serve.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must be non-negative")
	}
	if c.Source == SourceMemory {
		return c.validateDataset()
	}
	return nil
}
