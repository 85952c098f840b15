//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/seed"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

var (
	initOrders       int
	initCustomers    int
	initProducts     int
	initSellers      int
	initSeed         int64
	initBatchSize    int
	initDropExisting bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a database with the retail schema and a demo dataset",
	Long: `Create the retail schema (orders, order_items, customers, products,
geolocation, order_reviews, order_payments, sellers) in the configured
PostgreSQL or SQLite source and load a generated dataset. The same seed
always produces the same dataset.

Example:
  retailbi init --source postgres --connection "postgres://..." --orders 50000
  retailbi init --source sqlite --connection retail.db --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().IntVar(&initOrders, "orders", 0,
		"number of orders to generate")
	initCmd.Flags().IntVar(&initCustomers, "customers", 0,
		"number of customers to generate")
	initCmd.Flags().IntVar(&initProducts, "products", 0,
		"number of products to generate")
	initCmd.Flags().IntVar(&initSellers, "sellers", 0,
		"number of sellers to generate")
	initCmd.Flags().Int64Var(&initSeed, "seed", 0,
		"random seed for dataset generation")
	initCmd.Flags().IntVar(&initBatchSize, "batch-size", 0,
		"rows per bulk insert")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initOrders > 0 {
		cfg.Seed.Orders = initOrders
	}
	if initCustomers > 0 {
		cfg.Seed.Customers = initCustomers
	}
	if initProducts > 0 {
		cfg.Seed.Products = initProducts
	}
	if initSellers > 0 {
		cfg.Seed.Sellers = initSellers
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed.Seed = initSeed
	}
	if initBatchSize > 0 {
		cfg.Seed.BatchSize = initBatchSize
	}
	if initDropExisting {
		cfg.Seed.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	src, err := source.Open(ctx, cfg.Source, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to %s source: %w", cfg.Source, err)
	}
	defer src.Close()

	loader, ok := src.(source.Loader)
	if !ok {
		return fmt.Errorf("source %s does not support initialization", cfg.Source)
	}

	logging.Info().
		Str("source", cfg.Source).
		Int("orders", cfg.Seed.Orders).
		Int("customers", cfg.Seed.Customers).
		Int64("seed", cfg.Seed.Seed).
		Msg("Generating dataset")

	sc := seedConfig(cfg.Seed)
	ds, err := seed.Generate(sc)
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	err = seed.Load(ctx, loader, ds, sc, seed.LoadOptions{
		Driver:       cfg.Source,
		DropExisting: cfg.Seed.DropExisting,
		BatchSize:    cfg.Seed.BatchSize,
	})
	if err != nil {
		return err
	}

	logging.Info().
		Str("source", cfg.Source).
		Msg("Database initialization complete")

	return nil
}
