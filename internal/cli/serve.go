//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/metrics"
	"github.com/pgEdge/pgedge-retailbi/internal/metrics/prom"
	"github.com/pgEdge/pgedge-retailbi/internal/refresh"
	"github.com/pgEdge/pgedge-retailbi/internal/server"
	"github.com/pgEdge/pgedge-retailbi/internal/snapshot"
)

var (
	serveAddr            string
	serveCacheTTL        int
	serveRefreshInterval int
	serveOrigins         []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots to the dashboard over HTTP",
	Long: `Start an HTTP server that builds snapshots from the configured source
and serves them to the dashboard.

Endpoints:
  GET  /health                   liveness and version
  GET  /api/v1/snapshot          current snapshot (ETag, 304 on match)
  GET  /api/v1/dashboard         snapshot with loading and error fields
  GET  /api/v1/snapshot/state    loading flag, last error, fingerprint
  POST /api/v1/snapshot/refresh  rebuild now
  GET  /api/v1/sections          section plan
  GET  /metrics                  Prometheus metrics

Example:
  retailbi serve --source postgres --connection "postgres://..." --addr :8080
  retailbi serve --source memory --refresh-interval 300`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default: :8080)")
	serveCmd.Flags().IntVar(&serveCacheTTL, "cache-ttl", -1,
		"seconds a snapshot is served before a request triggers a rebuild")
	serveCmd.Flags().IntVar(&serveRefreshInterval, "refresh-interval", 0,
		"rebuild the snapshot in the background every N seconds")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allowed-origins", nil,
		"CORS origins allowed to read the API")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}
	if serveCacheTTL >= 0 {
		cfg.Serve.CacheTTL = serveCacheTTL
	}
	if serveRefreshInterval > 0 {
		cfg.Serve.RefreshInterval = serveRefreshInterval
	}
	if len(serveOrigins) > 0 {
		cfg.Serve.AllowedOrigins = serveOrigins
	}

	// Validate configuration
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := prom.NewBackend()
	if err != nil {
		return fmt.Errorf("failed to create metrics backend: %w", err)
	}
	metrics.SetBackend(backend)
	defer metrics.SetBackend(nil)

	ctx, cancel := signalContext()
	defer cancel()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	asm := snapshot.NewAssembler(src, snapshotOptions(cfg.Snapshot))
	srv := server.New(asm, server.Options{
		Addr:           cfg.Serve.Addr,
		CacheTTL:       time.Duration(cfg.Serve.CacheTTL) * time.Second,
		BuildTimeout:   buildTimeout(),
		AllowedOrigins: cfg.Serve.AllowedOrigins,
		Metrics:        backend.Handler(),
	})

	logging.Info().
		Str("source", cfg.Source).
		Str("addr", cfg.Serve.Addr).
		Int("cache_ttl", cfg.Serve.CacheTTL).
		Int("refresh_interval", cfg.Serve.RefreshInterval).
		Int("concurrency", asm.Options().Concurrency).
		Msg("Starting server")

	var scheduler *refresh.Scheduler
	if cfg.Serve.RefreshInterval > 0 {
		scheduler, err = refresh.NewScheduler(asm, refresh.Config{
			Interval:       time.Duration(cfg.Serve.RefreshInterval) * time.Second,
			Timeout:        buildTimeout(),
			ReportInterval: time.Duration(cfg.Serve.ReportInterval) * time.Second,
		})
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	err = g.Wait()
	if scheduler != nil {
		scheduler.PrintSummary()
	}
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}
