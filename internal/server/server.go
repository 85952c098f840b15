//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package server exposes the published snapshot to the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/snapshot"
)

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address.
	Addr string

	// CacheTTL is how long a snapshot is served before a request triggers a
	// rebuild. Zero rebuilds on every request.
	CacheTTL time.Duration

	// BuildTimeout bounds rebuilds triggered by requests. Zero means none.
	BuildTimeout time.Duration

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// Server serves snapshots built by an Assembler.
type Server struct {
	asm    *snapshot.Assembler
	opts   Options
	engine *gin.Engine
	now    func() time.Time
}

// New creates a server and registers its routes.
func New(asm *snapshot.Assembler, opts Options) *Server {
	s := &Server{
		asm:  asm,
		opts: opts,
		now:  time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	engine.GET("/health", s.health)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := engine.Group("/api/v1")
	{
		api.GET("/snapshot", s.getSnapshot)
		api.GET("/dashboard", s.getDashboard)
		api.GET("/snapshot/state", s.getState)
		api.POST("/snapshot/refresh", s.refresh)
		api.GET("/sections", s.listSections)
	}

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.opts.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "If-None-Match"},
		ExposeHeaders: []string{"ETag", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func requestLogger() gin.HandlerFunc {
	log := logging.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}
