//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/snapshot"
	"github.com/pgEdge/pgedge-retailbi/pkg/version"
)

type stateResponse struct {
	Loading     bool       `json:"loading"`
	Error       string     `json:"error"`
	Fingerprint string     `json:"fingerprint"`
	BuiltAt     *time.Time `json:"builtAt"`
}

func newStateResponse(st snapshot.State) stateResponse {
	resp := stateResponse{
		Loading:     st.Loading,
		Error:       st.Error,
		Fingerprint: st.Fingerprint,
	}
	if !st.BuiltAt.IsZero() {
		builtAt := st.BuiltAt
		resp.BuiltAt = &builtAt
	}
	return resp
}

type sectionResponse struct {
	Name  string          `json:"name"`
	Tier  string          `json:"tier"`
	Steps []snapshot.Step `json:"steps"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Short(),
	})
}

// dashboardResponse is the snapshot together with the build state, as one
// object. Error is null when the last build succeeded.
type dashboardResponse struct {
	*model.Snapshot
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

func newDashboardResponse(st snapshot.State) dashboardResponse {
	resp := dashboardResponse{Snapshot: st.Snapshot, Loading: st.Loading}
	if st.Error != "" {
		msg := st.Error
		resp.Error = &msg
	}
	return resp
}

// getSnapshot serves the published snapshot, rebuilding it first when it
// is older than the cache TTL. A failed rebuild still serves the previous
// snapshot with the failure in X-Snapshot-Error; only a source that never
// built successfully yields 503.
func (s *Server) getSnapshot(c *gin.Context) {
	st, err := s.current(c.Request.Context())
	if err != nil && st.BuiltAt.IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if st.Error != "" {
		c.Header("X-Snapshot-Error", st.Error)
	}
	s.render(c, `"`+st.Fingerprint+`"`, st.Snapshot)
}

// getDashboard serves the snapshot and its build state in one object. Before
// the first successful build it carries the empty snapshot and the error.
func (s *Server) getDashboard(c *gin.Context) {
	st, _ := s.current(c.Request.Context())
	etag := st.Fingerprint
	if st.Error != "" {
		etag += "-error"
	}
	s.render(c, `"`+etag+`"`, newDashboardResponse(st))
}

// current returns the assembler state, rebuilding first when stale.
func (s *Server) current(ctx context.Context) (snapshot.State, error) {
	var err error
	if s.stale(s.asm.State()) {
		err = s.rebuild(ctx)
	}
	return s.asm.State(), err
}

func (s *Server) render(c *gin.Context, etag string, body any) {
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.asm.State()))
}

func (s *Server) refresh(c *gin.Context) {
	err := s.rebuild(c.Request.Context())
	resp := newStateResponse(s.asm.State())

	var sectionErr *snapshot.SectionError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.As(err, &sectionErr):
		c.JSON(http.StatusBadGateway, resp)
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, resp)
	default:
		c.JSON(http.StatusServiceUnavailable, resp)
	}
}

func (s *Server) listSections(c *gin.Context) {
	plan := snapshot.Plan()
	out := make([]sectionResponse, 0, len(plan))
	for _, p := range plan {
		out = append(out, sectionResponse{Name: p.Name, Tier: p.Tier.String(), Steps: p.Steps})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) stale(st snapshot.State) bool {
	if st.BuiltAt.IsZero() {
		return true
	}
	return s.now().Sub(st.BuiltAt) >= s.opts.CacheTTL
}

// rebuild refreshes the snapshot detached from the request's cancellation,
// since concurrent requests share the build.
func (s *Server) rebuild(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if s.opts.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.BuildTimeout)
		defer cancel()
	}
	return s.asm.Refresh(ctx)
}
