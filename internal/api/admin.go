package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/db"
)

type snapshotsResponse struct {
	Domains []db.DomainSnapshot `json:"domains"`
	Stats   db.Stats            `json:"stats"`
}

func (s *Server) handleListSnapshots(c echo.Context) error {
	ctx := c.Request().Context()
	domains, err := s.Store.Domains(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	stats, err := s.Store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("snapshot stats: %w", err)
	}
	if domains == nil {
		domains = []db.DomainSnapshot{}
	}
	return c.JSON(http.StatusOK, snapshotsResponse{Domains: domains, Stats: stats})
}

// handleWriteSnapshots stores the entities currently served for every domain.
func (s *Server) handleWriteSnapshots(c echo.Context) error {
	ctx := c.Request().Context()
	written := make(map[string]int)
	for _, d := range s.Catalog.Domains() {
		if err := s.Store.ReplaceDomain(ctx, d.ID, d.Entities); err != nil {
			return fmt.Errorf("snapshot %s: %w", d.ID, err)
		}
		written[d.ID] = len(d.Entities)
		s.log.Info("domain snapshot written", zap.String("domain", d.ID), zap.Int("entities", len(d.Entities)))
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "domains": written})
}
