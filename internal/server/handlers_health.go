package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/version"
)

func (s *Server) handleHealth(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Get(),
	})
}
