package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Read surface
	s.echo.GET("/api/mentions", s.handleMentions)
	s.echo.GET("/api/timeseries", s.handleTimeseries)
	s.echo.GET("/api/answered", s.handleAnswered)
	s.echo.GET("/api/summary", s.handleResponsesSummary)
	s.echo.GET("/api/meta", s.handleMeta)
	s.echo.GET("/api/insights", s.handleInsights)

	// Write + fan-out surface
	s.echo.POST("/api/override", s.handleOverride)
	s.echo.POST("/api/compare", s.handleCompare)
}
