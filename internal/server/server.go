package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/app"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/config"
	apperrors "github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/errors"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/platform/correlation"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.Service
	startTime time.Time
}

func NewServer(cfg *config.Config, app *app.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// correlationMiddleware tags every request with a correlation id. An incoming
// X-Correlation-ID header is honored so upstream callers can trace a request
// end to end; otherwise a fresh id is minted.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Correlation-ID")
			if id == "" {
				id = correlation.NewID()
			}

			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Correlation-ID", id)

			return next(c)
		}
	}
}
