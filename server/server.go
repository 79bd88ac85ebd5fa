// Package server assembles the HTTP surface: the echo server, middleware,
// and the versioned API routes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/schedsense/booking"
	"github.com/hrygo/schedsense/calendar"
	"github.com/hrygo/schedsense/internal/profile"
	"github.com/hrygo/schedsense/internal/version"
	"github.com/hrygo/schedsense/metrics"
	apiv1 "github.com/hrygo/schedsense/server/router/api/v1"
)

type Server struct {
	echoServer *echo.Echo
	profile    *profile.Profile
	cleanup    *booking.CleanupJob
	logger     *slog.Logger
}

// New builds the echo server and registers all routes.
func New(p *profile.Profile, agent *booking.Agent, engine *calendar.Engine, provider calendar.Provider, cleanup *booking.CleanupJob, exporter *metrics.Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds())
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":     "ok",
			"version":    p.Version,
			"commit":     version.GitCommit,
			"build_time": version.BuildTime,
		})
	})
	if exporter != nil {
		e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}

	api := apiv1.NewAPIV1Service(p, agent, engine, provider)
	api.RegisterRoutes(e)

	return &Server{
		echoServer: e,
		profile:    p,
		cleanup:    cleanup,
		logger:     logger,
	}
}

// Start launches the cleanup job and the HTTP listener. It blocks until
// the listener stops.
func (s *Server) Start(ctx context.Context) error {
	if s.cleanup != nil {
		if err := s.cleanup.Start(ctx); err != nil {
			return fmt.Errorf("start cleanup job: %w", err)
		}
	}
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	s.logger.Info("server listening", "addr", addr, "mode", s.profile.Mode)
	if err := s.echoServer.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the cleanup job and drains the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cleanup != nil {
		s.cleanup.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo { return s.echoServer }
