// Package server assembles the read-only listings API
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/middleware"
	"github.com/Ramsey-B/lily/pkg/routes/health"
	"github.com/Ramsey-B/lily/pkg/routes/listing"
	"github.com/Ramsey-B/lily/pkg/store"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

type Options struct {
	AppName      string
	Version      string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	echo    *echo.Echo
	health  *health.Checker
	options Options
	logger  ectologger.Logger
}

// New wires middleware and routes. cache may be nil.
func New(options Options, reader store.Reader, cache listing.StatsCache, logger ectologger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(options.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	checker := health.NewChecker(options.Version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	listing.NewHandler(reader, cache, logger).Register(e.Group("/api"))

	return &Server{echo: e, health: checker, options: options, logger: logger}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Health returns the health checker so callers can add checks and flip readiness
func (s *Server) Health() *health.Checker {
	return s.health
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.options.Port),
		Handler:      s.echo,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
		IdleTimeout:  s.options.IdleTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", srv.Addr)
		errs <- srv.ListenAndServe()
	}()
	s.health.SetReady(true)

	select {
	case err := <-errs:
		s.health.SetReady(false)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}
