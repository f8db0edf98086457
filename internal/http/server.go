// Package http exposes the quote pipeline over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/quote"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server serves the quote API.
type Server struct {
	echo      *echo.Echo
	generator *quote.Generator
	logger    *logging.Logger
	config    Config
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(generator *quote.Generator, logger *logging.Logger, cfg Config) (*Server, error) {
	if generator == nil {
		return nil, errors.New("http: generator is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8420
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{echo: e, generator: generator, logger: logger, config: cfg}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/v1")
	v1.POST("/quotes", s.handleGenerate)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// RejectionResponse is the body returned for rejected inputs.
type RejectionResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleGenerate runs the pipeline for POST /v1/quotes. A rejected input
// maps to 422 with a reason code; anything accepted returns a complete
// quote.
func (s *Server) handleGenerate(c echo.Context) error {
	var req quote.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "description field is required")
	}

	generated, err := s.generator.Generate(c.Request().Context(), req)
	if err != nil {
		var rejected *quote.RejectedError
		if errors.As(err, &rejected) {
			return c.JSON(http.StatusUnprocessableEntity, RejectionResponse{
				Reason:  rejected.Reason,
				Message: rejected.Message,
			})
		}
		// The generator contract only surfaces rejections; anything else
		// is a programming error worth a 500.
		s.logger.Error(c.Request().Context(), "unexpected generation error", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, generated)
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
