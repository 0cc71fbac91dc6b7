package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dagbolade/molselector/internal/audit"
	"github.com/dagbolade/molselector/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	echo   *echo.Echo
	config Config
}

type Config struct {
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	// DefaultFolder is suggested to the client through /api/config.
	DefaultFolder string
}

// New wires the review API around sess. aud may be nil when the audit
// trail is disabled.
func New(cfg Config, sess *session.Session, aud audit.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	s := &Server{
		echo:   e,
		config: cfg,
	}

	s.setupMiddleware()
	s.setupRoutes(sess, aud)

	return s
}

// Handler exposes the router for in-process servers such as httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Info().Int("port", s.config.Port).Msg("starting HTTP server")

	s.echo.Server.ReadTimeout = time.Duration(s.config.ReadTimeout) * time.Second
	s.echo.Server.WriteTimeout = time.Duration(s.config.WriteTimeout) * time.Second

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type"},
	}))
}

func (s *Server) setupRoutes(sess *session.Session, aud audit.Store) {
	folderHandler := NewFolderHandler(sess, s.config.DefaultFolder)
	moleculeHandler := NewMoleculeHandler(sess)
	decisionHandler := NewDecisionHandler(sess)
	historyHandler := NewHistoryHandler(sess)
	auditHandler := NewAuditHandler(aud)

	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/config", folderHandler.GetConfig)
	api.POST("/folder", folderHandler.Select)
	api.GET("/folder", folderHandler.Current)
	api.GET("/molecule", moleculeHandler.Get)
	api.POST("/decision", decisionHandler.Record)
	api.GET("/history", historyHandler.Get)
	api.GET("/audit", auditHandler.GetAuditLog)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
