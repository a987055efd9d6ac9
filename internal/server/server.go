// Package server exposes the layout engine over HTTP. Every request carries
// its own pad list and sheet; settings overrides in a request are applied on
// top of the server's settings and never persist.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/piwi3910/PadNest/internal/model"
)

const shutdownTimeout = 5 * time.Second

// Server holds the router and the base settings for every request.
type Server struct {
	settings model.Settings
	logger   *log.Logger
	version  string
	router   *gin.Engine
}

// New builds a Server. The settings must already be validated.
func New(settings model.Settings, logger *log.Logger, version string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		settings: settings,
		logger:   logger,
		version:  version,
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/diameter", s.handleDiameter)
	api.POST("/feasibility", s.handleFeasibility)
	api.POST("/layout", s.handleLayout)
	api.POST("/layout/svg", s.handleLayoutSVG)
	api.POST("/render/svg", s.handleRenderSVG)
	api.POST("/plan", s.handlePlan)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Microsecond))
	}
}
