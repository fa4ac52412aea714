// Package http provides the API server, its router, and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	vendorHTTP "github.com/dealgrid/vendorsync/internal/vendorsvc/http"
)

// MiddlewareConfig bundles the optional middleware settings for the API server.
type MiddlewareConfig struct {
	CORSEnabled             bool
	CORSAllowOrigins        string
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
	// MetricsMiddleware records per-request metrics when metrics are enabled.
	MetricsMiddleware gin.HandlerFunc
}

// Server represents the API HTTP server.
type Server struct {
	db          *sql.DB
	host        string
	port        int
	logger      *slog.Logger
	syncHandler *vendorHTTP.SyncHandler
	middleware  MiddlewareConfig
	router      *gin.Engine
	server      *http.Server
}

// NewServer creates a new API server.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	syncHandler *vendorHTTP.SyncHandler,
	middleware MiddlewareConfig,
) *Server {
	return &Server{
		db:          db,
		host:        host,
		port:        port,
		logger:      logger,
		syncHandler: syncHandler,
		middleware:  middleware,
	}
}

// SetupRouter builds the Gin router with all middleware and routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.middleware.MetricsMiddleware != nil {
		router.Use(s.middleware.MetricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(
		s.middleware.CORSEnabled,
		s.middleware.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.middleware.RateLimitEnabled {
		router.Use(RateLimitMiddleware(
			s.middleware.RateLimitRequestsPerSec,
			s.middleware.RateLimitBurst,
			s.logger,
		))
	}

	// Health and readiness endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Vendor sync operations
	if s.syncHandler != nil {
		v1 := router.Group("/v1")
		{
			v1.POST("/vendors", s.syncHandler.CreateHandler)
			v1.PUT("/vendors/:profile_id/email", s.syncHandler.UpdateEmailHandler)
			v1.PUT("/vendors/:profile_id/phone", s.syncHandler.UpdatePhoneHandler)
			v1.PUT("/vendors/:profile_id/password", s.syncHandler.SetPasswordHandler)
			v1.PUT("/vendors/:profile_id/status", s.syncHandler.SetStatusHandler)
			v1.DELETE("/businesses/:business_id", s.syncHandler.DeleteHandler)
		}
	}

	return router
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.SetupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. Readiness
// requires a working database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		s.logger.Error("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
