// Package server exposes the briefing pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maqua-crm/internal/common/config"
	"maqua-crm/internal/common/logger"
)

// Server wraps the HTTP listener and its graceful shutdown.
type Server struct {
	cfg  config.ServerConfig
	http *http.Server
	log  logger.Logger
}

// New builds the server around a configured router.
func New(cfg config.ServerConfig, router *gin.Engine, log logger.Logger) *Server {
	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		log: log,
	}
}

// Run serves until the context is cancelled, then shuts down within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if s.log != nil {
			s.log.Info("http server listening", map[string]interface{}{"addr": s.http.Addr})
		}
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if s.log != nil {
		s.log.Info("http server shutting down", nil)
	}
	return s.http.Shutdown(shutdownCtx)
}

// NewRouter assembles the API routes.
func NewRouter(h *Handlers, logCfg config.LoggingConfig) *gin.Engine {
	if logCfg.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/customer/parse", h.ParseCustomer)
		api.POST("/opportunity/parse", h.ParseOpportunity)
		api.POST("/submission", h.Submit)
		api.POST("/opportunity/from-session", h.CreateOpportunityFromSession)
		api.POST("/tasks/:customerCode", h.CreateTasks)
	}
	return router
}
