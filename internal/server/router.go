// Package server exposes a knowledge graph over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matsen/papergraph/internal/graph"
	"github.com/matsen/papergraph/internal/logger"
	"github.com/matsen/papergraph/internal/viz"
)

type RouterConfig struct {
	Graph  *graph.Graph
	Sink   RecordSink
	Logger *logger.Logger
	Viz    viz.HTMLOptions
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	// Node ids may contain "/" (DOIs); clients send them percent-encoded.
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	r.Use(Metrics())
	r.Use(RequestLogger(cfg.Logger))

	r.GET("/healthcheck", HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewGraphHandler(cfg.Graph, cfg.Sink, cfg.Logger, cfg.Viz)
	r.GET("/", h.Index)

	api := r.Group("/api")
	{
		api.GET("/graph", h.Graph)
		api.GET("/stats", h.Stats)
		api.GET("/search", h.Search)
		api.GET("/nodes", h.Nodes)
		api.GET("/nodes/:id", h.Node)
		api.GET("/nodes/:id/neighbors", h.Neighbors)
		api.GET("/export", h.Export)

		api.POST("/import", h.Import)
		api.POST("/papers", h.AddPaper)
		api.POST("/reset", h.Reset)
	}

	r.NoRoute(func(c *gin.Context) {
		RespondError(c, http.StatusNotFound, CodeNotFound, errors.New("route not found"))
	})

	return r
}

// ShutdownTimeout bounds graceful shutdown after the context is cancelled.
const ShutdownTimeout = 10 * time.Second

type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
}

func NewServer(cfg RouterConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{Engine: NewRouter(cfg), log: log}
}

// Run serves on address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
