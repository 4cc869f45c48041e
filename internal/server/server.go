// Package server provides the HTTP API for yomitori.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/pipeline"
	"github.com/hyperjump/yomitori/internal/query"
	"github.com/hyperjump/yomitori/internal/status"
)

// maxUploadBytes caps multipart uploads held in memory before spilling to disk.
const maxUploadBytes = 64 << 20

// Server is the HTTP server for the yomitori API. It submits jobs to the
// pipeline and reads job/document state; it never mutates pipeline state
// itself.
type Server struct {
	pipeline *pipeline.Pipeline
	query    *query.Service
	status   *status.Store
	docs     *docstore.Store
	blobs    *blob.DiskStore
	cfg      *config.ServerConfig
	queryCfg *config.QueryConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pl *pipeline.Pipeline,
	qs *query.Service,
	st *status.Store,
	docs *docstore.Store,
	blobs *blob.DiskStore,
	cfg *config.ServerConfig,
	queryCfg *config.QueryConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline: pl,
		query:    qs,
		status:   st,
		docs:     docs,
		blobs:    blobs,
		cfg:      cfg,
		queryCfg: queryCfg,
		logger:   logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/status/{id}", s.handleStatus)
	r.Get("/api/result/{id}", s.handleResult)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/download/{id}", s.handleDownload)
	r.Post("/api/chat/{id}", s.handleChat)
	r.Get("/api/health", s.handleHealth)
	r.Get("/files/*", s.handleFile)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
