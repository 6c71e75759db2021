// Package web provides the HTTP surface for the catalog import service:
// triggering an import run and looking up a product view by SKU.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pkrawiec/catalog-import/internal/config"
	"github.com/pkrawiec/catalog-import/internal/importer"
	"github.com/pkrawiec/catalog-import/internal/web/middleware"
)

// ProductService is the application capability the HTTP layer exposes.
type ProductService interface {
	RunImport(ctx context.Context) (*importer.ImportSummary, error)
	GetBySku(ctx context.Context, sku string) (*importer.ProductView, error)
}

// Server is the HTTP server for the import API.
type Server struct {
	service ProductService
	router  *chi.Mux
	server  *http.Server
	cfg     config.ServerConfig
}

// NewServer creates a Server with middleware and routes configured.
func NewServer(service ProductService, cfg config.ServerConfig) *Server {
	s := &Server{
		service: service,
		router:  chi.NewRouter(),
		cfg:     cfg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
}

// setupRoutes configures all HTTP routes. Read endpoints carry the request
// timeout; the import endpoint enforces its own longer budget inside the
// service.
func (s *Server) setupRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.RequestTimeout))
		r.Get("/healthz", s.handleHealth)
		r.Get("/api/products/{sku}", s.handleGetProduct)
	})

	s.router.Post("/api/products/import", s.handleImport)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
