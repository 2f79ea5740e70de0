// Package web provides the HTTP server and JSON API for the consumables
// import pipeline.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cargue/internal/catalog"
	"cargue/internal/config"
	"cargue/internal/core"
	"cargue/internal/logging"
)

// Server is the HTTP server for the import application. The session is
// single-owner, so every handler that touches it holds the mutex.
type Server struct {
	session *core.Session
	cat     *catalog.Catalog
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	mu sync.Mutex
}

// NewServer creates a server over a session and its catalog.
func NewServer(session *core.Session, cat *catalog.Catalog, cfg *config.Config) *Server {
	s := &Server{
		session: session,
		cat:     cat,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Import lifecycle
		r.Post("/import", s.handleImport)
		r.Get("/dataset", s.handleDataset)
		r.Delete("/dataset", s.handleClear)

		// Validation state
		r.Get("/errors", s.handleErrors)

		// Edit state machine
		r.Post("/edit/start", s.handleEditStart)
		r.Post("/edit/value", s.handleEditValue)
		r.Post("/edit/finish", s.handleEditFinish)
		r.Post("/edit/cancel", s.handleEditCancel)

		// One-shot cell update
		r.Post("/cell", s.handleCell)

		// Reference data
		r.Get("/reference-sets", s.handleReferenceSets)

		// Final submission
		r.Post("/submit", s.handleSubmit)
	})
}

// Start begins listening for HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
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

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
		)
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
