package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/enquiry-crm/internal/config"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, d RouteDeps) *Server {
	return &Server{
		config:  cfg,
		handler: SetupRoutes(d),
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Uploads can be large; the write timeout covers a whole import.
		ReadTimeout:       s.config.ReadTimeout(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      s.config.WriteTimeout(),
		IdleTimeout:       s.config.IdleTimeout(),
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
