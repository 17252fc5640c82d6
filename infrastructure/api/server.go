package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/helixml/byteserve/infrastructure/api/middleware"
)

// Server represents the HTTP server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
}

// NewServer creates a new Server. Browsers on allowedOrigins may issue range
// requests; with no origins every origin is allowed.
func NewServer(addr string, logger *slog.Logger, allowedOrigins ...string) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.CorrelationID)
	router.Use(middleware.Logging(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(corsOptions(allowedOrigins)))

	// No WriteTimeout: artifact bodies stream for as long as they take.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return Server{
		router:     router,
		httpServer: httpServer,
		addr:       addr,
		logger:     logger,
	}
}

func corsOptions(allowedOrigins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Range", "If-Range", middleware.CorrelationIDHeader},
		ExposedHeaders: []string{
			"Accept-Ranges",
			"Content-Length",
			"Content-Range",
			"ETag",
			middleware.CorrelationIDHeader,
		},
		MaxAge: 300,
	}
}

// Router returns the chi router for registering routes.
func (s Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server and blocks until it is shut down.
func (s Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s Server) Addr() string {
	return s.addr
}
