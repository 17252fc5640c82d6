// Package api provides the HTTP server that serves artifacts and the JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/byteserve"
	"github.com/helixml/byteserve/infrastructure/api/middleware"
	v1 "github.com/helixml/byteserve/infrastructure/api/v1"
)

// APIServer provides the HTTP surface of a byteserve Client.
type APIServer struct {
	client *byteserve.Client
	server  *Server
	router  chi.Router
	mounted bool
}

// NewAPIServer creates a new APIServer wired to the given Client.
func NewAPIServer(client *byteserve.Client) *APIServer {
	return &APIServer{client: client}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
func (a *APIServer) Router() chi.Router {
	if a.router == nil {
		a.router = chi.NewRouter()
	}
	return a.router
}

// MountRoutes wires up the artifact, API and health routes on the router.
func (a *APIServer) MountRoutes() {
	if a.mounted {
		return
	}
	a.mountRoutes(a.Router())
	a.mounted = true
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client
	logger := c.Logger()

	artifacts := NewArtifactsRouter(c.Storages, c.Parser, c.Downloads, c.Transfers, logger)
	transfers := v1.NewTransfersRouter(c.Transfers, logger)

	router.Mount("/storages", artifacts.Routes())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Mount("/transfers", transfers.Routes())
	})

	router.Get("/health", healthHandler)
	router.Get("/healthz", healthHandler)
}

// ListenAndServe starts an HTTP server on addr and blocks until it is shut down.
func (a *APIServer) ListenAndServe(addr string, allowedOrigins ...string) error {
	server := NewServer(addr, a.client.Logger(), allowedOrigins...)
	a.server = &server
	server.Router().Mount("/", a.Handler())
	return server.Start()
}

// Shutdown gracefully shuts down the server started by ListenAndServe.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	a.MountRoutes()
	return a.router
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
