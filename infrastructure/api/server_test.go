package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/byteserve/infrastructure/api/middleware"
)

func TestNewServer(t *testing.T) {
	server := NewServer(":8080", slog.Default())

	assert.Equal(t, ":8080", server.Addr())
	assert.NotNil(t, server.Router())
}

func TestServer_CorrelationID(t *testing.T) {
	server := NewServer(":0", slog.Default())
	router := server.Router()

	var seen string
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.CorrelationIDHeader))
}

func TestServer_GeneratesCorrelationID(t *testing.T) {
	server := NewServer(":0", slog.Default())
	router := server.Router()
	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationIDHeader))
}

func TestServer_CORSPreflightAllowsRange(t *testing.T) {
	server := NewServer(":0", slog.Default(), "https://app.example")
	router := server.Router()
	router.Get("/storages/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/storages/storage0/releases/app.jar", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Range")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Range")
}

func TestServer_CORSExposesRangeHeaders(t *testing.T) {
	server := NewServer(":0", slog.Default(), "https://app.example")
	router := server.Router()
	router.Get("/file", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/file", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "Content-Range")
	assert.Contains(t, exposed, "Accept-Ranges")
}

func TestServer_NotFound(t *testing.T) {
	server := NewServer(":0", slog.Default())

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server := NewServer("127.0.0.1:0", slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, server.Start())
}
