package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/helixml/byteserve/domain/byterange"
	"github.com/helixml/byteserve/infrastructure/api/jsonapi"
	"github.com/helixml/byteserve/infrastructure/storage"
	"github.com/helixml/byteserve/internal/database"
)

// APIError is an error that carries the HTTP status to answer with.
type APIError struct {
	code      int
	message   string
	cause     error
	parameter string
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{
		code:    code,
		message: message,
		cause:   cause,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// WithParameter names the query parameter the error is about.
func (e *APIError) WithParameter(name string) *APIError {
	e.parameter = name
	return e
}

// Parameter returns the offending query parameter, if any.
func (e *APIError) Parameter() string { return e.parameter }

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// StatusFor maps an error to the HTTP status and title it is reported with.
func StatusFor(err error) (int, string) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), http.StatusText(apiErr.Code())
	case errors.Is(err, byterange.ErrMalformedRange):
		return http.StatusBadRequest, "Malformed Range"
	case errors.Is(err, byterange.ErrInvalidRange):
		return http.StatusRequestedRangeNotSatisfiable, "Invalid Range"
	case errors.Is(err, storage.ErrStorageNotFound),
		errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// sourceFor points an error at the query parameter or header that caused it.
func sourceFor(err error) *jsonapi.ErrorSource {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Parameter() != "":
		return &jsonapi.ErrorSource{Parameter: apiErr.Parameter()}
	case errors.Is(err, byterange.ErrMalformedRange), errors.Is(err, byterange.ErrInvalidRange):
		return &jsonapi.ErrorSource{Header: "Range"}
	default:
		return nil
	}
}

// WriteError writes a JSON:API formatted error response.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := StatusFor(err)

	detail := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.Message()
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	e := jsonapi.NewError(strconv.Itoa(status), title, detail)
	e.ID = correlationID
	e.Source = sourceFor(err)

	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(e))
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONAPI writes a JSON:API document.
func WriteJSONAPI(w http.ResponseWriter, status int, doc *jsonapi.Document) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}
