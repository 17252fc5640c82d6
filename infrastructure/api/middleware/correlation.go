package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/byteserve/internal/log"
)

// CorrelationIDHeader is the header carrying the correlation ID.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID takes the correlation ID from the request header, falling
// back to chi's request ID, echoes it in the response and stores both IDs
// in the request context for logging.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := chimiddleware.GetReqID(r.Context())

		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = requestID
		}
		if correlationID != "" {
			w.Header().Set(CorrelationIDHeader, correlationID)
		}

		ctx := log.WithCorrelationID(r.Context(), correlationID)
		if requestID != "" {
			ctx = log.WithRequestID(ctx, requestID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID from the context.
func GetCorrelationID(ctx context.Context) string {
	return log.CorrelationID(ctx)
}
