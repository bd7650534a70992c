package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/pass-management/pkg/logger"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

type traceKey struct{}

// RequestID assigns every request a trace id, reusing the caller's X-Trace-ID
// when present, and seeds the request context with a logger carrying it.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logger.LoggerWrapper()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), traceKey{}, traceID)
			ctx = logger.Into(ctx, base.With("trace_id", traceID))

			w.Header().Set(TraceHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TraceID returns the id assigned by RequestID, or "" outside a request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
