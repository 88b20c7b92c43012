package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/action-deck/internal/api/shared"
	"github.com/phrazzld/action-deck/internal/platform/logger"
)

// TraceHeader carries a caller-supplied trace ID and echoes the one in use.
const TraceHeader = "X-Trace-ID"

// Trace returns middleware that assigns each request a trace ID and stores a
// logger carrying it in the request context. It should run before any
// handler that logs.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context(), r.Header.Get(TraceHeader))
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(TraceHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
