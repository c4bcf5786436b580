package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tms/timesheet-management/pkg/logger"
)

// TraceHeader carries the request trace id. An incoming value is reused so a
// client can correlate its own retries.
const TraceHeader = "X-Trace-ID"

// RequestID binds a trace id to the context logger and echoes it back on the
// response, so every log line and the client see the same id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set(TraceHeader, traceID)

		ctx := logger.With(r.Context(), "trace_id", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
