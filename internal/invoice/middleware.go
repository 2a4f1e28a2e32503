package invoice

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"

	"github.com/zombor/invoice-extractor/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id taken from the client or generated
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// recoverer turns a panic into a 500 JSON error; deferred cleanups in the
// handler have already run by the time it recovers
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "Panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request once it completes, leveled by status
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		attrs := []any{
			"status", m.Code,
			"method", r.Method,
			"path", r.URL.Path,
			"latency_ms", m.Duration.Milliseconds(),
			"bytes", m.Written,
			"remote_addr", r.RemoteAddr,
		}

		switch {
		case m.Code >= 500:
			slog.ErrorContext(r.Context(), "Request completed", attrs...)
		case m.Code >= 400:
			slog.WarnContext(r.Context(), "Request completed", attrs...)
		default:
			slog.InfoContext(r.Context(), "Request completed", attrs...)
		}
	})
}
