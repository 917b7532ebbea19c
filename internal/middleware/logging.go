package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"salesledger/pkg/logger"
)

// LoggingMiddleware writes one access log entry per request.
type LoggingMiddleware struct {
	logger logger.Logger
}

func NewLoggingMiddleware(log logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: log}
}

// Log records the route template, the raw filter query, the status and the
// response size. Health checks are logged at debug level; 4xx at warn and
// 5xx at error.
func (m *LoggingMiddleware) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := routeTemplate(r)
		fields := RequestFields(r.Context(), map[string]interface{}{
			"method":      r.Method,
			"route":       route,
			"query":       r.URL.RawQuery,
			"status":      wrapped.statusCode,
			"bytes":       wrapped.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          r.RemoteAddr,
		})

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			m.logger.Error("request failed", fields)
		case wrapped.statusCode >= http.StatusBadRequest:
			m.logger.Warn("request rejected", fields)
		case route == "/health" || route == "/ready":
			m.logger.Debug("health check served", fields)
		default:
			m.logger.Info("request served", fields)
		}
	})
}

// routeTemplate prefers the mux path template so ledger queries group by
// endpoint rather than by URL.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
