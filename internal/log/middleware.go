package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ContextKey type for context keys.
type ContextKey string

// LoggerContextKey is the context key under which the request logger travels.
const LoggerContextKey ContextKey = "logger"

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware injects the logger into the request context and logs one line
// per completed request.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.InfoContext(ctx, "Request handled",
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldStatus, rec.status,
				FieldDurationMS, time.Since(start).Milliseconds())
		})
	}
}

// FromContext extracts the request logger, falling back to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}
