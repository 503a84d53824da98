package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// statusWriter remembers the status code and body size a handler
// produced so the access log can report them.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Logging emits one line per request: request id, method, path, status,
// duration and response size. Chat turns resubmit whole sheets, so
// duration here is the main signal for slow oracle round-trips.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info().
				Str("rid", GetRequestID(r)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("dur", time.Since(start)).
				Int("size", sw.size).
				Msg("http")
		})
	}
}
