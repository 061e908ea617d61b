package middlewares

import (
	"log/slog"
	"net/http"
	"time"
)

// statusWriter records the status and stamps X-Response-Time just before the
// header goes out.
type statusWriter struct {
	http.ResponseWriter
	start       time.Time
	stampTime   bool
	wroteHeader bool
	status      int
	bytes       int
}

func newStatusWriter(w http.ResponseWriter, stampTime bool) *statusWriter {
	return &statusWriter{ResponseWriter: w, start: time.Now(), stampTime: stampTime, status: http.StatusOK}
}

func (w *statusWriter) stamp() {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if w.stampTime {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
	}
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.stamp()
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// ResponseTime adds X-Response-Time to every response.
func ResponseTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := newStatusWriter(w, true)
		next.ServeHTTP(sw, r)
		sw.stamp()
	})
}

// AccessLog writes one structured line per request.
func AccessLog(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w, false)
			next.ServeHTTP(sw, r)

			level := slog.LevelInfo
			switch {
			case sw.status >= 500:
				level = slog.LevelError
			case sw.status >= 400:
				level = slog.LevelWarn
			}
			log.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Int("bytes", sw.bytes),
				slog.Duration("duration", time.Since(sw.start)),
				slog.String("request_id", GetRequestID(r)),
				slog.String("remote", clientIP(r)),
			)
		})
	}
}
