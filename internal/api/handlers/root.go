package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
	"github.com/5w1tchy/book-catalog-api/internal/api/httpx"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

type serviceStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Root handles GET /.
func Root(r *http.Request) (envelope.Response, error) {
	return envelope.Success("Book Catalog API is running", serviceStatus{Status: "running", Version: Version}, http.StatusOK), nil
}

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /healthz: 200 when the store answers within timeout,
// 503 otherwise.
func Health(db Pinger, log *slog.Logger, timeout time.Duration) httpx.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(r *http.Request) (envelope.Response, error) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			if log != nil {
				log.WarnContext(r.Context(), "health check failed", "error", err)
			}
			return envelope.Error("Service unavailable", http.StatusServiceUnavailable,
				envelope.FieldDetail("database", "Database is unreachable", "unavailable")), nil
		}
		return envelope.Success("Service is healthy", healthStatus{Status: "ok", Database: "ok"}, http.StatusOK), nil
	}
}
