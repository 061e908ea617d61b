package middlewares

import "net/http"

// DefaultMaxBodySize is used when BodySizeLimit gets a non-positive limit.
const DefaultMaxBodySize int64 = 1 << 20

// BodySizeLimit caps request bodies on writes. Reading past the cap yields
// *http.MaxBytesError, which the translator answers with 413.
func BodySizeLimit(limit int64) Middleware {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
