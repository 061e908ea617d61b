package middlewares

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/book-catalog-api/internal/api/apperr"
	"github.com/5w1tchy/book-catalog-api/internal/api/httpx"
)

// Recovery turns a panic in any later handler into the generic 500 envelope.
// The panic value and stack are logged, never sent.
func Recovery(tr apperr.Translator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}
				w.Header().Set("Connection", "close")
				httpx.Render(w, tr.Panic(r, v, debug.Stack()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
