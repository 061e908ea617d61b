package httpx

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/book-catalog-api/internal/api/apperr"
	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
)

// fallbackBody is written when a response cannot be encoded at all.
const fallbackBody = `{"success":false,"message":"Internal server error","data":null,"errors":[{"field":null,"message":"An unexpected error occurred","type":null}],"status_code":500}`

// HandlerFunc is an API handler: it returns the envelope to render, or an
// error for the translator.
type HandlerFunc func(r *http.Request) (envelope.Response, error)

// Render writes resp using the status code it carries. 204 has no body.
func Render(w http.ResponseWriter, resp envelope.Response) {
	status := resp.StatusCode()
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	b, err := resp.MarshalJSON()
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(fallbackBody)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// Handle adapts h to http.Handler. Errors returned by h go through tr.
func Handle(tr apperr.Translator, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := h(r)
		if err != nil {
			Render(w, tr.Translate(r, err))
			return
		}
		if resp == nil {
			Render(w, tr.Unhandled(r, errors.New("handler returned no response")))
			return
		}
		Render(w, resp)
	})
}
