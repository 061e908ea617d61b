package books

import (
	"net/http"

	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
	"github.com/5w1tchy/book-catalog-api/internal/api/httpx"
)

// Create handles POST /books/.
func (h *Handler) Create(r *http.Request) (envelope.Response, error) {
	var in createBookRequest
	if err := httpx.BindJSON(r, &in); err != nil {
		return nil, err
	}

	b, err := h.store.Create(r.Context(), in.model())
	if err != nil {
		return h.tr.Store(r, "create book", err), nil
	}
	return envelope.Created(msgCreated, b), nil
}
