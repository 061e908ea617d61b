package books

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
	"github.com/5w1tchy/book-catalog-api/internal/api/httpx"
	storebooks "github.com/5w1tchy/book-catalog-api/internal/store/books"
)

// List handles GET /books/?skip=&limit=.
func (h *Handler) List(r *http.Request) (envelope.Response, error) {
	page, err := httpx.ParsePage(r)
	if err != nil {
		return nil, err
	}

	out, err := h.store.List(r.Context(), page.Skip, page.Limit)
	if err != nil {
		return h.tr.Store(r, "retrieve books", err), nil
	}
	return envelope.Success(msgListed, out, http.StatusOK), nil
}

// Get handles GET /books/:book_id.
func (h *Handler) Get(r *http.Request) (envelope.Response, error) {
	id, err := httpx.PathInt64(r, "book_id")
	if err != nil {
		return nil, err
	}

	b, err := h.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, storebooks.ErrNotFound):
		return envelope.NotFound(resource), nil
	case err != nil:
		return h.tr.Store(r, "retrieve book", err), nil
	}
	return envelope.Success(msgRetrieved, b, http.StatusOK), nil
}
