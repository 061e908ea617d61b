package books

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
	"github.com/5w1tchy/book-catalog-api/internal/api/httpx"
	storebooks "github.com/5w1tchy/book-catalog-api/internal/store/books"
	"github.com/5w1tchy/book-catalog-api/internal/validate"
)

// Update handles PATCH /books/:book_id. Only supplied fields change.
func (h *Handler) Update(r *http.Request) (envelope.Response, error) {
	id, pathErr := httpx.PathInt64(r, "book_id")

	var in updateBookRequest
	bodyErr := httpx.BindJSON(r, &in)

	if err := joinInputErrors(pathErr, bodyErr); err != nil {
		return nil, err
	}

	b, err := h.store.Update(r.Context(), id, in.model())
	switch {
	case errors.Is(err, storebooks.ErrNotFound):
		return envelope.NotFound(resource), nil
	case err != nil:
		return h.tr.Store(r, "update book", err), nil
	}
	return envelope.Success(msgUpdated, b, http.StatusOK), nil
}

// Delete handles DELETE /books/:book_id and answers 204 with no body.
func (h *Handler) Delete(r *http.Request) (envelope.Response, error) {
	id, err := httpx.PathInt64(r, "book_id")
	if err != nil {
		return nil, err
	}

	_, err = h.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, storebooks.ErrNotFound):
		return envelope.NotFound(resource), nil
	case err != nil:
		return h.tr.Store(r, "delete book", err), nil
	}
	return envelope.NoContent(), nil
}

// joinInputErrors reports path and body violations together. A non-validation
// error (an oversized body, say) wins outright.
func joinInputErrors(errs ...error) error {
	var sets []*validate.Errors
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *validate.Errors
		if !errors.As(err, &verr) {
			return err
		}
		sets = append(sets, verr)
	}
	if merged := validate.Merge(sets...); merged != nil {
		return merged
	}
	return nil
}
