package books

import (
	"context"

	"github.com/5w1tchy/book-catalog-api/internal/api/apperr"
	"github.com/5w1tchy/book-catalog-api/internal/models"
)

const (
	msgCreated   = "Book created successfully"
	msgListed    = "Books retrieved successfully"
	msgRetrieved = "Book retrieved successfully"
	msgUpdated   = "Book updated successfully"

	resource = "Book"
)

// Store is the record store the handlers need.
type Store interface {
	Get(ctx context.Context, id int64) (models.Book, error)
	List(ctx context.Context, skip, limit int) ([]models.Book, error)
	Create(ctx context.Context, in models.BookCreate) (models.Book, error)
	Update(ctx context.Context, id int64, u models.BookUpdate) (models.Book, error)
	Delete(ctx context.Context, id int64) (models.Book, error)
}

// Handler serves the /books endpoints. Each method has the
// httpx.HandlerFunc shape.
type Handler struct {
	store Store
	tr    apperr.Translator
}

func New(store Store, tr apperr.Translator) *Handler {
	return &Handler{store: store, tr: tr}
}
