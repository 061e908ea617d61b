package books

import (
	"context"
	"fmt"

	"github.com/5w1tchy/book-catalog-api/internal/models"
	"github.com/doug-martin/goqu/v9"
)

// Get returns the book with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (models.Book, error) {
	return s.fetch(ctx, s.db, id)
}

// List returns up to limit books ordered by id, skipping the first skip.
// The result is never nil.
func (s *Store) List(ctx context.Context, skip, limit int) ([]models.Book, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid window skip=%d limit=%d", skip, limit)
	}
	query, args, err := s.dialect.From(table).
		Select(columns...).
		Order(goqu.C(colID).Asc()).
		Limit(uint(limit)).
		Offset(uint(skip)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	out := make([]models.Book, 0, min(limit, 64))
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
