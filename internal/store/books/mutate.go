package books

import (
	"context"
	"fmt"

	"github.com/5w1tchy/book-catalog-api/internal/models"
	"github.com/5w1tchy/book-catalog-api/internal/store/dbx"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Create inserts in and returns the stored record with its assigned id.
func (s *Store) Create(ctx context.Context, in models.BookCreate) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		b, err := s.insert(ctx, tx, in)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

func (s *Store) insert(ctx context.Context, tx *sqlx.Tx, in models.BookCreate) (models.Book, error) {
	ds := s.dialect.Insert(table).Rows(goqu.Record{
		colTitle:         in.Title,
		colAuthor:        in.Author,
		colPublishedYear: in.PublishedYear,
		colSummary:       nullable(in.Summary),
	}).Prepared(true)

	if s.returning {
		query, args, err := ds.Returning(columns...).ToSQL()
		if err != nil {
			return models.Book{}, fmt.Errorf("build insert: %w", err)
		}
		var b models.Book
		if err := tx.GetContext(ctx, &b, query, args...); err != nil {
			return models.Book{}, fmt.Errorf("insert book: %w", err)
		}
		return b, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("build insert: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Book{}, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return s.fetch(ctx, tx, id)
}

// Update applies the supplied fields of u to book id and returns the stored
// result. An empty update returns the current record unchanged.
func (s *Store) Update(ctx context.Context, id int64, u models.BookUpdate) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		current, err := s.fetch(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.Empty() {
			out = current
			return nil
		}

		query, args, err := s.dialect.Update(table).
			Set(changes(u)).
			Where(goqu.C(colID).Eq(id)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update book %d: %w", id, err)
		}

		out, err = s.fetch(ctx, tx, id)
		return err
	})
	return out, err
}

func changes(u models.BookUpdate) goqu.Record {
	rec := goqu.Record{}
	if u.Title != nil {
		rec[colTitle] = *u.Title
	}
	if u.Author != nil {
		rec[colAuthor] = *u.Author
	}
	if u.PublishedYear != nil {
		rec[colPublishedYear] = *u.PublishedYear
	}
	switch {
	case u.ClearSummary:
		rec[colSummary] = nil
	case u.Summary != nil:
		rec[colSummary] = *u.Summary
	}
	return rec
}

// Delete removes book id and returns the record as it was.
func (s *Store) Delete(ctx context.Context, id int64) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		current, err := s.fetch(ctx, tx, id)
		if err != nil {
			return err
		}

		query, args, err := s.dialect.Delete(table).
			Where(goqu.C(colID).Eq(id)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		out = current
		return nil
	})
	return out, err
}
