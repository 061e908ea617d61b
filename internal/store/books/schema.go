package books

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id             BIGSERIAL PRIMARY KEY,
		title          TEXT    NOT NULL,
		author         TEXT    NOT NULL,
		published_year INTEGER NOT NULL,
		summary        TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`,
}

// AUTOINCREMENT keeps ids from being reused after a delete.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		title          TEXT    NOT NULL,
		author         TEXT    NOT NULL,
		published_year INTEGER NOT NULL,
		summary        TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`,
}

// Migrate creates the books table and its index if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if s.sqlite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
