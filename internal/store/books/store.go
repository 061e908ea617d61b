package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/book-catalog-api/internal/models"
	"github.com/5w1tchy/book-catalog-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/book-catalog-api/internal/store/dbx"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no book has the requested id.
var ErrNotFound = errors.New("book not found")

const (
	table = "books"

	colID            = "id"
	colTitle         = "title"
	colAuthor        = "author"
	colPublishedYear = "published_year"
	colSummary       = "summary"
)

var columns = []any{colID, colTitle, colAuthor, colPublishedYear, colSummary}

// Store persists books in Postgres or SQLite.
type Store struct {
	db        *sqlx.DB
	dialect   goqu.DialectWrapper
	sqlite    bool
	returning bool
}

// New builds a Store for db. driver is the database/sql driver name db was
// opened with.
func New(db *sqlx.DB, driver string) *Store {
	s := &Store{db: db}
	switch driver {
	case sqlconnect.DriverSQLite:
		s.dialect = goqu.Dialect("sqlite3")
		s.sqlite = true
	default:
		s.dialect = goqu.Dialect("postgres")
		s.returning = true
	}
	return s
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) byID(id int64) *goqu.SelectDataset {
	return s.dialect.From(table).Select(columns...).Where(goqu.C(colID).Eq(id)).Prepared(true)
}

func (s *Store) fetch(ctx context.Context, q dbx.Ext, id int64) (models.Book, error) {
	query, args, err := s.byID(id).ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("build select: %w", err)
	}
	var b models.Book
	if err := q.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, ErrNotFound
		}
		return models.Book{}, err
	}
	return b, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
