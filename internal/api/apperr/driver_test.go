package apperr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/5w1tchy/book-catalog-api/internal/api/apperr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestClassify_Postgres(t *testing.T) {
	cases := map[string]string{
		"23505": apperr.ClassUnique,
		"23502": apperr.ClassNotNull,
		"22001": apperr.ClassData,
		"22P02": apperr.ClassData,
		"40001": apperr.ClassRetryable,
		"40P01": apperr.ClassRetryable,
		"57P01": apperr.ClassUnavailable,
		"08006": apperr.ClassUnavailable,
		"XX000": apperr.ClassDriver,
	}
	for code, class := range cases {
		t.Run(code, func(t *testing.T) {
			err := fmt.Errorf("get book 1: %w", &pgconn.PgError{Code: code})
			assert.Equal(t, class, apperr.Classify(err))
		})
	}
}

func sqliteError(t *testing.T, stmts ...string) error {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, s := range stmts[:len(stmts)-1] {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	_, err = db.Exec(stmts[len(stmts)-1])
	require.Error(t, err)
	return err
}

func TestClassify_SQLite(t *testing.T) {
	const schema = `CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`

	err := sqliteError(t, schema, `INSERT INTO t (id, name) VALUES (1, 'a')`, `INSERT INTO t (id, name) VALUES (1, 'b')`)
	assert.Equal(t, apperr.ClassUnique, apperr.Classify(err))

	err = sqliteError(t, schema, `INSERT INTO t (id, name) VALUES (1, NULL)`)
	assert.Equal(t, apperr.ClassNotNull, apperr.Classify(err))

	err = sqliteError(t, `SELECT * FROM missing`)
	assert.Equal(t, apperr.ClassDriver, apperr.Classify(fmt.Errorf("list books: %w", err)))
}

func TestClassify_NotADriverError(t *testing.T) {
	assert.Empty(t, apperr.Classify(errors.New("plain")))
	assert.Empty(t, apperr.Classify(nil))
}
