package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver error classes, as logged under the "class" key.
const (
	ClassUnique      = "unique_violation"
	ClassNotNull     = "not_null_violation"
	ClassData        = "invalid_data"
	ClassRetryable   = "retryable"
	ClassUnavailable = "unavailable"
	ClassDriver      = "driver_error"
)

// Classify names the kind of database driver failure behind err, for logs
// and alerting. It returns "" when err carries no driver error. Clients never
// see the class.
func Classify(err error) string {
	if c, ok := classifyPG(err); ok {
		return c
	}
	if c, ok := classifySQLite(err); ok {
		return c
	}
	return ""
}

func classifyPG(err error) (string, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return "", false
	}
	switch pg.Code {
	case "23505": // unique_violation (books_pkey)
		return ClassUnique, true
	case "23502": // not_null_violation
		return ClassNotNull, true
	case "22001", "22003", "22P02": // string_data_right_truncation, numeric_value_out_of_range, invalid_text_representation
		return ClassData, true
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return ClassRetryable, true
	case "57P01", "57P03", "08000", "08003", "08006": // admin_shutdown, cannot_connect_now, connection_*
		return ClassUnavailable, true
	}
	return ClassDriver, true
}

func classifySQLite(err error) (string, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return "", false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ClassUnique, true
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ClassNotNull, true
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return ClassRetryable, true
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL:
		return ClassUnavailable, true
	}
	return ClassDriver, true
}
