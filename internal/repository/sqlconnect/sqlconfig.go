package sqlconnect

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Options controls how ConnectDB opens and sizes the pool.
type Options struct {
	Driver      string
	DSN         string
	PingTimeout time.Duration
}

// ConnectDB opens the database, sizes the pool for the driver and pings it.
func ConnectDB(ctx context.Context, opt Options) (*sqlx.DB, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	switch opt.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opt.Driver)
	}

	db, err := sqlx.Open(opt.Driver, opt.DSN)
	if err != nil {
		return nil, err
	}
	configurePool(db, opt.Driver)

	timeout := opt.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func configurePool(db *sqlx.DB, driver string) {
	if driver == DriverSQLite {
		// one connection keeps an in-memory database alive and serializes writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
}
