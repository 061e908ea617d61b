package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/5w1tchy/book-catalog-api/internal/api/apperr"
	"github.com/5w1tchy/book-catalog-api/internal/api/handlers"
	bookhandlers "github.com/5w1tchy/book-catalog-api/internal/api/handlers/books"
	mw "github.com/5w1tchy/book-catalog-api/internal/api/middlewares"
	"github.com/5w1tchy/book-catalog-api/internal/api/router"
	"github.com/5w1tchy/book-catalog-api/internal/config"
	"github.com/5w1tchy/book-catalog-api/internal/logging"
	"github.com/5w1tchy/book-catalog-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/book-catalog-api/internal/store/books"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(os.Args[1:], ".env", "../../.env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	for _, w := range cfg.HardeningWarnings() {
		log.Warn("hardening", "warning", w)
	}

	db, err := sqlconnect.ConnectDB(ctx, sqlconnect.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	log.Info("connected to database", "driver", cfg.DBDriver)

	store := books.New(db, cfg.DBDriver)
	if !cfg.NoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	limiters, closeRedis, err := rateLimiters(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	tr := apperr.New(log)
	api := router.Router(router.Deps{
		Translator: tr,
		Books:      bookhandlers.New(store, tr),
		Health:     handlers.Health(store, log, 2*time.Second),
	})

	chain := []mw.Middleware{
		mw.RequestID,
		mw.AccessLog(log),
		mw.Recovery(tr),
		mw.ResponseTime,
		mw.SecurityHeaders(cfg.StrictSecurity),
		mw.Cors(cfg.CorsOrigins, log),
	}
	for _, l := range limiters {
		chain = append(chain, mw.RateLimit(l.limiter, mw.PerIPKey(l.prefix), log))
	}
	chain = append(chain,
		mw.HPP(mw.DefaultHPPOptions()),
		mw.BodySizeLimit(cfg.MaxBodySize),
		mw.Compression,
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mw.Chain(api, chain...),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server is running", "addr", cfg.Addr, "env", cfg.Env, "tls", cfg.TLSEnabled())
		if cfg.TLSEnabled() {
			errCh <- server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type namedLimiter struct {
	prefix  string
	limiter mw.Limiter
}

// rateLimiters picks Redis-backed limiters when REDIS_URL is set and an
// in-process token bucket otherwise.
func rateLimiters(ctx context.Context, cfg config.Config, log *slog.Logger) ([]namedLimiter, func(), error) {
	noop := func() {}
	if cfg.RateLimitRPS == 0 {
		log.Warn("rate limiting disabled")
		return nil, noop, nil
	}

	if cfg.RedisURL == "" {
		local := mw.NewLocalLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go local.Run(ctx, time.Minute)
		return []namedLimiter{{"tb", local}}, noop, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL) // e.g. rediss://default:<token>@host:port
	if err != nil {
		return nil, noop, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if opt.TLSConfig != nil {
		opt.TLSConfig.MinVersion = tls.VersionTLS12
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, noop, fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info("connected to redis", "addr", opt.Addr)

	return []namedLimiter{
		{"tb", mw.NewRedisTokenBucket(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst)},
		{"sw", mw.NewRedisSlidingWindow(rdb, cfg.RateLimitWindowMax, cfg.RateLimitWindow)},
	}, func() { rdb.Close() }, nil
}
