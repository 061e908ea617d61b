package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Config is everything the server reads at startup. Flags win over
// environment variables, which win over defaults.
type Config struct {
	Addr     string `help:"Listen address or bare port." env:"PORT" default:":3000"`
	Env      string `help:"Deployment environment." env:"APP_ENV" enum:"development,production,test" default:"development"`
	LogLevel string `help:"Minimum log level." env:"LOG_LEVEL" enum:"debug,info,warn,error" default:"info"`

	DBDriver    string `name:"db-driver" help:"Database driver." env:"DB_DRIVER" enum:"pgx,sqlite" default:"sqlite"`
	DatabaseURL string `name:"database-url" help:"Database DSN." env:"DATABASE_URL" default:"file:books.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"`
	NoMigrate   bool   `help:"Skip creating the schema at startup." env:"NO_MIGRATE"`

	RedisURL           string        `name:"redis-url" help:"Redis URL for shared rate limiting; empty uses an in-process limiter." env:"REDIS_URL"`
	RateLimitRPS       float64       `name:"rate-limit-rps" help:"Sustained requests per second per client; 0 disables limiting." env:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst     int           `help:"Burst size per client." env:"RATE_LIMIT_BURST" default:"20"`
	RateLimitWindow    time.Duration `help:"Sliding window length (Redis only)." env:"RATE_LIMIT_WINDOW" default:"1h"`
	RateLimitWindowMax int           `help:"Requests allowed per sliding window (Redis only)." env:"RATE_LIMIT_WINDOW_MAX" default:"3000"`

	MaxBodySize    int64    `help:"Maximum request body in bytes." env:"MAX_BODY_SIZE" default:"1048576"`
	CorsOrigins    []string `name:"cors-origins" help:"Allowed CORS origins; * allows any." env:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	StrictSecurity bool     `help:"Send cross-origin isolation headers." env:"STRICT_SECURITY"`
	TLSCert        string   `name:"tls-cert" help:"TLS certificate file." env:"TLS_CERT_FILE"`
	TLSKey         string   `name:"tls-key" help:"TLS key file." env:"TLS_KEY_FILE"`

	ReadTimeout     time.Duration `help:"HTTP read timeout." env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `help:"HTTP write timeout." env:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `help:"HTTP keep-alive idle timeout." env:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `help:"Graceful shutdown budget." env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads envFiles (missing files are ignored), then parses args into a
// Config and validates it.
func Load(args []string, envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name("book-catalog-api"),
		kong.Description("Book catalog HTTP API."),
		kong.UsageOnError(),
	)
	if err != nil {
		return Config{}, err
	}
	if _, err := parser.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Addr = normalizeAddr(cfg.Addr)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func normalizeAddr(a string) string {
	a = strings.TrimSpace(a)
	if a != "" && !strings.Contains(a, ":") {
		return ":" + a
	}
	return a
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool { return c.Env == "production" }

// TLSEnabled reports whether both halves of the key pair are set.
func (c Config) TLSEnabled() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Validate fails fast on settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DBDriver == "pgx" && c.DatabaseURL != "" {
		if u, err := url.Parse(c.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errs = append(errs, errors.New("DATABASE_URL must be a postgres:// URL when DB_DRIVER=pgx"))
		}
	}
	if c.RedisURL != "" {
		if u, err := url.Parse(c.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, errors.New("REDIS_URL must be a redis:// or rediss:// URL"))
		}
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be >= 0"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be >= 1 when rate limiting is enabled"))
	}
	if c.RedisURL != "" && c.RateLimitRPS > 0 && (c.RateLimitWindow <= 0 || c.RateLimitWindowMax < 1) {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_WINDOW_MAX must be positive"))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be > 0"))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"READ_TIMEOUT", c.ReadTimeout},
		{"WRITE_TIMEOUT", c.WriteTimeout},
		{"IDLE_TIMEOUT", c.IdleTimeout},
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
	} {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", d.name))
		}
	}
	return errors.Join(errs...)
}

// HardeningWarnings lists settings that work but are unwise in production.
func (c Config) HardeningWarnings() []string {
	if !c.IsProduction() {
		return nil
	}
	var w []string
	if slices.Contains(c.CorsOrigins, "*") {
		w = append(w, "CORS_ORIGINS allows any origin")
	}
	if !c.TLSEnabled() {
		w = append(w, "TLS is not configured; terminate TLS at a proxy")
	}
	if !c.StrictSecurity {
		w = append(w, "STRICT_SECURITY is off")
	}
	if c.RateLimitRPS == 0 {
		w = append(w, "rate limiting is disabled")
	}
	if c.DBDriver == "sqlite" {
		w = append(w, "DB_DRIVER=sqlite serializes all writes on one connection")
	}
	if c.LogLevel == "debug" {
		w = append(w, "LOG_LEVEL=debug in production")
	}
	return w
}
