package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDevelopment = "development"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"task-tracker"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Monitor     MonitorConfig
}

type HTTPConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	MaxConn      int           `env:"SERVER_MAX_CONN" envDefault:"0"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	Name            string        `env:"DB_NAME" envDefault:"tasks"`
	User            string        `env:"DB_USER" envDefault:"tasks"`
	Password        string        `env:"DB_PASSWORD"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"DB_CONN_LIFETIME" envDefault:"1h"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"./data/tasks.db"`
}

// RedisConfig is optional; an empty URL disables the identity cache.
type RedisConfig struct {
	URL      string        `env:"REDIS_URL"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL time.Duration `env:"REDIS_IDENTITY_TTL" envDefault:"10m"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET,notEmpty"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"task-tracker"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"30m"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

type ContextConfig struct {
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// LoggerConfig leaves Encoding empty by default so LogEncoding can pick one
// from the environment.
type LoggerConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Encoding string `env:"LOG_ENCODING"`
}

// MigrationsConfig controls schema migrations. An empty Path uses the SQL
// files embedded in the binary.
type MigrationsConfig struct {
	Enabled bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	Path    string `env:"MIGRATIONS_PATH"`
}

type MonitorConfig struct {
	Interval time.Duration `env:"MONITOR_INTERVAL" envDefault:"10s"`
}

// Load reads configuration from environment variables (optionally .env).
// JWT_SECRET has no default and must be supplied.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == DriverPostgres && cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg.Database)
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}
	if c.Database.Driver == DriverSQLite && c.Database.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL))
	}
	switch c.Logger.Encoding {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_ENCODING must be json or console, got %q", c.Logger.Encoding))
	}
	if c.Context.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.Context.RequestTimeout))
	}
	return errors.Join(errs...)
}

// LogEncoding returns LOG_ENCODING when set, otherwise console output for
// development and JSON everywhere else.
func (c *Config) LogEncoding() string {
	if c.Logger.Encoding != "" {
		return c.Logger.Encoding
	}
	if c.Environment == EnvDevelopment {
		return "console"
	}
	return "json"
}

// RedisEnabled reports whether the identity cache should be used.
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

func buildPostgresURL(db DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: url.Values{"sslmode": []string{db.SSLMode}}.Encode(),
	}
	return u.String()
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.HTTP.Host, c.HTTP.Port)
}
