package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=farmsim port=5432 sslmode=disable"
	defaultOrigins     = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DBDriver    string
	DatabaseDSN string
	SQLitePath  string
	JWTSecret   string
	CORSOrigins string
	LogLevel    string
	SeedDemo    bool
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "3001"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultPostgresDSN),
		SQLitePath:  getEnv("SQLITE_PATH", "farmsim.db"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultOrigins),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SeedDemo:    getEnv("SEED_DEMO", "false") == "true",
	}
}

// Validate rejects settings the server must not start with and logs the
// defaults that are only fit for local development.
func (c *Config) Validate(logger logrus.FieldLogger) error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.New("DB_DRIVER must be sqlite or postgres")
	}

	if c.DBDriver == DriverPostgres && c.DatabaseDSN == defaultPostgresDSN {
		logger.Warn("DATABASE_DSN is using the local default, set it for production")
	}
	if c.CORSOrigins == defaultOrigins {
		logger.Warn("CORS_ALLOWED_ORIGINS is using the local default, set it for production")
	}
	return nil
}

// Origins splits CORS_ALLOWED_ORIGINS into trimmed entries.
func (c *Config) Origins() []string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
