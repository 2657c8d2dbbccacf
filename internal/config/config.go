package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the server
type Config struct {
	// Server settings
	Port        int
	CORSOrigins []string

	// Database
	DatabaseDSN    string
	DatabaseDriver string // "postgres" or "sqlite", auto-detected from DSN

	// Security
	SessionSecret []byte

	// Session lifetimes
	SessionTTL      time.Duration
	VerificationTTL time.Duration

	// Bootstrap admin account, seeded on startup when set
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string
}

// Load reads configuration from environment variables.
// A missing session secret or an unrecognized database DSN is a fatal
// configuration error: the server refuses to start rather than retry.
func Load() (*Config, error) {
	cfg := &Config{}

	// Server
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"})

	// Database
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "sqlite3://./taskdeck.db")
	cfg.DatabaseDriver = detectDriver(cfg.DatabaseDSN)
	if cfg.DatabaseDriver == "" {
		return nil, fmt.Errorf("DATABASE_DSN %q is not a recognized postgres or sqlite DSN", cfg.DatabaseDSN)
	}

	// Security
	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	cfg.SessionSecret = []byte(sessionSecret)

	// Session lifetimes
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 30*24*time.Hour)
	cfg.VerificationTTL = getEnvDuration("VERIFICATION_TTL", 48*time.Hour)

	// Bootstrap admin
	cfg.BootstrapAdminEmail = getEnv("BOOTSTRAP_ADMIN_EMAIL", "")
	cfg.BootstrapAdminPassword = getEnv("BOOTSTRAP_ADMIN_PASSWORD", "")
	cfg.BootstrapAdminName = getEnv("BOOTSTRAP_ADMIN_NAME", "Admin")
	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword == "" {
		return nil, fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD is required when BOOTSTRAP_ADMIN_EMAIL is set")
	}

	return cfg, nil
}

// detectDriver determines the database driver from DSN. Returns "" for DSNs
// that match neither driver.
func detectDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.HasPrefix(dsn, "sqlite3://") || strings.HasPrefix(dsn, "sqlite://") {
		return "sqlite"
	}
	if strings.HasSuffix(dsn, ".db") || strings.HasSuffix(dsn, ".sqlite") || dsn == ":memory:" {
		return "sqlite"
	}
	return ""
}

// CleanDSN removes the driver prefix from DSN for the database layer
func (c *Config) CleanDSN() string {
	dsn := c.DatabaseDSN
	dsn = strings.TrimPrefix(dsn, "postgres://")
	dsn = strings.TrimPrefix(dsn, "postgresql://")
	dsn = strings.TrimPrefix(dsn, "sqlite3://")
	dsn = strings.TrimPrefix(dsn, "sqlite://")

	// For postgres, add the prefix back
	if c.DatabaseDriver == "postgres" {
		return "postgres://" + dsn
	}
	return dsn
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
