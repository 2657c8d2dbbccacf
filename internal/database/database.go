package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // Pure Go SQLite driver (uses modernc.org/sqlite)
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/crypto"
	"github.com/taskdeck/taskdeck/internal/model"
)

// DB wraps the GORM DB connection with additional context
type DB struct {
	*gorm.DB
	Driver string
}

// New creates a new database connection based on configuration
func New(cfg *config.Config) (*DB, error) {
	var db *gorm.DB
	var err error

	// Configure logger to only log slow queries (>1 second)
	slowLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	gormConfig := &gorm.Config{
		Logger: slowLogger,
	}

	driver := cfg.DatabaseDriver
	dsn := cfg.CleanDSN()

	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		sqliteDSN := strings.TrimPrefix(dsn, "file:")

		// Ensure parent directory exists for file-based databases
		if sqliteDSN != ":memory:" && !strings.HasPrefix(sqliteDSN, ":memory:") {
			dir := filepath.Dir(sqliteDSN)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}

		db, err = gorm.Open(sqlite.Open(sqliteDSN), gormConfig)
		if err == nil {
			// WAL mode allows concurrent readers while a writer is active,
			// preventing connection starvation with multiple goroutines.
			db.Exec("PRAGMA journal_mode=WAL")
			// busy_timeout makes SQLite wait (up to 5s) when the DB is locked
			// instead of immediately returning SQLITE_BUSY.
			db.Exec("PRAGMA busy_timeout = 5000")
			db.Exec("PRAGMA foreign_keys = ON")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// With WAL mode, SQLite supports concurrent readers alongside a
		// single writer. Allow a few connections so the session sweeper
		// doesn't block behind request handlers.
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(4)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// Migrate runs database migrations using GORM's AutoMigrate
func (db *DB) Migrate() error {
	return db.AutoMigrate(model.AllModels()...)
}

// Seed creates the bootstrap admin account when one is configured and no
// profile with that email exists yet. The bootstrap admin is created already
// verified so the first sign-in works without a confirmation step.
// Idempotent: a second start with the same configuration is a no-op.
func (db *DB) Seed(cfg *config.Config) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.Profile{}).Where("email = ?", cfg.BootstrapAdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for bootstrap admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	now := time.Now()
	admin := &model.Profile{
		Name:         cfg.BootstrapAdminName,
		Email:        cfg.BootstrapAdminEmail,
		Role:         model.RoleAdmin,
		PasswordHash: hash,
		VerifiedAt:   &now,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	log.Printf("Created bootstrap admin %s", cfg.BootstrapAdminEmail)
	return nil
}

// IsPostgres returns true if using PostgreSQL
func (db *DB) IsPostgres() bool {
	return db.Driver == "postgres"
}

// IsSQLite returns true if using SQLite
func (db *DB) IsSQLite() bool {
	return db.Driver == "sqlite"
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
