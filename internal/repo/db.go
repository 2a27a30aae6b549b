// Package repo is the GORM persistence layer: confessions, replies, the like
// ledger, bans and idempotency records, on SQLite or PostgreSQL. Functions
// take the *gorm.DB explicitly so services can pass a transaction instead.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/campus-hub/internal/domain"
)

// ErrUnsupportedURL is returned by Open for URLs that are neither sqlite://
// nor postgres://.
var ErrUnsupportedURL = errors.New("database url must start with sqlite:// or postgres://")

// Pragmas applied to every SQLite connection in the pool, not just the first.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

type pool struct {
	maxOpen, maxIdle int
	idle, life       time.Duration
}

var (
	// SQLite has a single writer; more connections only queue on the lock.
	sqlitePool   = pool{maxOpen: 10, maxIdle: 10, idle: 5 * time.Minute, life: 30 * time.Minute}
	postgresPool = pool{maxOpen: 50, maxIdle: 10, idle: 5 * time.Minute, life: 30 * time.Minute}
)

// Open connects to the database named by url: "sqlite://<path>" or a
// "postgres://" DSN passed to the driver as is.
func Open(url string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return OpenSQLite(strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "postgres://"):
		return OpenPostgres(url)
	default:
		return nil, ErrUnsupportedURL
	}
}

// OpenSQLite opens or creates the SQLite file at path. The parent directory
// must exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	return open(sqlite.Open(sqliteDSN(path)), sqlitePool)
}

// OpenPostgres opens a PostgreSQL pool for dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return open(postgres.Open(dsn), postgresPool)
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(path)
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// utcNow stamps created_at and updated_at. SQLite orders timestamps as text,
// so they must share one offset whatever the process time zone is.
func utcNow() time.Time { return time.Now().UTC() }

func open(d gorm.Dialector, p pool) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger:         NewLogger(slowQueryThreshold),
		TranslateError: true,
		NowFunc:        utcNow,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxIdle)
	sqlDB.SetConnMaxIdleTime(p.idle)
	sqlDB.SetConnMaxLifetime(p.life)
	return db, nil
}

// EnableTracing makes every query a child span of the span in its context.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the schema of every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Confession{},
		&domain.Reply{},
		&domain.ConfessionLike{},
		&domain.Ban{},
		&domain.Idempotency{},
	)
}
