package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"twoogle/internal/app/board"
	"twoogle/internal/configs"
	"twoogle/internal/pkg/logx"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Open connects to the store selected by cfg.StorageDriver and applies
// pending migrations.
func Open(ctx context.Context, cfg *configs.AppConfig) (board.Store, error) {
	switch cfg.StorageDriver {
	case configs.DriverPostgres:
		pool, err := NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil

	case configs.DriverSQLite:
		return OpenSQLite(ctx, cfg.StoragePath)

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// NewPool initializes a new PostgreSQL connection pool and executes database migrations.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := runMigrations(ctx, sqlDB, goose.DialectPostgres, "migrations/postgres"); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// OpenSQLite opens (creating if needed) the embedded database file at path and
// executes database migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; transactions queue on the pool instead of hitting SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, sqlDB, goose.DialectSQLite3, "migrations/sqlite"); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return NewSQLiteStore(sqlDB), nil
}

// sqliteDSN enables foreign keys and makes every transaction BEGIN IMMEDIATE,
// so the counter read in InsertMessage already holds the write lock.
func sqliteDSN(path string) string {
	return "file:" + path + "?_fk=1&_txlock=immediate&_busy_timeout=5000"
}

// runMigrations applies all pending migrations of one dialect from the embedded file system.
func runMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	migrations, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("failed to locate migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Database migrations applied successfully.", "dialect", string(dialect), "applied", len(results))
	return nil
}
