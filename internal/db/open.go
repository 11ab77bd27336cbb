package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultPath = "./data/clubgate.db"

type Config struct {
	Path string // e.g. "./data/clubgate.db"; ":memory:" for a throwaway database
	Env  string // "dev" | "prod"
}

// Open connects to SQLite, verifies the connection and applies migrations.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	dsn, err := dsnFor(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Single connection: all writes already funnel through Worker, and an
	// in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// pragmas applied per connection:
//   - foreign_keys ON
//   - WAL for concurrent readers
//   - synchronous NORMAL
//   - busy_timeout to absorb SQLITE_BUSY
const pragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

func dsnFor(path string) (string, error) {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		if path == ":memory:" {
			return "file::memory:?" + pragmas, nil
		}
		return path + sep + pragmas, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir db dir: %w", err)
	}
	return fmt.Sprintf("file:%s?%s", path, pragmas), nil
}
