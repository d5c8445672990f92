package rdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultPath is the sqlite database used when the URL carries no DSN.
const DefaultPath = ".webstack/state.db"

// ParseURL returns the sqlite DSN of a state URL of the form sqlite:<dsn>
// (or sqlite3:<dsn>). An empty DSN selects DefaultPath.
func ParseURL(dbURL string) (string, error) {
	for _, scheme := range []string{"sqlite:", "sqlite3:"} {
		if dsn, ok := strings.CutPrefix(dbURL, scheme); ok {
			if dsn == "" {
				dsn = DefaultPath
			}
			return dsn, nil
		}
	}
	return "", fmt.Errorf("unsupported db scheme: %s", dbURL)
}

// filePath returns the file backing dsn, or "" for in-memory databases.
func filePath(dsn string) string {
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return ""
	}
	return path
}

// Open opens the sqlite database named by dbURL and migrates its schema.
// The parent directory of a file database is created.
func Open(ctx context.Context, dbURL string) (*gorm.DB, error) {
	dsn, err := ParseURL(dbURL)
	if err != nil {
		return nil, err
	}
	if p := filePath(dsn); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger{}})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&OutputRecord{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}
