package caches

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"planner-service/internal/models"
	"planner-service/internal/services/cache"
)

// SQLiteCache keeps the collection in a single-row key/value table of an
// embedded SQLite database.
type SQLiteCache struct {
	db *sql.DB

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

// NewSQLiteCache opens (or creates) the database at path.
func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, "create cache directory for %s", path)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite cache")
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	statements := []string{
		"PRAGMA journal_mode = WAL",
		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "execute %q", stmt)
		}
	}
	return &SQLiteCache{db: db}, nil
}

func (sc *SQLiteCache) Name() string {
	return "SQLITE"
}

func (sc *SQLiteCache) Load(ctx context.Context) ([]models.Project, error) {
	var data []byte
	err := sc.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", cache.ProjectsKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		sc.misses.Add(1)
		return []models.Project{}, nil
	}
	if err != nil {
		sc.misses.Add(1)
		return nil, errors.Wrap(err, "read sqlite cache")
	}
	sc.hits.Add(1)
	return decodeProjects(data)
}

func (sc *SQLiteCache) Save(ctx context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}
	_, err = sc.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		cache.ProjectsKey, data)
	if err != nil {
		return errors.Wrap(err, "write sqlite cache")
	}
	sc.writes.Add(1)
	return nil
}

func (sc *SQLiteCache) GetStats() cache.LayerStats {
	var size int64
	_ = sc.db.QueryRow("SELECT COALESCE(length(value), 0) FROM kv WHERE key = ?", cache.ProjectsKey).Scan(&size)
	hits, misses := sc.hits.Load(), sc.misses.Load()
	return cache.LayerStats{
		Name:      "SQLite",
		SizeBytes: size,
		Hits:      hits,
		Misses:    misses,
		HitRate:   cache.HitRate(hits, misses),
		Writes:    sc.writes.Load(),
	}
}

func (sc *SQLiteCache) Close() error {
	return sc.db.Close()
}
