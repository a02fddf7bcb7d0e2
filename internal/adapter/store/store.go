// Package store persists retrieved soundings in SQL so repeated requests
// are served without touching the upstream archives.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// The schema and statements are written to run unchanged on SQLite and
// MySQL: VARCHAR keys, TEXT-compatible payload and times as RFC 3339 strings.
const schema = `CREATE TABLE IF NOT EXISTS soundings (
  cache_key    VARCHAR(64) NOT NULL PRIMARY KEY,
  station      VARCHAR(16) NOT NULL,
  provenance   VARCHAR(16) NOT NULL,
  payload      MEDIUMTEXT  NOT NULL,
  retrieved_at VARCHAR(40) NOT NULL
)`

const (
	selectResult = `SELECT payload FROM soundings WHERE cache_key = ?`
	upsertResult = `REPLACE INTO soundings (cache_key, station, provenance, payload, retrieved_at) VALUES (?, ?, ?, ?, ?)`
	countResults = `SELECT COUNT(*) FROM soundings`
)

// Store is a SQL-backed table of sounding results keyed by request.
type Store struct {
	db *sql.DB
}

// Open connects with the given driver ("sqlite3" or "mysql"), verifies the
// connection and creates the table if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	switch driver {
	case "sqlite3":
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored result for key. ok is false when none is stored.
func (s *Store) Get(ctx context.Context, key string) (result domain.SoundingResult, ok bool, err error) {
	var payload string
	err = s.db.QueryRowContext(ctx, selectResult, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SoundingResult{}, false, nil
	}
	if err != nil {
		return domain.SoundingResult{}, false, fmt.Errorf("select %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return domain.SoundingResult{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return result, true, nil
}

// Put stores result under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, result domain.SoundingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, upsertResult,
		key,
		result.Station,
		string(result.Provenance),
		string(payload),
		result.RetrievedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Count returns the number of stored results.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countResults).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
