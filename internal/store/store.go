// Package store is an optional SQLite-backed extraction cache. Records are
// keyed by file path and content hash; an unchanged file skips reparsing on
// the next run. A cache hit must be indistinguishable from fresh extraction
// in the final report.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/walkr-io/walkr/internal/report"
)

// recordVersion is bumped whenever the cached record shape changes. A
// mismatch invalidates the whole cache on open.
const recordVersion = "1"

// Store is the SQLite data access layer for the extraction cache.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled, creates
// the schema, and drops all cached records if they were written by an
// incompatible version.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id          INTEGER PRIMARY KEY,
  path        TEXT NOT NULL UNIQUE,
  hash        TEXT NOT NULL,
  module      TEXT NOT NULL,
  record      TEXT NOT NULL,
  analyzed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT
);
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate cache: %w", err)
	}
	stored, err := s.GetMetadata("record_version")
	if err != nil {
		return err
	}
	if stored != recordVersion {
		if _, err := s.db.Exec("DELETE FROM files"); err != nil {
			return fmt.Errorf("clear stale cache: %w", err)
		}
		if err := s.SetMetadata("record_version", recordVersion); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the cached ModuleNode for (path, hash), or ok=false on a
// miss. A row with a different hash is a miss: the file changed.
func (s *Store) Lookup(path, hash string) (*report.ModuleNode, bool, error) {
	var data string
	err := s.db.QueryRow(
		"SELECT record FROM files WHERE path = ? AND hash = ?", path, hash,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup %s: %w", path, err)
	}
	var mod report.ModuleNode
	if err := json.Unmarshal([]byte(data), &mod); err != nil {
		// A corrupt row is treated as a miss, not a failure.
		return nil, false, nil
	}
	return &mod, true, nil
}

// Save upserts the extraction record for a file. Parse failures are never
// cached; a broken file is reparsed on every run.
func (s *Store) Save(path, hash string, mod *report.ModuleNode) error {
	data, err := json.Marshal(mod)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", path, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO files (path, hash, module, record, analyzed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
		  hash = excluded.hash,
		  module = excluded.module,
		  record = excluded.record,
		  analyzed_at = excluded.analyzed_at`,
		path, hash, mod.Name, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("cache save %s: %w", path, err)
	}
	return nil
}

// Prune removes cached records for files no longer present in the scan set.
func (s *Store) Prune(keep []string) error {
	if len(keep) == 0 {
		_, err := s.db.Exec("DELETE FROM files")
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, len(keep))
	for i, p := range keep {
		args[i] = p
	}
	_, err := s.db.Exec(
		"DELETE FROM files WHERE path NOT IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("cache prune: %w", err)
	}
	return nil
}

// GetMetadata returns the value for a metadata key, or "" if unset.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
