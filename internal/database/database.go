package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the run journal: an audit trail of tag runs and the per-photo
// decisions they made. Matching never reads from it.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		dive_log TEXT,
		media_dir TEXT,
		policy TEXT,
		dry_run INTEGER DEFAULT 0,
		total INTEGER DEFAULT 0,
		matched INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		write_errors INTEGER DEFAULT 0,
		interrupted INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		photo_path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		dive_number INTEGER,
		confidence TEXT,
		reason TEXT,
		status TEXT,
		write_error TEXT,
		candidates TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_photo ON decisions(photo_path);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Columns added after the first release
	migrations := []string{
		`ALTER TABLE runs ADD COLUMN updated INTEGER DEFAULT 0`,
		`ALTER TABLE runs ADD COLUMN unchanged INTEGER DEFAULT 0`,
	}

	for _, migration := range migrations {
		// Ignore errors for migrations (column may already exist)
		db.conn.Exec(migration)
	}

	return nil
}
