package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded in the journal
const (
	ActionTrash   = "TRASH"
	ActionDryRun  = "DRY_RUN"
	ActionSkip    = "SKIP"
	ActionBlocked = "BLOCKED"
	ActionError   = "ERROR"
)

// TrashDB manages the SQLite journal of trash operations
type TrashDB struct {
	db *sql.DB
}

// TrashEvent represents a single trash operation
type TrashEvent struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	Path          string    `json:"path"`
	FileName      string    `json:"file_name"`
	ObjectType    string    `json:"object_type"` // file, directory, symlink or unknown
	Size          int64     `json:"size"`
	TrashLocation string    `json:"trash_location,omitempty"`
	Platform      string    `json:"platform"`
	ExitCode      int       `json:"exit_code"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewTrashDB creates a new database connection and initializes schema
func NewTrashDB(dbPath string) (*TrashDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing.
	// _busy_timeout is set per connection, so it goes in the DSN rather than a PRAGMA.
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A query instead of Ping() so the database file is created
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	tdb := &TrashDB{db: db}
	if err = tdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return tdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *TrashDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trash_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		trash_location TEXT,
		platform TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON trash_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON trash_events(action);
	CREATE INDEX IF NOT EXISTS idx_path ON trash_events(path);
	CREATE INDEX IF NOT EXISTS idx_size ON trash_events(size);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordEvent inserts a trash event into the database and returns its id.
// FileName defaults to the base of Path and Timestamp to now.
func (d *TrashDB) RecordEvent(ev TrashEvent) (int64, error) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.FileName == "" {
		ev.FileName = filepath.Base(ev.Path)
	}
	if ev.ObjectType == "" {
		ev.ObjectType = "unknown"
	}

	query := `
	INSERT INTO trash_events (
		timestamp, action, path, file_name, object_type, size,
		trash_location, platform, exit_code, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := d.db.Exec(
		query,
		ev.Timestamp,
		ev.Action,
		ev.Path,
		ev.FileName,
		ev.ObjectType,
		ev.Size,
		ev.TrashLocation,
		ev.Platform,
		ev.ExitCode,
		ev.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record trash event: %w", err)
	}
	return res.LastInsertId()
}

// Close closes the database connection
func (d *TrashDB) Close() error {
	return d.db.Close()
}
