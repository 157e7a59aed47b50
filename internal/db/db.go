package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/heissler3/getnzbs/internal/config"
	_ "modernc.org/sqlite"
)

var database *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS fetches (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    guid            TEXT UNIQUE NOT NULL,
    title           TEXT NOT NULL,
    server          TEXT,
    category        TEXT,
    size            INTEGER,
    download_url    TEXT NOT NULL,
    file_path       TEXT,
    status          TEXT DEFAULT 'ok',
    error_message   TEXT,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_fetches_guid ON fetches(guid);

CREATE TABLE IF NOT EXISTS search_history (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    query           TEXT NOT NULL,
    server          TEXT,
    result_count    INTEGER DEFAULT 0,
    params          TEXT,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS search_cache (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    cache_key       TEXT UNIQUE NOT NULL,
    query           TEXT,
    server          TEXT,
    results_json    TEXT NOT NULL,
    result_count    INTEGER DEFAULT 0,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP,
    expires_at      INTEGER NOT NULL
);
`

// Init initializes the database connection and schema
func Init() error {
	return InitAt(config.GetDBPath())
}

// InitAt opens (or creates) the database at the given path.
func InitAt(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	if _, err := db.Exec(schema); err != nil {
		return err
	}

	database = db
	return nil
}

// DB returns the database connection
func DB() *sql.DB {
	return database
}

// Close closes the database connection
func Close() error {
	if database != nil {
		return database.Close()
	}
	return nil
}
