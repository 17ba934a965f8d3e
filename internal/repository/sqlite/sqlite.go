// Package sqlite persists the pipeline's durable state: indexer and download
// client definitions, library entries, tracking rows, the history trail and
// remote path mappings.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL,
	year             INTEGER NOT NULL DEFAULT 0,
	platform         TEXT NOT NULL DEFAULT '',
	path             TEXT NOT NULL DEFAULT '',
	root_folder_path TEXT NOT NULL DEFAULT '',
	game_file_id     INTEGER NOT NULL DEFAULT 0,
	monitored        INTEGER NOT NULL DEFAULT 1,
	added_at         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS game_files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id       INTEGER NOT NULL,
	relative_path TEXT NOT NULL,
	size          INTEGER NOT NULL DEFAULT 0,
	platform      TEXT NOT NULL DEFAULT '',
	added_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS indexers (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	implementation TEXT NOT NULL,
	settings       TEXT NOT NULL DEFAULT '',
	enable_rss     INTEGER NOT NULL DEFAULT 0,
	enable_search  INTEGER NOT NULL DEFAULT 1,
	priority       INTEGER NOT NULL DEFAULT 25
);

CREATE TABLE IF NOT EXISTS download_clients (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	implementation TEXT NOT NULL,
	settings       TEXT NOT NULL DEFAULT '',
	protocol       TEXT NOT NULL,
	priority       INTEGER NOT NULL DEFAULT 1,
	enable         INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS download_trackings (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	download_id  TEXT NOT NULL UNIQUE,
	game_id      INTEGER NOT NULL,
	game_title   TEXT NOT NULL DEFAULT '',
	source_title TEXT NOT NULL DEFAULT '',
	added_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS history_records (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type   TEXT NOT NULL,
	game_id      INTEGER NOT NULL,
	game_title   TEXT NOT NULL DEFAULT '',
	source_title TEXT NOT NULL DEFAULT '',
	date         TIMESTAMP NOT NULL,
	data         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS remote_path_mappings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	host        TEXT NOT NULL,
	remote_path TEXT NOT NULL,
	local_path  TEXT NOT NULL
);
`

// Open opens (and, on first run, bootstraps) the database with WAL and a
// busy timeout suitable for one process with a background writer.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	if path == ":memory:" {
		// Each connection to :memory: is its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := bootstrap(db); err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}

func bootstrap(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("cannot apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("cannot apply schema: %w", err)
	}

	return nil
}
