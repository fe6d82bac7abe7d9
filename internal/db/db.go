package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB holding the learned question, guess and game history tables.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
// The pool is pinned to one connection because every new connection to
// ":memory:" would see an empty database.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the location the database was opened from.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_text TEXT NOT NULL UNIQUE,
    feature TEXT NOT NULL DEFAULT 'ai_generated' CHECK(feature IN ('ai_generated','cached','emergency')),
    ask_count INTEGER NOT NULL DEFAULT 0,
    result_count INTEGER NOT NULL DEFAULT 0,
    success_rate REAL NOT NULL DEFAULT 0,
    last_used DATETIME,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS domain_questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    domain TEXT NOT NULL,
    question_id INTEGER NOT NULL REFERENCES questions(id),
    position INTEGER,
    usage_count INTEGER NOT NULL DEFAULT 0,
    effectiveness REAL NOT NULL DEFAULT 0.5 CHECK(effectiveness >= 0 AND effectiveness <= 1),
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(domain, question_id)
);

CREATE INDEX IF NOT EXISTS idx_domain_questions ON domain_questions(domain, position);
CREATE INDEX IF NOT EXISTS idx_domain_questions_rank ON domain_questions(domain, effectiveness DESC, usage_count DESC);

CREATE TABLE IF NOT EXISTS domain_guesses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    domain TEXT NOT NULL,
    entity_name TEXT NOT NULL COLLATE NOCASE,
    success_count INTEGER NOT NULL DEFAULT 0,
    fail_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(domain, entity_name)
);

CREATE INDEX IF NOT EXISTS idx_domain_guesses_success ON domain_guesses(domain, success_count DESC);

CREATE TABLE IF NOT EXISTS game_history (
    id TEXT PRIMARY KEY,
    target_entity TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
    guessed_entity TEXT NOT NULL DEFAULT '',
    domain TEXT NOT NULL,
    was_correct INTEGER NOT NULL DEFAULT 0,
    questions_count INTEGER NOT NULL DEFAULT 0,
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    completed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_game_history_target ON game_history(domain, target_entity, was_correct);

CREATE TABLE IF NOT EXISTS game_questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL REFERENCES game_history(id) ON DELETE CASCADE,
    question_id INTEGER NOT NULL REFERENCES questions(id),
    answer TEXT NOT NULL CHECK(answer IN ('yes','no','unknown')),
    ask_order INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_questions_game ON game_questions(game_id, ask_order);
`
