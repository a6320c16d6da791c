package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// DateLayout is the calendar-day format stored in date columns.
const DateLayout = "2006-01-02"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidScore = errors.New("score out of range")
	ErrInvalidHours = errors.New("deep work hours must not be negative")
)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS profiles (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		chat_id     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_logs (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		date               TEXT NOT NULL,
		productivity_score INTEGER NOT NULL DEFAULT 0,
		deep_work_hours    REAL NOT NULL DEFAULT 0,
		notes              TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_daily_logs_user_date    ON daily_logs(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_daily_logs_user_created ON daily_logs(user_id, created_at);

	CREATE TABLE IF NOT EXISTS habits (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL DEFAULT 'good',
		active      INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habit_logs (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		habit_id    TEXT NOT NULL REFERENCES habits(id),
		date        TEXT NOT NULL,
		completed   INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_habit_logs_user_date ON habit_logs(user_id, date);

	CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'active',
		deadline    TEXT,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		project_id   TEXT REFERENCES projects(id),
		title        TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		energy_level TEXT NOT NULL DEFAULT '',
		due_date     TEXT,
		created_at   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);

	CREATE TABLE IF NOT EXISTS focus_logs (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		focus_score INTEGER NOT NULL,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('habits_per_day',    '4'),
		('weekly_goal',       '7'),
		('good_day_habits',   '3'),
		('success_threshold', '80'),
		('overdue_penalty',   '10');
	`
	_, err := s.db.Exec(ddl)
	return err
}

func newID() string {
	return uuid.NewString()
}

// timeLayout keeps a fixed width so created_at compares correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
