// Package auditlog keeps a per-task lifecycle trail in sqlite so the
// history of a task survives after its queue message is gone.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event classifies an audit entry.
type Event string

const (
	EventSubmitted Event = "submitted"
	EventCompleted Event = "completed"
	EventFailed    Event = "failed"
	EventPoison    Event = "poison"
)

// Entry is one recorded lifecycle event.
type Entry struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Event     Event     `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS task_audit (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id TEXT NOT NULL,
	event TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_audit_task_id ON task_audit(task_id);
`

// Log is a sqlite-backed audit trail. Safe for concurrent use.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the audit database at path.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	return New(db)
}

// New wraps an existing database handle, applying the schema.
func New(db *sql.DB) (*Log, error) {
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Append records one lifecycle event for a task.
func (l *Log) Append(ctx context.Context, taskID string, ev Event, detail string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO task_audit (task_id, event, detail, created_at) VALUES (?, ?, ?, ?)`,
		taskID, string(ev), detail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListByTask returns all entries for a task id, oldest first.
func (l *Log) ListByTask(ctx context.Context, taskID string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, task_id, event, detail, created_at FROM task_audit WHERE task_id = ? ORDER BY id`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ev string
		if err := rows.Scan(&e.ID, &e.TaskID, &ev, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Event = Event(ev)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
