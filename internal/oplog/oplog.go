// Package oplog persists the human-readable operation history in SQLite.
// The log is append-only with a retention cap: after every append the table
// is trimmed to the newest limit rows.
package oplog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database filename under the data dir.
const FileName = "oplog.db"

// DefaultLimit caps retained lines when no limit is configured.
const DefaultLimit = 100

const timeLayout = "2006-01-02 15:04:05"

// Log is a SQLite-backed operation log.
type Log struct {
	db    *sql.DB
	limit int
	mu    sync.RWMutex
}

// Open creates or opens the log database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func Open(dbPath string, limit int) (*Log, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	l := &Log{db: db, limit: limit}
	if err := l.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return l, nil
}

func (l *Log) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at INTEGER NOT NULL,
		line TEXT NOT NULL
	);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Append records a log line and enforces the retention cap.
func (l *Log) Append(ctx context.Context, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx,
		"INSERT INTO entries (at, line) VALUES (?, ?)",
		time.Now().Unix(), message,
	)
	if err != nil {
		return fmt.Errorf("insert log line: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		"DELETE FROM entries WHERE id NOT IN (SELECT id FROM entries ORDER BY id DESC LIMIT ?)",
		l.limit,
	)
	if err != nil {
		return fmt.Errorf("trim log: %w", err)
	}

	return nil
}

// History returns the retained lines oldest first, each prefixed with its
// timestamp: "[2006-01-02 15:04:05] message".
func (l *Log) History(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		"SELECT at, line FROM entries ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var at int64
		var line string
		if err := rows.Scan(&at, &line); err != nil {
			return nil, fmt.Errorf("scan log line: %w", err)
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", time.Unix(at, 0).Format(timeLayout), line))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return lines, nil
}

// Count returns the number of retained lines.
func (l *Log) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var n int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count log lines: %w", err)
	}
	return n, nil
}

// Clear removes every line.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear log: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}
