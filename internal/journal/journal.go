// Package journal records action runs in a local SQLite database.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS actions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT NOT NULL,
    name         TEXT NOT NULL,
    chord        TEXT NOT NULL,
    started_at   INTEGER NOT NULL,
    duration_ms  INTEGER NOT NULL,
    error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_actions_started ON actions(started_at);
CREATE INDEX IF NOT EXISTS idx_actions_name ON actions(name);
`

// ErrClosed is returned by queries after Close.
var ErrClosed = errors.New("journal closed")

// DefaultQueueSize bounds the records waiting to be written.
const DefaultQueueSize = 512

// Record is one finished action run.
type Record struct {
	RunID    string
	Action   string
	Chord    string
	Started  time.Time
	Duration time.Duration
	// Err is empty for successful runs.
	Err string
}

// Summary aggregates the runs of one action.
type Summary struct {
	Action   string
	Runs     int
	Failures int
}

// Journal writes records on a background goroutine so callers never wait
// on the disk.
type Journal struct {
	db      *sql.DB
	queue   chan Record
	done    chan struct{}
	logger  *slog.Logger
	dropped atomic.Uint64

	mu      sync.RWMutex
	stopped bool
	closed  bool
}

// Open opens or creates the database at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	j := &Journal{
		db:     db,
		queue:  make(chan Record, DefaultQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go j.writer()
	return j, nil
}

// Add queues r without blocking. Records are dropped when the queue is
// full or the journal is closed.
func (j *Journal) Add(r Record) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.stopped {
		return
	}
	select {
	case j.queue <- r:
	default:
		if j.dropped.Add(1) == 1 {
			j.logger.Warn("[journal] queue full, dropping records")
		}
	}
}

// Dropped is the number of records lost to a full queue.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

func (j *Journal) writer() {
	defer close(j.done)
	for r := range j.queue {
		if err := j.insert(r); err != nil {
			j.logger.Error("[journal] write failed", "action", r.Action, "error", err)
		}
	}
}

func (j *Journal) insert(r Record) error {
	var errText sql.NullString
	if r.Err != "" {
		errText = sql.NullString{String: r.Err, Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO actions (run_id, name, chord, started_at, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Action, r.Chord, r.Started.UnixMilli(), r.Duration.Milliseconds(), errText,
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(limit int) ([]Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}
	rows, err := j.db.Query(`
		SELECT run_id, name, chord, started_at, duration_ms, error
		FROM actions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent actions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			started int64
			ms      int64
			errText sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.Action, &r.Chord, &started, &ms, &errText); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		r.Started = time.UnixMilli(started)
		r.Duration = time.Duration(ms) * time.Millisecond
		r.Err = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summarize counts runs and failures per action for runID, or for all
// runs when runID is empty.
func (j *Journal) Summarize(runID string) ([]Summary, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}
	rows, err := j.db.Query(`
		SELECT name, COUNT(*), COUNT(error)
		FROM actions WHERE ? = '' OR run_id = ?
		GROUP BY name ORDER BY name`, runID, runID)
	if err != nil {
		return nil, fmt.Errorf("summarize actions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Action, &s.Runs, &s.Failures); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Stop stops accepting records and waits until the queued ones are
// written. Queries keep working until Close.
func (j *Journal) Stop() {
	j.mu.Lock()
	if !j.stopped {
		j.stopped = true
		close(j.queue)
	}
	j.mu.Unlock()
	<-j.done
}

// Close drains the queue and closes the database.
func (j *Journal) Close() error {
	j.Stop()
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}
