package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

// ErrNoRecords is returned by Best when a maze has no completed passes.
var ErrNoRecords = errors.New("no history records")

const defaultLimit = 50

const createPassesStatement = `CREATE TABLE IF NOT EXISTS passes (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	maze TEXT NOT NULL,
	strategy TEXT NOT NULL,
	heuristic TEXT NOT NULL DEFAULT '',
	pass INTEGER NOT NULL,
	moves INTEGER NOT NULL,
	path_length INTEGER NOT NULL,
	aborted INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	duration_ns INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS passes_maze ON passes (maze, created_at);`

const insertPassStatement = `INSERT INTO passes
	(id, session_id, maze, strategy, heuristic, pass, moves, path_length, aborted, error, duration_ns, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

const selectColumns = `SELECT id, session_id, maze, strategy, heuristic, pass, moves, path_length, aborted, error, duration_ns, created_at FROM passes`

// Store keeps pass records in a SQLite database.
type Store struct {
	db *sql.DB
}

var _ service.HistoryStore = (*Store)(nil)

// Open opens or creates the database at path. ":memory:" gives a private in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite allows one writer; an in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createPassesStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores rec, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, rec service.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, insertPassStatement,
		rec.ID, rec.SessionID, rec.Maze, rec.Strategy, rec.Heuristic, rec.Pass, rec.Moves,
		rec.PathLength, rec.Aborted, rec.Error, int64(rec.Duration), rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}
	return nil
}

// RecordReport stores every pass of a run report.
func (s *Store) RecordReport(ctx context.Context, sessionID, maze string, settings engine.Config, report *engine.RunReport) error {
	for _, rec := range service.HistoryFromReport(sessionID, maze, settings, report) {
		if err := s.Record(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// ListByMaze returns the newest records for a maze first.
func (s *Store) ListByMaze(ctx context.Context, maze string, opts service.HistoryOptions) ([]service.HistoryRecord, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultLimit
	}
	query := selectColumns + ` WHERE maze = ?`
	args := []interface{}{maze}
	if opts.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, opts.Strategy)
	}
	query += ` ORDER BY created_at DESC, pass DESC LIMIT ?;`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]service.HistoryRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Best returns the completed pass with the shortest path for a maze, ties going to
// the fewest moves and then the earliest record.
func (s *Store) Best(ctx context.Context, maze string) (*service.HistoryRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+
		` WHERE maze = ? AND aborted = 0 AND path_length > 0 ORDER BY path_length ASC, moves ASC, created_at ASC LIMIT 1;`, maze)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRecords
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (service.HistoryRecord, error) {
	var rec service.HistoryRecord
	var duration, created int64
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.Maze, &rec.Strategy, &rec.Heuristic, &rec.Pass,
		&rec.Moves, &rec.PathLength, &rec.Aborted, &rec.Error, &duration, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to read history record: %w", err)
	}
	rec.Duration = time.Duration(duration)
	rec.CreatedAt = time.Unix(0, created)
	return rec, nil
}
