package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ration-ai/ration/pkg/models"
)

// Journal records and summarizes routed requests. The journal is an
// observability aid; the budget ledger, not the journal, is the source
// of truth for spend.
type Journal interface {
	// Record stores one completed request.
	Record(ctx context.Context, rec models.RequestRecord) error
	// Summary aggregates requests per backend since a given time.
	// A zero since covers everything.
	Summary(ctx context.Context, since time.Time) ([]models.UsageSummary, error)
	// Recent returns the newest records, most recent first.
	Recent(ctx context.Context, limit int) ([]models.RequestRecord, error)
	// Close releases resources.
	Close() error
}

// SQLiteJournal implements Journal with a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	backend TEXT NOT NULL,
	model TEXT NOT NULL,
	reason TEXT NOT NULL,
	fallback INTEGER NOT NULL DEFAULT 0,
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cost REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_requests_time ON requests(created_at);
`

// New creates a SQLiteJournal and runs auto-migration.
func New(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal db: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Record stores one completed request.
func (j *SQLiteJournal) Record(ctx context.Context, rec models.RequestRecord) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO requests (backend, model, reason, fallback, input_tokens, output_tokens, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Backend, rec.Model, rec.Reason, rec.Fallback, rec.InputTokens, rec.OutputTokens, rec.Cost, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}
	return nil
}

// Summary aggregates requests per backend since a given time.
func (j *SQLiteJournal) Summary(ctx context.Context, since time.Time) ([]models.UsageSummary, error) {
	query := `SELECT backend, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost) FROM requests`
	var args []any
	if !since.IsZero() {
		query += ` WHERE created_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY backend ORDER BY backend`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.UsageSummary
	for rows.Next() {
		var s models.UsageSummary
		if err := rows.Scan(&s.Backend, &s.Requests, &s.InputTokens, &s.OutputTokens, &s.Cost); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Recent returns the newest records, most recent first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]models.RequestRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, backend, model, reason, fallback, input_tokens, output_tokens, cost, created_at
		 FROM requests ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent requests: %w", err)
	}
	defer rows.Close()

	var records []models.RequestRecord
	for rows.Next() {
		var r models.RequestRecord
		if err := rows.Scan(&r.ID, &r.Backend, &r.Model, &r.Reason, &r.Fallback, &r.InputTokens, &r.OutputTokens, &r.Cost, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
