// Package history persists completed claim analyses in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one stored analysis.
type Entry struct {
	ID             string    `json:"id"`
	Claim          string    `json:"claim"`
	Mode           string    `json:"mode"`
	Strategy       string    `json:"strategy"`
	Classification string    `json:"classification"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`

	// Payload is the full analysis JSON (questions, evidence, verdict).
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Store is a SQLite-backed analysis log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id             TEXT PRIMARY KEY,
	claim          TEXT NOT NULL,
	mode           TEXT NOT NULL,
	strategy       TEXT NOT NULL,
	classification TEXT NOT NULL,
	confidence     REAL NOT NULL,
	payload        TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append stores an analysis and returns its generated ID.
func (s *Store) Append(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Payload == nil {
		e.Payload = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, claim, mode, strategy, classification, confidence, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Claim, e.Mode, e.Strategy, e.Classification, e.Confidence, string(e.Payload), e.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("inserting analysis: %w", err)
	}
	return e.ID, nil
}

// List returns the most recent analyses, newest first. Payloads are
// omitted; use Get for a full record.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim, mode, strategy, classification, confidence, created_at
		 FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Claim, &e.Mode, &e.Strategy, &e.Classification, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one analysis with its payload.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, claim, mode, strategy, classification, confidence, payload, created_at
		 FROM analyses WHERE id = ?`, id).
		Scan(&e.ID, &e.Claim, &e.Mode, &e.Strategy, &e.Classification, &e.Confidence, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Payload = json.RawMessage(payload)
	return &e, nil
}

// Clear deletes every stored analysis and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
