package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS questions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	text        TEXT NOT NULL UNIQUE,
	options     TEXT NOT NULL,
	answer      TEXT NOT NULL,
	explanation TEXT NOT NULL DEFAULT '',
	imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLite is a Bank stored in a SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ Bank = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the bank database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Import upserts entries keyed by question text and returns how many were
// written.
func (s *SQLite) Import(ctx context.Context, entries []Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO questions (text, options, answer, explanation)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(text) DO UPDATE SET
			options = excluded.options,
			answer = excluded.answer,
			explanation = excluded.explanation`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		opts, err := json.Marshal(e.Options)
		if err != nil {
			return 0, fmt.Errorf("encode options for %q: %w", e.Text, err)
		}
		if _, err := stmt.ExecContext(ctx, e.Text, string(opts), e.Answer, e.Explanation); err != nil {
			return 0, fmt.Errorf("import %q: %w", e.Text, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(entries), nil
}

func (s *SQLite) Random(ctx context.Context) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT text, options, answer, explanation FROM questions ORDER BY RANDOM() LIMIT 1`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrEmpty
	}
	return e, err
}

func (s *SQLite) Lookup(ctx context.Context, text string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT text, options, answer, explanation FROM questions WHERE text = ?`, text)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func scanEntry(row *sql.Row) (Entry, error) {
	var (
		e    Entry
		opts string
	)
	if err := row.Scan(&e.Text, &opts, &e.Answer, &e.Explanation); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(opts), &e.Options); err != nil {
		return Entry{}, fmt.Errorf("decode options for %q: %w", e.Text, err)
	}
	return e, nil
}

// applyPragmas configures SQLite for a single-writer, read-mostly bank.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
