// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive records every notes run in a SQLite database with a
// full-text index over section bodies, so past meetings can be listed,
// searched, and exported.
package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/notes-engine/internal/notes"
	"github.com/pdiddy/notes-engine/pkg/types"
)

const dbFile = "notes.db"

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("archived run not found")

// Record is one archived run. Notes is set for notes mode; Summary holds
// the verbatim reply for summary mode.
type Record struct {
	ID          string
	Source      string
	Mode        types.Mode
	Destination string
	CreatedAt   time.Time
	Notes       notes.Notes
	Summary     string
}

// Run is the list view of a Record without its bodies.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Source      string    `json:"source" yaml:"source"`
	Mode        string    `json:"mode" yaml:"mode"`
	Destination string    `json:"destination" yaml:"destination"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Store manages the archive database.
type Store struct {
	db         *sql.DB
	maxResults int

	// fts is false when the sqlite3 driver was built without FTS5
	// (the sqlite_fts5 build tag); Search then falls back to LIKE.
	fts bool
}

// Open opens or creates the archive database at cfg.Dir/notes.db and
// creates the schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			mode TEXT NOT NULL,
			destination TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			label TEXT NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_run_id ON sections(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE sections_fts USING fts5(body, content=sections, content_rowid=rowid)`,
		`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
			INSERT INTO sections_fts(rowid, body) VALUES (new.rowid, new.body);
		END`,
		`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
			INSERT INTO sections_fts(sections_fts, rowid, body) VALUES('delete', old.rowid, old.body);
		END`,
	}
	for i, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			if i == 0 && strings.Contains(err.Error(), "no such module: fts5") {
				return nil
			}
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// RunID derives the archive ID: the first 12 hex characters of the SHA-256
// of source, mode, and the creation time.
func RunID(source string, mode types.Mode, createdAt time.Time) string {
	sum := sha256.Sum256([]byte(source + string(mode) + createdAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])[:12]
}

// Save stores rec and its section bodies in one transaction and returns
// the run ID. A zero CreatedAt is set to now; an empty ID is derived.
func (s *Store) Save(ctx context.Context, rec Record) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.ID == "" {
		rec.ID = RunID(rec.Source, rec.Mode, rec.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, mode, destination, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, string(rec.Mode), rec.Destination, rec.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return "", fmt.Errorf("inserting run %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (run_id, ordinal, label, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing section insert: %w", err)
	}
	defer stmt.Close()

	if rec.Mode == types.ModeSummary {
		if _, err := stmt.ExecContext(ctx, rec.ID, 0, summaryLabel, rec.Summary); err != nil {
			return "", fmt.Errorf("inserting summary for %s: %w", rec.ID, err)
		}
	} else {
		for i, e := range rec.Notes.Entries() {
			if _, err := stmt.ExecContext(ctx, rec.ID, i, e.Section.String(), e.Body); err != nil {
				return "", fmt.Errorf("inserting %s for %s: %w", e.Section, rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// summaryLabel tags the single body row of a summary-mode run.
const summaryLabel = "AI GENERATED SUMMARY"

// List returns the most recent runs, newest first. A limit of zero uses
// the configured default.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, mode, destination, created_at FROM runs
		ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		dest    sql.NullString
		created string
	)
	if err := sc.Scan(&r.ID, &r.Source, &r.Mode, &dest, &created); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.Destination = dest.String
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at of %s: %w", r.ID, err)
	}
	r.CreatedAt = t
	return r, nil
}

// Get loads a full record by ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, source, mode, destination, created_at FROM runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return Record{}, err
	}

	rec := Record{
		ID:          run.ID,
		Source:      run.Source,
		Mode:        types.Mode(run.Mode),
		Destination: run.Destination,
		CreatedAt:   run.CreatedAt,
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, body FROM sections WHERE run_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return Record{}, fmt.Errorf("loading sections of %s: %w", id, err)
	}
	defer rows.Close()

	bodies := make(map[notes.Section]string)
	for rows.Next() {
		var label, body string
		if err := rows.Scan(&label, &body); err != nil {
			return Record{}, fmt.Errorf("scanning section: %w", err)
		}
		if rec.Mode == types.ModeSummary {
			rec.Summary = body
			continue
		}
		if sec, ok := notes.ParseSection(label); ok {
			bodies[sec] = body
		}
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}
	if rec.Mode != types.ModeSummary {
		rec.Notes = notes.NewNotes(bodies)
	}
	return rec, nil
}
