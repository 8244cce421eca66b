// Package scriptstore keeps a library of Othello strategy scripts in SQLite
// together with a log of the moves each script chose in play.
package scriptstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/asobiba/minigames/internal/othello"
)

// ErrNotFound is returned when a script or run does not exist.
var ErrNotFound = errors.New("scriptstore: not found")

// Script is a named strategy source.
type Script struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Run is one game a script played. Winner is empty until the game ends.
type Run struct {
	ID         string     `json:"id"`
	ScriptID   string     `json:"scriptId"`
	ScriptName string     `json:"scriptName"`
	CreatedAt  time.Time  `json:"createdAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	Winner     string     `json:"winner,omitempty"`
	Dark       int        `json:"dark"`
	Light      int        `json:"light"`
	Moves      int        `json:"moves"`
}

// Move is one choice a script made. Legal is false when the script named a
// square outside the legal set and the engine substituted its own move.
type Move struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"runId"`
	Ply       int       `json:"ply"`
	Side      string    `json:"side"`
	Col       int       `json:"col"`
	Row       int       `json:"row"`
	Options   int       `json:"options"`
	Legal     bool      `json:"legal"`
	CreatedAt time.Time `json:"createdAt"`
}

// MovesPage is a paginated moves response.
type MovesPage struct {
	Moves      []Move `json:"moves"`
	TotalCount int    `json:"totalCount"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	TotalPages int    `json:"totalPages"`
}

// Store provides SQLite persistence for scripts and their runs.
type Store struct {
	db *sql.DB
}

// New opens the store at dbPath. It may share a file with the score ledger.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("scriptstore: open db: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("scriptstore: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("scriptstore: enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing sql.DB.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the script tables.
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS othello_scripts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS script_runs (
			id TEXT PRIMARY KEY,
			script_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			winner TEXT NOT NULL DEFAULT '',
			dark INTEGER NOT NULL DEFAULT 0,
			light INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (script_id) REFERENCES othello_scripts(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_script_runs_script ON script_runs(script_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS script_moves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			ply INTEGER NOT NULL,
			side TEXT NOT NULL,
			col_idx INTEGER NOT NULL,
			row_idx INTEGER NOT NULL,
			options INTEGER NOT NULL DEFAULT 0,
			legal BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (run_id) REFERENCES script_runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_script_moves_run_ply ON script_moves(run_id, ply)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("scriptstore: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScript creates the script or replaces the source of an existing one.
func (s *Store) SaveScript(name, source string) (*Script, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO othello_scripts (id, name, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET source = excluded.source, updated_at = excluded.updated_at`,
		uuid.NewString(), name, source, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("scriptstore: save script: %w", err)
	}
	return s.GetScript(name)
}

// GetScript fetches a script by name.
func (s *Store) GetScript(name string) (*Script, error) {
	sc := &Script{}
	err := s.db.QueryRow(
		`SELECT id, name, source, created_at, updated_at FROM othello_scripts WHERE name = ?`, name,
	).Scan(&sc.ID, &sc.Name, &sc.Source, &sc.CreatedAt, &sc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: script %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("scriptstore: get script: %w", err)
	}
	return sc, nil
}

// ListScripts returns every script ordered by name.
func (s *Store) ListScripts() ([]Script, error) {
	rows, err := s.db.Query(`SELECT id, name, source, created_at, updated_at FROM othello_scripts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("scriptstore: list scripts: %w", err)
	}
	defer rows.Close()

	scripts := []Script{}
	for rows.Next() {
		var sc Script
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Source, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scriptstore: scan script: %w", err)
		}
		scripts = append(scripts, sc)
	}
	return scripts, rows.Err()
}

// DeleteScript removes a script with its runs and moves.
func (s *Store) DeleteScript(name string) error {
	res, err := s.db.Exec("DELETE FROM othello_scripts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("scriptstore: delete script: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: script %q", ErrNotFound, name)
	}
	return nil
}

// CreateRun opens a run for scriptID and returns its id.
func (s *Store) CreateRun(scriptID string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec(
		`INSERT INTO script_runs (id, script_id, created_at) VALUES (?, ?, ?)`,
		id, scriptID, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("scriptstore: create run: %w", err)
	}
	return id, nil
}

// EndRun stores the final position of a run. A restarted game ends the
// same run again and overwrites the result.
func (s *Store) EndRun(id string, res othello.Result) error {
	winner := "draw"
	if !res.Draw() {
		winner = res.Winner.String()
	}
	_, err := s.db.Exec(
		`UPDATE script_runs SET ended_at = ?, winner = ?, dark = ?, light = ? WHERE id = ?`,
		time.Now().UTC(), winner, res.Dark, res.Light, id,
	)
	if err != nil {
		return fmt.Errorf("scriptstore: end run: %w", err)
	}
	return nil
}

const runColumns = `r.id, r.script_id, s.name, r.created_at, r.ended_at, r.winner, r.dark, r.light,
	(SELECT COUNT(*) FROM script_moves m WHERE m.run_id = r.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.ScriptID, &r.ScriptName, &r.CreatedAt, &r.EndedAt, &r.Winner, &r.Dark, &r.Light, &r.Moves)
	return r, err
}

// GetRun fetches a run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(
		`SELECT `+runColumns+` FROM script_runs r JOIN othello_scripts s ON s.id = r.script_id WHERE r.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scriptstore: get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns a script's runs, newest first, and the total count.
func (s *Store) ListRuns(scriptName string, limit, offset int) ([]Run, int, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM script_runs r JOIN othello_scripts s ON s.id = r.script_id WHERE s.name = ?`, scriptName,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("scriptstore: count runs: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM script_runs r JOIN othello_scripts s ON s.id = r.script_id
		 WHERE s.name = ? ORDER BY r.created_at DESC LIMIT ? OFFSET ?`,
		scriptName, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("scriptstore: list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scriptstore: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, total, rows.Err()
}

// InsertMovesBatch inserts moves in a single transaction.
func (s *Store) InsertMovesBatch(runID string, moves []Move) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("scriptstore: begin tx: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO script_moves (run_id, ply, side, col_idx, row_idx, options, legal, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("scriptstore: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range moves {
		if _, err := stmt.Exec(runID, m.Ply, m.Side, m.Col, m.Row, m.Options, m.Legal, m.CreatedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("scriptstore: insert move: %w", err)
		}
	}
	return tx.Commit()
}

// GetRunMoves returns paginated moves for a run in play order.
func (s *Store) GetRunMoves(runID string, page, perPage int) (*MovesPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 60
	}
	offset := (page - 1) * perPage

	var total int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM script_moves WHERE run_id = ?", runID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("scriptstore: count moves: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, ply, side, col_idx, row_idx, options, legal, created_at
		 FROM script_moves WHERE run_id = ? ORDER BY ply LIMIT ? OFFSET ?`,
		runID, perPage, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("scriptstore: get run moves: %w", err)
	}
	defer rows.Close()

	moves := []Move{}
	for rows.Next() {
		m := Move{}
		if err := rows.Scan(&m.ID, &m.RunID, &m.Ply, &m.Side, &m.Col, &m.Row, &m.Options, &m.Legal, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scriptstore: scan move: %w", err)
		}
		moves = append(moves, m)
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	return &MovesPage{
		Moves:      moves,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}
