package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements DB on SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens the database at path. ":memory:" gives a private
// in-memory ledger.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func computeServerHash(serverSeed string) string {
	if serverSeed == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. It is safe to run repeatedly.
func (s *SQLiteDB) Migrate() error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			game TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range baseMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}

	alterMigrations := []string{
		`ALTER TABLE results ADD COLUMN server_seed_hash TEXT DEFAULT ''`,
		`ALTER TABLE results ADD COLUMN client_seed TEXT DEFAULT ''`,
		`ALTER TABLE results ADD COLUMN nonce INTEGER DEFAULT 0`,
		`ALTER TABLE results ADD COLUMN duration_ms INTEGER DEFAULT 0`,
	}

	for _, migration := range alterMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			if !isDuplicateColumnError(err) {
				return fmt.Errorf("alter migration failed: %w", err)
			}
		}
	}

	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_results_game ON results(game)`,
		`CREATE INDEX IF NOT EXISTS idx_results_game_created ON results(game, created_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_results_session ON results(session_id)`,
	}

	for _, migration := range indexMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// SaveResult inserts r, filling in ID, seed hash and timestamp.
func (s *SQLiteDB) SaveResult(r *Result) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ServerSeedHash == "" {
		r.ServerSeedHash = computeServerHash(r.ServerSeed)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO results (
		id, session_id, game, score, outcome,
		server_seed_hash, client_seed, nonce, duration_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		r.ID, r.SessionID, r.Game, r.Score, r.Outcome,
		r.ServerSeedHash, r.ClientSeed, r.Nonce, r.DurationMS, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

const resultColumns = `id, session_id, game, score, outcome,
		server_seed_hash, client_seed, nonce, duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var seedHash, clientSeed sql.NullString
	var nonce, duration sql.NullInt64
	err := row.Scan(
		&r.ID, &r.SessionID, &r.Game, &r.Score, &r.Outcome,
		&seedHash, &clientSeed, &nonce, &duration, &r.CreatedAt,
	)
	if err != nil {
		return r, err
	}
	r.ServerSeedHash = seedHash.String
	r.ClientSeed = clientSeed.String
	r.Nonce = uint64(nonce.Int64)
	r.DurationMS = duration.Int64
	return r, nil
}

// GetResult returns the result with id or ErrNotFound.
func (s *SQLiteDB) GetResult(id string) (*Result, error) {
	row := s.db.QueryRow(`SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &r, nil
}

// ListResults returns a page of results, newest first, optionally filtered
// by game.
func (s *SQLiteDB) ListResults(query ResultsQuery) (*ResultsList, error) {
	whereClause := ""
	args := []any{}

	if query.Game != "" {
		whereClause = "WHERE game = ?"
		args = append(args, query.Game)
	}

	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM results "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT ` + resultColumns + `
		FROM results ` + whereClause + `
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`
	args = append(args, query.PerPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return &ResultsList{
		Results:    results,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// TotalScore sums every recorded score.
func (s *SQLiteDB) TotalScore() (int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COALESCE(SUM(score), 0) FROM results`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum scores: %w", err)
	}
	return total, nil
}

// GameStats aggregates results per game, ordered by game.
func (s *SQLiteDB) GameStats() ([]GameStat, error) {
	rows, err := s.db.Query(`SELECT game, COUNT(*), COALESCE(SUM(score), 0), COALESCE(MAX(score), 0)
		FROM results GROUP BY game ORDER BY game`)
	if err != nil {
		return nil, fmt.Errorf("failed to query game stats: %w", err)
	}
	defer rows.Close()

	var stats []GameStat
	for rows.Next() {
		var st GameStat
		if err := rows.Scan(&st.Game, &st.Played, &st.Total, &st.Best); err != nil {
			return nil, fmt.Errorf("failed to scan game stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
