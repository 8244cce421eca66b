package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// DB is the score ledger.
type DB interface {
	Close() error
	Migrate() error
	SaveResult(r *Result) error
	GetResult(id string) (*Result, error)
	ListResults(query ResultsQuery) (*ResultsList, error)
	TotalScore() (int, error)
	GameStats() ([]GameStat, error)
}

// Outcomes recorded for a session.
const (
	OutcomeFinished  = "finished"
	OutcomeAbandoned = "abandoned"
)

// ResultsQuery selects a page of results.
type ResultsQuery struct {
	Game    string `json:"game,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// ResultsList is one page of results, newest first.
type ResultsList struct {
	Results    []Result `json:"results"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalPages int      `json:"totalPages"`
}

// Result is one ended session.
type Result struct {
	ID             string    `json:"id" db:"id"`
	SessionID      string    `json:"session_id" db:"session_id"`
	Game           string    `json:"game" db:"game"`
	Score          int       `json:"score" db:"score"`
	Outcome        string    `json:"outcome" db:"outcome"`
	ServerSeed     string    `json:"-" db:"-"`                               // hashed before storage
	ServerSeedHash string    `json:"server_seed_hash" db:"server_seed_hash"` // SHA256 hash only
	ClientSeed     string    `json:"client_seed" db:"client_seed"`
	Nonce          uint64    `json:"nonce" db:"nonce"`
	DurationMS     int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// GameStat aggregates the results of one game.
type GameStat struct {
	Game   string `json:"game"`
	Played int    `json:"played"`
	Total  int    `json:"total"`
	Best   int    `json:"best"`
}
