package api

import (
	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/scan"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types
const (
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeValidation    = "validation_error"

	ErrTypeGameNotFound      = "game_not_found"
	ErrTypeSessionNotFound   = "session_not_found"
	ErrTypeSessionEnded      = "session_ended"
	ErrTypeUnsupportedAction = "unsupported_action"
	ErrTypeInvalidAction     = "invalid_action"
	ErrTypeGameFinished      = "game_finished"
	ErrTypeResultNotFound    = "result_not_found"
	ErrTypeScriptNotFound    = "script_not_found"

	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidParams, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeGameNotFound, ErrTypeSessionNotFound, ErrTypeSessionEnded,
		ErrTypeUnsupportedAction, ErrTypeInvalidAction, ErrTypeGameFinished, ErrTypeResultNotFound,
		ErrTypeScriptNotFound:
		return CategoryGame
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// GamesResponse lists the launcher menu.
type GamesResponse struct {
	Games         []games.GameSpec `json:"games"`
	EngineVersion string           `json:"engine_version"`
}

// StartSessionRequest opens a session. ClientSeed is optional.
type StartSessionRequest struct {
	Game       string `json:"game"`
	ClientSeed string `json:"client_seed,omitempty"`
}

// SessionResponse wraps a session view.
type SessionResponse struct {
	Session       launcher.View `json:"session"`
	EngineVersion string        `json:"engine_version"`
}

// SessionsResponse lists active sessions.
type SessionsResponse struct {
	Sessions      []launcher.View `json:"sessions"`
	EngineVersion string          `json:"engine_version"`
}

// EndResponse is returned by finish and abandon.
type EndResponse struct {
	Result        store.Result `json:"result"`
	Total         int          `json:"total"`
	EngineVersion string       `json:"engine_version"`
}

// ScoreResponse carries the cumulative score.
type ScoreResponse struct {
	launcher.Stats
	Games         []store.GameStat `json:"games,omitempty"`
	EngineVersion string           `json:"engine_version"`
}

// ResultsResponse is a page of the score ledger.
type ResultsResponse struct {
	*store.ResultsList
	EngineVersion string `json:"engine_version"`
}

// ScanResponse reports the nonces whose replayed score met the target.
type ScanResponse struct {
	*scan.Result
	EngineVersion string `json:"engine_version"`
}

// SaveScriptRequest stores a strategy script under Name.
type SaveScriptRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// ScriptsResponse lists the strategy library.
type ScriptsResponse struct {
	Scripts       []scriptstore.Script `json:"scripts"`
	Active        string               `json:"active"`
	EngineVersion string               `json:"engine_version"`
}

// RunsResponse is a page of a script's runs.
type RunsResponse struct {
	Runs          []scriptstore.Run `json:"runs"`
	Total         int               `json:"total"`
	EngineVersion string            `json:"engine_version"`
}

// StrategyRequest selects the stored script behind Othello's "ai" action.
// An empty Script restores Greedy.
type StrategyRequest struct {
	Script string `json:"script"`
}

// WSMessage is the websocket envelope in both directions. Clients send
// "action", "finish" or "abandon"; the server sends "snapshot", "frame",
// "ended" and "error".
type WSMessage struct {
	Type    string         `json:"type"`
	Action  *games.Action  `json:"action,omitempty"`
	Session *launcher.View `json:"session,omitempty"`
	Result  *store.Result  `json:"result,omitempty"`
	Error   *EngineError   `json:"error,omitempty"`
}
