// Package api serves the launcher over HTTP and websockets.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/scan"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

const defaultTick = 150 * time.Millisecond

// Server handles HTTP requests
type Server struct {
	launcher     *launcher.Launcher
	db           store.DB
	errorHandler *ErrorHandler
	logger       *log.Logger
	audit        *AuditLogger
	scanner      *scan.Scanner
	scripts      *scriptstore.Store
	activeMu     sync.Mutex
	active       string
	upgrader     websocket.Upgrader
	tick         time.Duration
	startTime    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAuditLogger replaces the default audit logger.
func WithAuditLogger(a *AuditLogger) Option {
	return func(s *Server) { s.audit = a }
}

// WithScriptStore enables the strategy library routes.
func WithScriptStore(ss *scriptstore.Store) Option {
	return func(s *Server) { s.scripts = ss }
}

// WithTick sets how often timer games advance on a websocket stream.
func WithTick(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.tick = d
		}
	}
}

// NewServer creates a new API server. db may be nil, in which case results
// come from the launcher's in-memory history.
func NewServer(l *launcher.Launcher, db store.DB, opts ...Option) *Server {
	s := &Server{
		launcher:  l,
		db:        db,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		audit:     NewAuditLogger(),
		tick:      defaultTick,
		scanner:   scan.NewScanner(),
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorHandler = NewErrorHandler(s.logger, s.audit)

	s.audit.LogSystemStartup("unknown", map[string]interface{}{
		"games_available":  len(games.ListGames()),
		"database_enabled": s.db != nil,
		"tick":             s.tick.String(),
	})
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(s.CORSMiddleware)

	// Websocket streams outlive the request timeout.
	r.Get("/api/v1/sessions/{id}/ws", s.handleSessionStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealthCheck)
		r.Get("/health/ready", s.handleReadiness)
		r.Get("/health/live", s.handleLiveness)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/games", s.handleListGames)
			r.Get("/sessions", s.handleListSessions)
			r.Post("/sessions", s.handleStartSession)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Post("/sessions/{id}/actions", s.handleAction)
			r.Post("/sessions/{id}/finish", s.handleFinish)
			r.Post("/sessions/{id}/abandon", s.handleAbandon)
			r.Get("/score", s.handleScore)
			r.Get("/results", s.handleListResults)
			r.Get("/results/{id}", s.handleGetResult)
			r.Post("/scan", s.handleScan)
			r.Get("/scripts", s.handleListScripts)
			r.Post("/scripts", s.handleSaveScript)
			r.Get("/scripts/{name}", s.handleGetScript)
			r.Delete("/scripts/{name}", s.handleDeleteScript)
			r.Get("/scripts/{name}/runs", s.handleListRuns)
			r.Get("/runs/{id}/moves", s.handleRunMoves)
			r.Put("/strategy", s.handleSetStrategy)
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed err=%v", err)
	}
}

// Uptime reports how long the server has been up.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
