package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/asobiba/minigames/internal/games"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
	Duration    string       `json:"duration,omitempty"`
}

// SystemInfo contains system information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthCheck{
		"games":    s.checkGamesHealth(),
		"database": s.checkDatabaseHealth(),
		"sessions": s.checkSessions(),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		switch c.Status {
		case HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if overall == HealthStatusHealthy {
				overall = HealthStatusDegraded
			}
		}
	}

	status := http.StatusOK
	if overall == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, HealthCheckResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        s.Uptime().String(),
		Checks:        checks,
		System:        systemInfo(),
		RequestID:     middleware.GetReqID(r.Context()),
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ready, message := true, "Ready"
	if len(games.ListGames()) == 0 {
		ready, message = false, "No games available"
	}
	if s.launcher == nil {
		ready, message = false, "Launcher not initialized"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]interface{}{
		"ready":          ready,
		"message":        message,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"uptime":         s.Uptime().String(),
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

func (s *Server) checkGamesHealth() HealthCheck {
	start := time.Now()
	n := len(games.ListGames())
	check := HealthCheck{Status: HealthStatusHealthy, Message: fmt.Sprintf("%d games available", n)}
	if n == 0 {
		check.Status, check.Message = HealthStatusUnhealthy, "No games available"
	}
	return stamp(check, start)
}

// checkDatabaseHealth runs a cheap query against the ledger. Running
// without a ledger only degrades the service.
func (s *Server) checkDatabaseHealth() HealthCheck {
	start := time.Now()
	check := HealthCheck{Status: HealthStatusHealthy, Message: "Database connection healthy"}
	if s.db == nil {
		check.Status, check.Message = HealthStatusDegraded, "No score ledger configured"
	} else if _, err := s.db.TotalScore(); err != nil {
		check.Status, check.Message = HealthStatusUnhealthy, fmt.Sprintf("Database query failed: %v", err)
	}
	return stamp(check, start)
}

func (s *Server) checkSessions() HealthCheck {
	start := time.Now()
	if s.launcher == nil {
		return stamp(HealthCheck{Status: HealthStatusUnhealthy, Message: "Launcher not initialized"}, start)
	}
	return stamp(HealthCheck{
		Status:  HealthStatusHealthy,
		Message: fmt.Sprintf("%d active sessions", len(s.launcher.Active())),
	}, start)
}

func stamp(c HealthCheck, start time.Time) HealthCheck {
	c.LastChecked = time.Now().UTC().Format(time.RFC3339)
	c.Duration = time.Since(start).String()
	return c
}

func systemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAlloc:   m.Alloc,
		GCCycles:      m.NumGC,
	}
}
