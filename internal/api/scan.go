package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/asobiba/minigames/internal/scan"
)

// handleScan replays a nonce range. The request timeout bounds the scan; a
// partial result comes back with summary.timed_out set.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scan.Request
	if !s.decode(w, r, &req) {
		return
	}
	req.Game = strings.TrimSpace(req.Game)
	if req.Game == "" {
		s.errorHandler.HandleValidationError(w, r, "game", "game is required")
		return
	}

	res, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.audit.LogSessionEvent(middleware.GetReqID(r.Context()), "scan", "", req.Game, map[string]interface{}{
		"server_seed": req.Seeds.Server,
		"client_seed": req.Seeds.Client,
		"nonce_start": req.NonceStart,
		"nonce_end":   req.NonceEnd,
		"hits":        res.Summary.HitsFound,
	})
	s.writeJSON(w, http.StatusOK, ScanResponse{Result: res, EngineVersion: EngineVersion})
}
