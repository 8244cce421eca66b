package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/store"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GamesResponse{
		Games:         games.ListGames(),
		EngineVersion: EngineVersion,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, SessionsResponse{
		Sessions:      s.launcher.Active(),
		EngineVersion: EngineVersion,
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Game = strings.TrimSpace(req.Game)
	if req.Game == "" {
		s.errorHandler.HandleValidationError(w, r, "game", "game is required")
		return
	}

	sess, err := s.launcher.Start(req.Game, req.ClientSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.audit.LogSessionEvent(middleware.GetReqID(r.Context()), "start", sess.ID(), req.Game, map[string]interface{}{
		"client_seed": req.ClientSeed,
	})
	s.writeJSON(w, http.StatusCreated, SessionResponse{Session: sess.View(), EngineVersion: EngineVersion})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.launcher.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: sess.View(), EngineVersion: EngineVersion})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, err := s.launcher.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	var action games.Action
	if !s.decode(w, r, &action) {
		return
	}
	if action.Type == "" {
		s.errorHandler.HandleValidationError(w, r, "type", "action type is required")
		return
	}

	view, err := sess.Apply(action)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: view, EngineVersion: EngineVersion})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r, "finish", s.launcher.Finish)
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r, "abandon", s.launcher.Abandon)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request, event string, end func(string) (store.Result, error)) {
	id := chi.URLParam(r, "id")
	res, err := end(id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.audit.LogSessionEvent(middleware.GetReqID(r.Context()), event, id, res.Game, map[string]interface{}{
		"score": res.Score,
	})
	s.writeJSON(w, http.StatusOK, EndResponse{Result: res, Total: s.launcher.Total(), EngineVersion: EngineVersion})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	resp := ScoreResponse{Stats: s.launcher.Stats(), EngineVersion: EngineVersion}
	if s.db != nil {
		stats, err := s.db.GameStats()
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.Games = stats
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	q := store.ResultsQuery{Game: r.URL.Query().Get("game")}
	var ok bool
	if q.Page, ok = s.queryInt(w, r, "page"); !ok {
		return
	}
	if q.PerPage, ok = s.queryInt(w, r, "per_page"); !ok {
		return
	}

	if s.db == nil {
		s.writeJSON(w, http.StatusOK, ResultsResponse{ResultsList: s.historyPage(q), EngineVersion: EngineVersion})
		return
	}

	list, err := s.db.ListResults(q)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ResultsResponse{ResultsList: list, EngineVersion: EngineVersion})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleError(w, r, store.ErrNotFound)
		return
	}
	res, err := s.db.GetResult(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// historyPage pages the launcher's in-memory history the way the ledger does.
func (s *Server) historyPage(q store.ResultsQuery) *store.ResultsList {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 50
	}

	all := s.launcher.History(0)
	filtered := make([]store.Result, 0, len(all))
	for _, res := range all {
		if q.Game == "" || res.Game == q.Game {
			filtered = append(filtered, res)
		}
	}

	start := min((q.Page-1)*q.PerPage, len(filtered))
	end := min(start+q.PerPage, len(filtered))
	return &store.ResultsList{
		Results:    filtered[start:end],
		TotalCount: len(filtered),
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (len(filtered) + q.PerPage - 1) / q.PerPage,
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.errorHandler.HandleValidationError(w, r, key, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
