package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asobiba/minigames/internal/scripting"
)

var errNoScriptStore = errors.New("script library is not configured")

func (s *Server) requireScripts(w http.ResponseWriter, r *http.Request) bool {
	if s.scripts == nil {
		s.errorHandler.HandleError(w, r, errNoScriptStore)
		return false
	}
	return true
}

func (s *Server) activeScript() string {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.active
}

func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	list, err := s.scripts.ListScripts()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ScriptsResponse{Scripts: list, Active: s.activeScript(), EngineVersion: EngineVersion})
}

// handleSaveScript compiles the source before storing it so the library only
// holds scripts that define choose().
func (s *Server) handleSaveScript(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	var req SaveScriptRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.errorHandler.HandleValidationError(w, r, "name", "name is required")
		return
	}
	if _, err := scripting.NewStrategy(req.Source, scripting.WithLogger(s.logger)); err != nil {
		s.errorHandler.HandleValidationError(w, r, "source", err.Error())
		return
	}

	sc, err := s.scripts.SaveScript(req.Name, req.Source)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.audit.LogSessionEvent(middleware.GetReqID(r.Context()), "script_saved", "", "othello", map[string]interface{}{
		"script": sc.Name,
		"bytes":  len(sc.Source),
	})
	s.writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	sc, err := s.scripts.GetScript(chi.URLParam(r, "name"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}

// handleDeleteScript also switches Othello back to Greedy when the deleted
// script was active.
func (s *Server) handleDeleteScript(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.scripts.DeleteScript(name); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.activeMu.Lock()
	if s.active == name {
		s.active = ""
		s.launcher.SetOthelloStrategy(nil)
	}
	s.activeMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	limit, ok := s.queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := s.queryInt(w, r, "offset")
	if !ok {
		return
	}
	runs, total, err := s.scripts.ListRuns(chi.URLParam(r, "name"), limit, offset)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunsResponse{Runs: runs, Total: total, EngineVersion: EngineVersion})
}

func (s *Server) handleRunMoves(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	page, ok := s.queryInt(w, r, "page")
	if !ok {
		return
	}
	perPage, ok := s.queryInt(w, r, "per_page")
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.scripts.GetRun(id); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	moves, err := s.scripts.GetRunMoves(id, page, perPage)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, moves)
}

func (s *Server) handleSetStrategy(w http.ResponseWriter, r *http.Request) {
	if !s.requireScripts(w, r) {
		return
	}
	var req StrategyRequest
	if !s.decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Script)

	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	if name == "" {
		s.launcher.SetOthelloStrategy(nil)
	} else {
		factory, err := s.scripts.Factory(name, s.logger, scripting.WithLogger(s.logger))
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		s.launcher.SetOthelloStrategy(factory)
	}
	s.active = name
	s.logger.Printf("strategy_changed script=%q", name)
	s.writeJSON(w, http.StatusOK, StrategyRequest{Script: name})
}
