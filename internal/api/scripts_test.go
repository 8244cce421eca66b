package api

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/othello"
	"github.com/asobiba/minigames/internal/scriptstore"
)

const lastMoveScript = `function choose(moves) { return moves.length - 1; }`

func newScriptServer(t *testing.T) (http.Handler, *launcher.Launcher) {
	t.Helper()
	ss, err := scriptstore.New(":memory:")
	if err != nil {
		t.Fatalf("scriptstore: %v", err)
	}
	if err := ss.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	l := launcher.New(nil, launcher.WithLogger(quiet()), launcher.WithServerSeed("test_server"))
	server := NewServer(l, nil, WithLogger(quiet()), WithAuditLogger(NewAuditLoggerTo(io.Discard)), WithScriptStore(ss))
	return server.Routes(), l
}

func TestScriptLibrary(t *testing.T) {
	h, l := newScriptServer(t)

	if w := do(t, h, "POST", "/api/v1/scripts", SaveScriptRequest{Name: "last", Source: lastMoveScript}); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w := do(t, h, "GET", "/api/v1/scripts", nil)
	var list ScriptsResponse
	decodeBody(t, w, &list)
	if len(list.Scripts) != 1 || list.Scripts[0].Name != "last" || list.Active != "" {
		t.Fatalf("Unexpected library %+v", list)
	}

	if w := do(t, h, "PUT", "/api/v1/strategy", StrategyRequest{Script: "last"}); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 activating script, got %d: %s", w.Code, w.Body.String())
	}

	sess, _ := l.Start("othello", "")
	v, err := sess.Apply(games.Action{Type: "ai"})
	if err != nil {
		t.Fatalf("ai failed: %v", err)
	}
	if at := v.State.(games.OthelloView).LastMove.At; at != (othello.Point{Col: 4, Row: 5}) {
		t.Errorf("Expected the script's choice (4,5), got %v", at)
	}

	w = do(t, h, "GET", "/api/v1/scripts/last/runs", nil)
	var runs RunsResponse
	decodeBody(t, w, &runs)
	if runs.Total != 1 {
		t.Fatalf("Expected one run, got %+v", runs)
	}

	// Moves are batched; a run with one move may not be flushed yet.
	w = do(t, h, "GET", fmt.Sprintf("/api/v1/runs/%s/moves", runs.Runs[0].ID), nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for run moves, got %d", w.Code)
	}

	if w := do(t, h, "DELETE", "/api/v1/scripts/last", nil); w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
	sess2, _ := l.Start("othello", "")
	v2, _ := sess2.Apply(games.Action{Type: "ai"})
	if at := v2.State.(games.OthelloView).LastMove.At; at != (othello.Point{Col: 3, Row: 2}) {
		t.Errorf("Expected Greedy after deleting the active script, got %v", at)
	}
}

func TestScriptErrors(t *testing.T) {
	h, _ := newScriptServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		status   int
		errorTyp string
	}{
		{"missing name", "POST", "/api/v1/scripts", SaveScriptRequest{Source: lastMoveScript}, http.StatusBadRequest, ErrTypeValidation},
		{"no choose", "POST", "/api/v1/scripts", SaveScriptRequest{Name: "x", Source: "var a = 1;"}, http.StatusBadRequest, ErrTypeValidation},
		{"syntax error", "POST", "/api/v1/scripts", SaveScriptRequest{Name: "x", Source: "function ("}, http.StatusBadRequest, ErrTypeValidation},
		{"unknown script", "GET", "/api/v1/scripts/nope", nil, http.StatusNotFound, ErrTypeScriptNotFound},
		{"delete unknown", "DELETE", "/api/v1/scripts/nope", nil, http.StatusNotFound, ErrTypeScriptNotFound},
		{"activate unknown", "PUT", "/api/v1/strategy", StrategyRequest{Script: "nope"}, http.StatusNotFound, ErrTypeScriptNotFound},
		{"unknown run", "GET", "/api/v1/runs/nope/moves", nil, http.StatusNotFound, ErrTypeScriptNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			var e EngineError
			decodeBody(t, w, &e)
			if e.Type != tt.errorTyp {
				t.Errorf("Expected %s, got %s", tt.errorTyp, e.Type)
			}
		})
	}
}

func TestScriptsWithoutStore(t *testing.T) {
	server, _ := newTestServer(nil)
	w := do(t, server.Routes(), "GET", "/api/v1/scripts", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", w.Code)
	}
}
