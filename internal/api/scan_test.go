package api

import (
	"net/http"
	"testing"

	"github.com/asobiba/minigames/internal/engine"
	"github.com/asobiba/minigames/internal/scan"
)

func TestScanEndpoint(t *testing.T) {
	server, _ := newTestServer(nil)
	h := server.Routes()

	w := do(t, h, "POST", "/api/v1/scan", scan.Request{
		Game:       "roulette",
		Seeds:      engine.Seeds{Server: "test_server", Client: "c"},
		NonceStart: 1,
		NonceEnd:   200,
		TargetOp:   scan.OpGreaterEqual,
		TargetVal:  7,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ScanResponse
	decodeBody(t, w, &resp)
	if resp.Result == nil || resp.Summary.TotalEvaluated != 200 {
		t.Fatalf("Expected 200 evaluated nonces, got %+v", resp.Result)
	}
	for _, hit := range resp.Hits {
		if hit.Score < 7 {
			t.Errorf("Nonce %d scored %d below target", hit.Nonce, hit.Score)
		}
	}
	if resp.Echo.Game != "roulette" {
		t.Errorf("Expected request echo, got %+v", resp.Echo)
	}
}

func TestScanEndpointErrors(t *testing.T) {
	server, _ := newTestServer(nil)
	h := server.Routes()
	seeds := engine.Seeds{Server: "s", Client: "c"}

	tests := []struct {
		name     string
		body     scan.Request
		status   int
		errorTyp string
	}{
		{"missing game", scan.Request{Seeds: seeds}, http.StatusBadRequest, ErrTypeValidation},
		{"unknown game", scan.Request{Game: "pachinko", Seeds: seeds}, http.StatusNotFound, ErrTypeGameNotFound},
		{"missing seeds", scan.Request{Game: "roulette"}, http.StatusBadRequest, ErrTypeInvalidParams},
		{"timer game", scan.Request{Game: "snake", Seeds: seeds}, http.StatusBadRequest, ErrTypeInvalidParams},
		{"reversed range", scan.Request{Game: "roulette", Seeds: seeds, NonceStart: 9, NonceEnd: 1}, http.StatusBadRequest, ErrTypeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/api/v1/scan", tt.body)
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
