package games

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/asobiba/minigames/internal/engine"
)

func testStream() *engine.Stream {
	return engine.NewStream(engine.Seeds{Server: "test_server", Client: "test_client"}, 1)
}

func TestGameRegistry(t *testing.T) {
	expected := []string{
		"blackjack", "clicker", "janken", "memory", "numberguess", "omikuji",
		"othello", "pong", "puzzle", "reflex", "roulette", "shooting",
		"snake", "strategy", "tictactoe", "typing",
	}

	for _, id := range expected {
		game, ok := GetGame(id)
		if !ok {
			t.Errorf("Game '%s' not found in registry", id)
			continue
		}
		if spec := game.Spec(); spec.ID != id {
			t.Errorf("Game ID mismatch: expected '%s', got '%s'", id, spec.ID)
		}
	}

	specs := ListGames()
	if len(specs) != len(expected) {
		t.Fatalf("Expected %d games, got %d", len(expected), len(specs))
	}
	for i, spec := range specs {
		if spec.ID != expected[i] {
			t.Errorf("ListGames()[%d] = %s, want %s", i, spec.ID, expected[i])
		}
		if spec.Name == "" || spec.Description == "" {
			t.Errorf("Game %s has incomplete spec: %+v", spec.ID, spec)
		}
	}

	if _, ok := GetGame("pachinko"); ok {
		t.Error("Expected unknown game lookup to fail")
	}
}

func TestGameKinds(t *testing.T) {
	tests := map[string]Kind{
		"othello": KindTurn,
		"snake":   KindTimer,
		"omikuji": KindInstant,
	}
	for id, kind := range tests {
		game, _ := GetGame(id)
		if game.Spec().Kind != kind {
			t.Errorf("%s: expected kind %s, got %s", id, kind, game.Spec().Kind)
		}
	}

	for _, spec := range ListGames() {
		game, _ := GetGame(spec.ID)
		_, ticks := game.New(testStream()).(Ticker)
		if ticks != (spec.Kind == KindTimer) {
			t.Errorf("%s: kind %s but Ticker=%v", spec.ID, spec.Kind, ticks)
		}
	}
}

func TestSelfEndingGames(t *testing.T) {
	enders := map[string]bool{
		"othello": true, "reflex": true, "typing": true,
		"shooting": true, "puzzle": true, "strategy": true,
	}
	for _, spec := range ListGames() {
		game, _ := GetGame(spec.ID)
		_, ok := game.New(testStream()).(Ender)
		if ok != enders[spec.ID] {
			t.Errorf("%s: Ender=%v, want %v", spec.ID, ok, enders[spec.ID])
		}
	}
}

func TestUnsupportedActions(t *testing.T) {
	for _, spec := range ListGames() {
		t.Run(spec.ID, func(t *testing.T) {
			game, _ := GetGame(spec.ID)
			s := game.New(testStream())
			before := s.Snapshot()

			err := s.Apply(Action{Type: "teleport"})
			if !errors.Is(err, ErrUnsupportedAction) {
				t.Errorf("Expected ErrUnsupportedAction, got %v", err)
			}
			if s.Finished() {
				t.Error("Rejected action finished the session")
			}
			if s.Score() != 0 {
				t.Errorf("Fresh session should score 0, got %d", s.Score())
			}
			if s.Snapshot() == nil || before == nil {
				t.Error("Snapshot returned nil")
			}
		})
	}
}

func TestSessionsAreReproducible(t *testing.T) {
	for _, id := range []string{"blackjack", "memory", "numberguess", "puzzle", "strategy"} {
		game, _ := GetGame(id)
		a := game.New(testStream())
		b := game.New(testStream())
		if !sameJSON(t, a.Snapshot(), b.Snapshot()) {
			t.Errorf("%s: same seeds gave different sessions", id)
		}
	}
}

func sameJSON(t *testing.T, a, b any) bool {
	t.Helper()
	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(ja) == string(jb)
}
