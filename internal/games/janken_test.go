package games

import (
	"errors"
	"testing"
)

func TestJankenJudge(t *testing.T) {
	tests := []struct {
		player, computer, want string
	}{
		{"rock", "scissors", "win"},
		{"scissors", "paper", "win"},
		{"paper", "rock", "win"},
		{"rock", "paper", "lose"},
		{"paper", "scissors", "lose"},
		{"scissors", "rock", "lose"},
		{"rock", "rock", "draw"},
	}
	for _, tt := range tests {
		if got := jankenJudge(tt.player, tt.computer); got != tt.want {
			t.Errorf("jankenJudge(%s, %s) = %s, want %s", tt.player, tt.computer, got, tt.want)
		}
	}
}

func TestJankenFiveRounds(t *testing.T) {
	s := (&JankenGame{}).New(testStream())

	for i := 0; i < jankenRounds; i++ {
		if s.Finished() {
			t.Fatalf("Finished after %d rounds", i)
		}
		if err := s.Apply(Action{Type: "throw", Choice: "rock"}); err != nil {
			t.Fatalf("throw %d failed: %v", i, err)
		}
	}

	if !s.Finished() {
		t.Fatal("Expected finished after 5 rounds")
	}
	view := s.Snapshot().(JankenView)
	wins := 0
	for _, r := range view.Rounds {
		if r.Result == "win" {
			wins++
		}
	}
	if s.Score() != wins*10 {
		t.Errorf("Expected score %d for %d wins, got %d", wins*10, wins, s.Score())
	}
	if view.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", view.Remaining)
	}

	if err := s.Apply(Action{Type: "throw", Choice: "rock"}); !errors.Is(err, ErrFinished) {
		t.Errorf("Expected ErrFinished, got %v", err)
	}
}

func TestJankenRejectsUnknownHand(t *testing.T) {
	s := (&JankenGame{}).New(testStream())
	if err := s.Apply(Action{Type: "throw", Choice: "lizard"}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction, got %v", err)
	}
	if view := s.Snapshot().(JankenView); len(view.Rounds) != 0 {
		t.Error("Rejected throw used up a round")
	}
}
