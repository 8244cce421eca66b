package games

import (
	"errors"
	"testing"

	"github.com/asobiba/minigames/internal/othello"
)

func TestOthelloSessionPlace(t *testing.T) {
	game := &OthelloGame{}
	s := game.New(nil)

	if err := s.Apply(Action{Type: "place", Column: 2, Row: 3}); err != nil {
		t.Fatalf("place failed: %v", err)
	}

	view := s.Snapshot().(OthelloView)
	if view.Dark != 4 || view.Light != 1 {
		t.Errorf("Expected 4 dark / 1 light, got %d / %d", view.Dark, view.Light)
	}
	if view.LastMove == nil || view.LastMove.At != (othello.Point{Col: 2, Row: 3}) {
		t.Errorf("Unexpected last move: %+v", view.LastMove)
	}
	if view.State != othello.LightToMove {
		t.Errorf("Expected light_to_move, got %s", view.State)
	}
}

func TestOthelloSessionIllegalPlace(t *testing.T) {
	s := (&OthelloGame{}).New(nil)

	err := s.Apply(Action{Type: "place", Column: 0, Row: 0})
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction, got %v", err)
	}
	view := s.Snapshot().(OthelloView)
	if view.Board != othello.NewBoard() {
		t.Error("Illegal placement changed the board")
	}
}

func TestOthelloSessionPlaysToEnd(t *testing.T) {
	s := (&OthelloGame{}).New(nil).(*OthelloSession)

	var (
		ends   []othello.Result
		scores []int
	)
	s.OnGameEnd(func(r othello.Result) { ends = append(ends, r) })
	s.OnGameOver(func(score int) { scores = append(scores, score) })

	for i := 0; i < 100 && !s.Finished(); i++ {
		if s.Score() != 0 {
			t.Fatalf("Unfinished game scored %d", s.Score())
		}
		if err := s.Apply(Action{Type: "ai"}); err != nil {
			t.Fatalf("ai move %d failed: %v", i, err)
		}
	}

	if !s.Finished() {
		t.Fatal("Greedy self-play did not finish")
	}
	if len(ends) != 1 {
		t.Fatalf("Expected one game end, got %d", len(ends))
	}
	if s.Score() != ends[0].Score || s.Score() == 0 {
		t.Errorf("Score %d does not match result %+v", s.Score(), ends[0])
	}
	if len(scores) != 1 || scores[0] != s.Score() {
		t.Errorf("Expected one game-over score %d, got %v", s.Score(), scores)
	}
	if err := s.Apply(Action{Type: "ai"}); !errors.Is(err, ErrFinished) {
		t.Errorf("Expected ErrFinished after the end, got %v", err)
	}

	if err := s.Apply(Action{Type: "restart"}); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if s.Finished() || s.Score() != 0 {
		t.Error("restart did not reset the game")
	}
}

func TestOthelloSessionStrategy(t *testing.T) {
	s := (&OthelloGame{}).New(nil).(*OthelloSession)
	last := othello.StrategyFunc(func(_ othello.Board, _ othello.Cell, moves []othello.Point) (othello.Point, error) {
		return moves[len(moves)-1], nil
	})

	s.SetStrategy(last)
	if err := s.Apply(Action{Type: "ai"}); err != nil {
		t.Fatalf("ai failed: %v", err)
	}
	if got := s.Snapshot().(OthelloView).LastMove.At; got != (othello.Point{Col: 4, Row: 5}) {
		t.Errorf("Expected strategy move (4,5), got %v", got)
	}

	s.SetStrategy(nil)
	if _, ok := s.strategy.(othello.Greedy); !ok {
		t.Error("SetStrategy(nil) should restore Greedy")
	}
}
