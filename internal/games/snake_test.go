package games

import (
	"errors"
	"testing"
)

func newSnake() *SnakeSession {
	return (&SnakeGame{}).New(testStream()).(*SnakeSession)
}

func TestSnakeStart(t *testing.T) {
	s := newSnake()
	view := s.Snapshot().(SnakeView)

	if len(view.Body) != 1 || view.Body[0] != (GridPoint{0, 0}) {
		t.Errorf("Expected single cell at origin, got %v", view.Body)
	}
	if view.Food != (GridPoint{10, 10}) {
		t.Errorf("Expected food at (10,10), got %v", view.Food)
	}
	if view.Heading != "right" || view.Grid != 20 {
		t.Errorf("Unexpected start %+v", view)
	}
}

func TestSnakeMovesAndIgnoresReversal(t *testing.T) {
	s := newSnake()

	s.Tick()
	if s.body[0] != (GridPoint{1, 0}) {
		t.Fatalf("Expected head at (1,0), got %v", s.body[0])
	}

	if err := s.Turn("left"); err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	s.Tick()
	if s.body[0] != (GridPoint{2, 0}) {
		t.Errorf("Reversal was not ignored: head at %v", s.body[0])
	}

	_ = s.Turn("down")
	s.Tick()
	if s.body[0] != (GridPoint{2, 1}) || s.heading != "down" {
		t.Errorf("Expected head at (2,1) heading down, got %v %s", s.body[0], s.heading)
	}

	if err := s.Turn("sideways"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction, got %v", err)
	}
}

func TestSnakeEatsFood(t *testing.T) {
	s := newSnake()
	s.body = []GridPoint{{9, 10}}

	s.Tick()

	if s.Score() != 10 {
		t.Errorf("Expected score 10, got %d", s.Score())
	}
	if len(s.body) != 2 {
		t.Errorf("Expected snake to grow to 2, got %d", len(s.body))
	}
	for _, c := range s.body {
		if c == s.food {
			t.Errorf("Food regrew on the snake at %v", c)
		}
	}
	if s.food.X < 0 || s.food.X >= SnakeGrid || s.food.Y < 0 || s.food.Y >= SnakeGrid {
		t.Errorf("Food off the grid: %v", s.food)
	}
}

func TestSnakeWallCollision(t *testing.T) {
	s := newSnake()
	_ = s.Turn("up")
	s.Tick()

	if !s.Finished() {
		t.Fatal("Expected crash into the top wall")
	}
	if s.body[0] != (GridPoint{0, 0}) {
		t.Errorf("Crash moved the snake: %v", s.body)
	}
	if err := s.Apply(Action{Type: "step"}); !errors.Is(err, ErrFinished) {
		t.Errorf("Expected ErrFinished, got %v", err)
	}

	if err := s.Apply(Action{Type: "restart"}); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if s.Finished() || s.Score() != 0 {
		t.Error("restart did not reset the snake")
	}
}

func TestSnakeRunsIntoRightWall(t *testing.T) {
	s := newSnake()
	for i := 0; i < SnakeGrid-1; i++ {
		if err := s.Apply(Action{Type: "step"}); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if s.Finished() {
		t.Fatal("Crashed before reaching the wall")
	}
	s.Tick()
	if !s.Finished() {
		t.Error("Expected crash into the right wall")
	}
}

func TestSnakeSelfCollision(t *testing.T) {
	s := newSnake()
	s.body = []GridPoint{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {0, 2}}
	s.heading, s.next = "left", "left"

	_ = s.Turn("down")
	s.Tick()

	if !s.Finished() {
		t.Error("Expected crash into own body")
	}
}
