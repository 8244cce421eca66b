package games

import (
	"errors"
	"testing"
)

func newPuzzle() *PuzzleSession {
	return (&PuzzleGame{}).New(testStream()).(*PuzzleSession)
}

func TestPuzzleDealIsScrambledPermutation(t *testing.T) {
	s := newPuzzle()
	if s.inOrder() {
		t.Fatal("Deal came out solved")
	}
	seen := make(map[int]bool)
	for _, tile := range s.tiles {
		seen[tile] = true
	}
	if len(seen) != puzzleCells {
		t.Errorf("Deal lost tiles: %v", s.tiles)
	}
}

func TestPuzzleSlideRules(t *testing.T) {
	s := newPuzzle()
	gap := s.gap()

	far := (gap + 2*PuzzleSide) % puzzleCells
	if err := s.Apply(Action{Type: "slide", Index: far}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction for a distant tile, got %v", err)
	}
	if err := s.Apply(Action{Type: "slide", Index: 16}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction off the board, got %v", err)
	}

	next := puzzleNeighbours(gap)[0]
	tile := s.tiles[next]
	if err := s.Apply(Action{Type: "slide", Index: next}); err != nil {
		t.Fatalf("slide failed: %v", err)
	}
	if s.tiles[gap] != tile || s.tiles[next] != 0 || s.moves != 1 {
		t.Errorf("Slide did not swap with the gap: %v", s.tiles)
	}
}

func TestPuzzleSolveScoresOnce(t *testing.T) {
	s := newPuzzle()
	var ends []int
	s.OnGameOver(func(score int) { ends = append(ends, score) })

	// One slide away from solved: the gap sits left of 15.
	for i := range s.tiles {
		s.tiles[i] = (i + 1) % puzzleCells
	}
	s.tiles[14], s.tiles[15] = 0, 15
	s.moves = 9
	s.Tick()
	s.Tick()

	if s.Score() != 0 {
		t.Error("Unsolved puzzle scored")
	}
	if err := s.Apply(Action{Type: "slide", Index: 15}); err != nil {
		t.Fatalf("slide failed: %v", err)
	}
	if !s.Finished() {
		t.Fatal("Expected the puzzle to be solved")
	}
	want := 1000 - 10*10 - 2
	if s.Score() != want || len(ends) != 1 || ends[0] != want {
		t.Errorf("Expected one game over with %d, got score %d ends %v", want, s.Score(), ends)
	}

	s.Tick()
	if s.Score() != want {
		t.Error("Clock ran after the solve")
	}
	if err := s.Apply(Action{Type: "slide", Index: 14}); !errors.Is(err, ErrFinished) {
		t.Errorf("Expected ErrFinished, got %v", err)
	}
}

func TestPuzzleScoreFloorsAtZero(t *testing.T) {
	s := newPuzzle()
	s.solved = true
	s.moves = 200
	if s.Score() != 0 {
		t.Errorf("Expected 0, got %d", s.Score())
	}
}
