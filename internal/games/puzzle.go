package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// PuzzleGame is the 4×4 sliding fifteen puzzle. The clock runs on one Tick
// per second and the score falls with every move and second taken.
type PuzzleGame struct{}

const (
	PuzzleSide     = 4
	puzzleCells    = PuzzleSide * PuzzleSide
	puzzleScramble = 200
	puzzleMaxScore = 1000
	puzzleMoveCost = 10
)

// Spec returns metadata about Puzzle.
func (g *PuzzleGame) Spec() GameSpec {
	return GameSpec{
		ID:          "puzzle",
		Name:        "Sliding Puzzle",
		Kind:        KindTimer,
		Description: "Slide the tiles back into order from 1 to 15.",
		TickMS:      1000,
	}
}

// New scrambles a solved board with random slides, so every deal is
// solvable.
func (g *PuzzleGame) New(rng *engine.Stream) Session {
	s := &PuzzleSession{rng: rng}
	s.scramble()
	return s
}

// PuzzleSession is one board. Tile 0 is the gap.
type PuzzleSession struct {
	rng     *engine.Stream
	tiles   [puzzleCells]int
	moves   int
	seconds int
	solved  bool
	onOver  func(score int)
}

func (s *PuzzleSession) scramble() {
	for i := range s.tiles {
		s.tiles[i] = (i + 1) % puzzleCells
	}
	gap, prev := puzzleCells-1, -1
	for n := 0; n < puzzleScramble || s.inOrder(); n++ {
		options := make([]int, 0, 4)
		for _, c := range puzzleNeighbours(gap) {
			if c != prev {
				options = append(options, c)
			}
		}
		next := options[s.rng.Intn(len(options))]
		s.tiles[gap], s.tiles[next] = s.tiles[next], s.tiles[gap]
		gap, prev = next, gap
	}
	s.moves = 0
	s.seconds = 0
	s.solved = false
}

func puzzleNeighbours(i int) []int {
	row, col := i/PuzzleSide, i%PuzzleSide
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, i-PuzzleSide)
	}
	if row < PuzzleSide-1 {
		out = append(out, i+PuzzleSide)
	}
	if col > 0 {
		out = append(out, i-1)
	}
	if col < PuzzleSide-1 {
		out = append(out, i+1)
	}
	return out
}

func (s *PuzzleSession) inOrder() bool {
	for i, t := range s.tiles {
		if t != (i+1)%puzzleCells {
			return false
		}
	}
	return true
}

func (s *PuzzleSession) gap() int {
	for i, t := range s.tiles {
		if t == 0 {
			return i
		}
	}
	return -1
}

// OnGameOver implements Ender.
func (s *PuzzleSession) OnGameOver(fn func(score int)) {
	s.onOver = fn
}

// Apply handles "slide" (index = the cell to move into the gap) and
// "restart".
func (s *PuzzleSession) Apply(a Action) error {
	switch a.Type {
	case "slide":
		if s.solved {
			return fmt.Errorf("%w: puzzle solved", ErrFinished)
		}
		return s.slide(a.Index)
	case "restart":
		s.scramble()
		return nil
	default:
		return fmt.Errorf("%w: puzzle %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *PuzzleSession) slide(idx int) error {
	if idx < 0 || idx >= puzzleCells {
		return fmt.Errorf("%w: cell %d", ErrInvalidAction, idx)
	}
	gap := s.gap()
	adjacent := false
	for _, c := range puzzleNeighbours(gap) {
		if c == idx {
			adjacent = true
		}
	}
	if !adjacent {
		return fmt.Errorf("%w: cell %d is not next to the gap", ErrInvalidAction, idx)
	}

	s.tiles[gap], s.tiles[idx] = s.tiles[idx], s.tiles[gap]
	s.moves++
	if s.inOrder() {
		s.solved = true
		if s.onOver != nil {
			s.onOver(s.Score())
		}
	}
	return nil
}

// Tick counts one second while the puzzle is unsolved.
func (s *PuzzleSession) Tick() {
	if !s.solved {
		s.seconds++
	}
}

// PuzzleView is the render view.
type PuzzleView struct {
	Tiles   [puzzleCells]int `json:"tiles"` // 0 is the gap
	Moves   int              `json:"moves"`
	Seconds int              `json:"seconds"`
	Solved  bool             `json:"solved"`
}

// Snapshot implements Session.
func (s *PuzzleSession) Snapshot() any {
	return PuzzleView{Tiles: s.tiles, Moves: s.moves, Seconds: s.seconds, Solved: s.solved}
}

// Finished implements Session.
func (s *PuzzleSession) Finished() bool {
	return s.solved
}

// Score is 1000 less 10 per move and 1 per second once solved, else 0.
func (s *PuzzleSession) Score() int {
	if !s.solved {
		return 0
	}
	return max(0, puzzleMaxScore-s.moves*puzzleMoveCost-s.seconds)
}
