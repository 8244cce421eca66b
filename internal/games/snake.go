package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// SnakeGame is the classic snake on a 20×20 grid. The session advances one
// cell per Tick; the shell owns the timer.
type SnakeGame struct{}

const (
	SnakeGrid      = 20
	snakeFoodScore = 10
)

// Spec returns metadata about Snake.
func (g *SnakeGame) Spec() GameSpec {
	return GameSpec{
		ID:          "snake",
		Name:        "Snake",
		Kind:        KindTimer,
		Description: "Eat food to grow; hitting a wall or yourself ends the game.",
	}
}

// New places a one-cell snake at (0,0) heading right with food at (10,10).
func (g *SnakeGame) New(rng *engine.Stream) Session {
	s := &SnakeSession{rng: rng}
	s.reset()
	return s
}

// GridPoint is a snake grid coordinate.
type GridPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var snakeHeadings = map[string]GridPoint{
	"up":    {0, -1},
	"down":  {0, 1},
	"left":  {-1, 0},
	"right": {1, 0},
}

// SnakeSession is one snake run.
type SnakeSession struct {
	rng     *engine.Stream
	body    []GridPoint // head first
	heading string      // direction of the last step
	next    string      // direction for the coming step
	food    GridPoint
	score   int
	ticks   int
	over    bool
}

func (s *SnakeSession) reset() {
	s.body = []GridPoint{{0, 0}}
	s.heading, s.next = "right", "right"
	s.food = GridPoint{10, 10}
	s.score = 0
	s.ticks = 0
	s.over = false
}

// Turn changes heading for the next step. Reversing onto the snake's own
// neck is ignored.
func (s *SnakeSession) Turn(dir string) error {
	d, ok := snakeHeadings[dir]
	if !ok {
		return fmt.Errorf("%w: direction %q", ErrInvalidAction, dir)
	}
	cur := snakeHeadings[s.heading]
	if d.X == -cur.X && d.Y == -cur.Y {
		return nil
	}
	s.next = dir
	return nil
}

// Tick advances the snake one cell.
func (s *SnakeSession) Tick() {
	if s.over {
		return
	}
	s.ticks++
	d := snakeHeadings[s.next]
	head := GridPoint{s.body[0].X + d.X, s.body[0].Y + d.Y}
	s.heading = s.next

	if head.X < 0 || head.X >= SnakeGrid || head.Y < 0 || head.Y >= SnakeGrid {
		s.over = true
		return
	}
	for _, c := range s.body {
		if c == head {
			s.over = true
			return
		}
	}

	s.body = append([]GridPoint{head}, s.body...)
	if head == s.food {
		s.score += snakeFoodScore
		s.placeFood()
		return
	}
	s.body = s.body[:len(s.body)-1]
}

// placeFood puts food on a free cell chosen from the stream.
func (s *SnakeSession) placeFood() {
	occupied := make(map[GridPoint]bool, len(s.body))
	for _, c := range s.body {
		occupied[c] = true
	}
	free := make([]GridPoint, 0, SnakeGrid*SnakeGrid-len(s.body))
	for y := 0; y < SnakeGrid; y++ {
		for x := 0; x < SnakeGrid; x++ {
			if c := (GridPoint{x, y}); !occupied[c] {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		s.over = true
		return
	}
	s.food = free[s.rng.Intn(len(free))]
}

// Apply handles "turn" (choice up/down/left/right), "step" and "restart".
func (s *SnakeSession) Apply(a Action) error {
	switch a.Type {
	case "turn":
		if s.over {
			return fmt.Errorf("%w: snake crashed", ErrFinished)
		}
		return s.Turn(a.Choice)
	case "step":
		if s.over {
			return fmt.Errorf("%w: snake crashed", ErrFinished)
		}
		s.Tick()
		return nil
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: snake %q", ErrUnsupportedAction, a.Type)
	}
}

// SnakeView is one rendered frame.
type SnakeView struct {
	Grid    int         `json:"grid"`
	Body    []GridPoint `json:"body"`
	Food    GridPoint   `json:"food"`
	Heading string      `json:"heading"`
	Score   int         `json:"score"`
	Tick    int         `json:"tick"`
	Over    bool        `json:"over"`
}

// Snapshot implements Session.
func (s *SnakeSession) Snapshot() any {
	return SnakeView{
		Grid:    SnakeGrid,
		Body:    append([]GridPoint(nil), s.body...),
		Food:    s.food,
		Heading: s.heading,
		Score:   s.score,
		Tick:    s.ticks,
		Over:    s.over,
	}
}

// Finished implements Session.
func (s *SnakeSession) Finished() bool {
	return s.over
}

// Score is the food eaten so far × 10.
func (s *SnakeSession) Score() int {
	return s.score
}
