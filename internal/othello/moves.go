package othello

import "errors"

var (
	// ErrIllegalMove is returned when a placement would not capture any run.
	ErrIllegalMove = errors.New("othello: illegal move")
	// ErrGameOver is returned for input received after the game has ended.
	ErrGameOver = errors.New("othello: game is over")
	// ErrInvalidSide is returned when a side other than Dark or Light is given.
	ErrInvalidSide = errors.New("othello: invalid side")
)

// directions are the 8 compass steps shared by the move finder and the flipper.
var directions = [8]Point{
	{Col: 0, Row: -1},
	{Col: 1, Row: -1},
	{Col: 1, Row: 0},
	{Col: 1, Row: 1},
	{Col: 0, Row: 1},
	{Col: -1, Row: 1},
	{Col: -1, Row: 0},
	{Col: -1, Row: -1},
}

// captureRun walks from p in direction d over opposing stones. It returns the
// run when the walk covers at least one opposing stone and ends on a stone of
// side; otherwise nil. Leaving the board disqualifies the run.
func (b *Board) captureRun(p, d Point, side Cell) []Point {
	opp := Opponent(side)
	var run []Point
	q := p.add(d)
	for q.InBounds() && b.At(q) == opp {
		run = append(run, q)
		q = q.add(d)
	}
	if len(run) == 0 || !q.InBounds() || b.At(q) != side {
		return nil
	}
	return run
}

// Flips returns every stone a placement by side at p would turn over. The
// result is empty when p is occupied, off the board, or captures nothing.
func (b *Board) Flips(p Point, side Cell) []Point {
	if !validSide(side) || !p.InBounds() || b.At(p) != Empty {
		return nil
	}
	var flips []Point
	for _, d := range directions {
		flips = append(flips, b.captureRun(p, d, side)...)
	}
	return flips
}

// IsLegal reports whether side may place a stone at p.
func (b *Board) IsLegal(p Point, side Cell) bool {
	if !validSide(side) || !p.InBounds() || b.At(p) != Empty {
		return false
	}
	for _, d := range directions {
		if b.captureRun(p, d, side) != nil {
			return true
		}
	}
	return false
}

// LegalMoves returns every square where side has a legal placement, in
// row-major order. An empty result means side must pass.
func (b *Board) LegalMoves(side Cell) []Point {
	if !validSide(side) {
		return nil
	}
	var moves []Point
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := Point{Col: c, Row: r}
			if b.IsLegal(p, side) {
				moves = append(moves, p)
			}
		}
	}
	return moves
}

// HasLegalMove reports whether side has at least one legal placement.
func (b *Board) HasLegalMove(side Cell) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.IsLegal(Point{Col: c, Row: r}, side) {
				return true
			}
		}
	}
	return false
}

// Apply returns a copy of the board with side placed at p and every captured
// run flipped, together with the flipped squares. The receiver is unchanged.
// An illegal placement yields ErrIllegalMove and the original board.
func (b Board) Apply(p Point, side Cell) (Board, []Point, error) {
	if !validSide(side) {
		return b, nil, ErrInvalidSide
	}
	flips := b.Flips(p, side)
	if len(flips) == 0 {
		return b, nil, ErrIllegalMove
	}
	next := b
	next.set(p, side)
	for _, f := range flips {
		next.set(f, side)
	}
	return next, flips, nil
}
