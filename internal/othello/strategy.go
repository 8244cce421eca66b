package othello

// Strategy picks a placement for side among moves. moves is never empty.
type Strategy interface {
	Choose(b Board, side Cell, moves []Point) (Point, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(b Board, side Cell, moves []Point) (Point, error)

// Choose calls f.
func (f StrategyFunc) Choose(b Board, side Cell, moves []Point) (Point, error) {
	return f(b, side, moves)
}

// squareWeights rates each square for positional play; corners are prized,
// the squares next to them are avoided.
var squareWeights = [Size][Size]int{
	{100, -20, 10, 5, 5, 10, -20, 100},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{10, -2, 5, 1, 1, 5, -2, 10},
	{5, -2, 1, 1, 1, 1, -2, 5},
	{5, -2, 1, 1, 1, 1, -2, 5},
	{10, -2, 5, 1, 1, 5, -2, 10},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{100, -20, 10, 5, 5, 10, -20, 100},
}

// SquareWeight returns the positional weight of p.
func SquareWeight(p Point) int {
	if !p.InBounds() {
		return 0
	}
	return squareWeights[p.Row][p.Col]
}

// Greedy prefers the best-weighted square, then the move flipping the most
// stones, then the earliest move in row-major order.
type Greedy struct{}

// Choose implements Strategy.
func (Greedy) Choose(b Board, side Cell, moves []Point) (Point, error) {
	if len(moves) == 0 {
		return Point{}, ErrIllegalMove
	}
	best := moves[0]
	bestWeight, bestFlips := SquareWeight(best), len(b.Flips(best, side))
	for _, p := range moves[1:] {
		w, f := SquareWeight(p), len(b.Flips(p, side))
		if w > bestWeight || (w == bestWeight && f > bestFlips) {
			best, bestWeight, bestFlips = p, w, f
		}
	}
	return best, nil
}

// PlayStrategy lets s choose and play a move for the side to move. A choice
// that is not legal falls back to Greedy so the game always advances.
func (g *Game) PlayStrategy(s Strategy) (Move, error) {
	if g.over {
		return Move{}, ErrGameOver
	}
	moves := g.LegalMoves()
	p, err := s.Choose(g.board, g.turn, moves)
	if err != nil || !g.board.IsLegal(p, g.turn) {
		p, err = Greedy{}.Choose(g.board, g.turn, moves)
		if err != nil {
			return Move{}, err
		}
	}
	return g.Play(p)
}
