package othello

// State is the controller state.
type State uint8

const (
	DarkToMove State = iota
	LightToMove
	GameOver
)

func (s State) String() string {
	switch s {
	case DarkToMove:
		return "dark_to_move"
	case LightToMove:
		return "light_to_move"
	default:
		return "game_over"
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the final tally. Winner is Empty on a draw. Score is the payload
// reported to the launcher: the winning side's stone count, or the shared
// count on a draw.
type Result struct {
	Winner Cell `json:"winner"`
	Dark   int  `json:"dark"`
	Light  int  `json:"light"`
	Score  int  `json:"score"`
}

// Draw reports whether neither side has more stones.
func (r Result) Draw() bool {
	return r.Winner == Empty
}

func resultOf(b *Board) Result {
	dark, light, _ := b.Counts()
	res := Result{Dark: dark, Light: light}
	switch {
	case dark > light:
		res.Winner, res.Score = Dark, dark
	case light > dark:
		res.Winner, res.Score = Light, light
	default:
		res.Winner, res.Score = Empty, dark
	}
	return res
}

// Move records one placement.
type Move struct {
	Side    Cell    `json:"side"`
	At      Point   `json:"at"`
	Flipped []Point `json:"flipped"`
}

// Pass records a forced pass.
type Pass struct {
	Side Cell `json:"side"`
	Ply  int  `json:"ply"`
}

// Game is the turn/termination controller for one session. It is not safe
// for concurrent use; the owning session serialises input.
type Game struct {
	board   Board
	turn    Cell
	over    bool
	passes  int
	ply     int
	history []Move
	passLog []Pass
	result  Result
	onEnd   func(Result)
}

// Option configures a Game.
type Option func(*Game)

// WithGameEnd registers a callback invoked exactly once when the game ends.
func WithGameEnd(fn func(Result)) Option {
	return func(g *Game) {
		g.onEnd = fn
	}
}

// WithPosition starts the game from an arbitrary board and side to move.
func WithPosition(b Board, turn Cell) Option {
	return func(g *Game) {
		g.board = b
		if validSide(turn) {
			g.turn = turn
		}
	}
}

// NewGame creates a game at the opening position with dark to move. Forced
// passes and termination are resolved immediately, so a full or blocked
// starting position is already over when NewGame returns.
func NewGame(opts ...Option) *Game {
	g := &Game{
		board: NewBoard(),
		turn:  Dark,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.settle()
	return g
}

// Restart reinitialises the board to the opening position. The game-end
// callback is armed again for the new game.
func (g *Game) Restart() {
	g.board = NewBoard()
	g.turn = Dark
	g.over = false
	g.passes = 0
	g.ply = 0
	g.history = nil
	g.passLog = nil
	g.result = Result{}
	g.settle()
}

// Play places a stone for the side to move. Illegal input leaves the game
// untouched and returns ErrGameOver or ErrIllegalMove.
func (g *Game) Play(p Point) (Move, error) {
	if g.over {
		return Move{}, ErrGameOver
	}
	next, flips, err := g.board.Apply(p, g.turn)
	if err != nil {
		return Move{}, err
	}
	mv := Move{Side: g.turn, At: p, Flipped: flips}
	g.board = next
	g.history = append(g.history, mv)
	g.ply++
	g.passes = 0
	g.turn = Opponent(g.turn)
	g.settle()
	return mv, nil
}

// settle applies forced passes and detects the end of the game.
func (g *Game) settle() {
	for !g.over {
		if g.board.Full() {
			g.finish()
			return
		}
		if g.board.HasLegalMove(g.turn) {
			return
		}
		g.passLog = append(g.passLog, Pass{Side: g.turn, Ply: g.ply})
		g.passes++
		if g.passes >= 2 {
			g.finish()
			return
		}
		g.turn = Opponent(g.turn)
	}
}

func (g *Game) finish() {
	if g.over {
		return
	}
	g.over = true
	g.result = resultOf(&g.board)
	if g.onEnd != nil {
		g.onEnd(g.result)
	}
}

// Board returns a copy of the current board.
func (g *Game) Board() Board {
	return g.board
}

// Turn returns the side to move, or Empty once the game is over.
func (g *Game) Turn() Cell {
	if g.over {
		return Empty
	}
	return g.turn
}

// State returns the controller state.
func (g *Game) State() State {
	switch {
	case g.over:
		return GameOver
	case g.turn == Light:
		return LightToMove
	default:
		return DarkToMove
	}
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.over
}

// LegalMoves returns the legal placements for the side to move.
func (g *Game) LegalMoves() []Point {
	if g.over {
		return nil
	}
	return g.board.LegalMoves(g.turn)
}

// Counts returns the running stone counts.
func (g *Game) Counts() (dark, light int) {
	dark, light, _ = g.board.Counts()
	return dark, light
}

// Result returns the final tally and whether the game has ended.
func (g *Game) Result() (Result, bool) {
	return g.result, g.over
}

// History returns the placements made so far.
func (g *Game) History() []Move {
	out := make([]Move, len(g.history))
	copy(out, g.history)
	return out
}

// Passes returns the forced passes taken so far.
func (g *Game) Passes() []Pass {
	out := make([]Pass, len(g.passLog))
	copy(out, g.passLog)
	return out
}

// Snapshot is the render view handed to shells.
type Snapshot struct {
	Board  Board   `json:"board"`
	Turn   Cell    `json:"turn"`
	State  State   `json:"state"`
	Legal  []Point `json:"legal"`
	Dark   int     `json:"dark"`
	Light  int     `json:"light"`
	Passes []Pass  `json:"passes,omitempty"`
	Result *Result `json:"result,omitempty"`
}

// Snapshot captures everything a shell needs to draw the game.
func (g *Game) Snapshot() Snapshot {
	dark, light := g.Counts()
	s := Snapshot{
		Board:  g.board,
		Turn:   g.Turn(),
		State:  g.State(),
		Legal:  g.LegalMoves(),
		Dark:   dark,
		Light:  light,
		Passes: g.Passes(),
	}
	if g.over {
		res := g.result
		s.Result = &res
	}
	return s
}
