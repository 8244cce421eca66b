package scripting

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/dop251/goja"

	"github.com/asobiba/minigames/internal/othello"
)

// DefaultCallTimeout bounds a single choose() call.
const DefaultCallTimeout = 200 * time.Millisecond

// ErrBadChoice is returned when choose() returns something that does not
// name one of the offered moves.
var ErrBadChoice = errors.New("script returned an invalid choice")

// Strategy is an othello.Strategy backed by a script defining
//
//	function choose(moves, board, side) { ... }
//
// moves is an array of {col, row, flips, weight}; board is 8 rows of 8 cell
// names ("dark", "light", "empty"); side is the colour to move. choose returns
// an index into moves or an object with col and row.
type Strategy struct {
	vm      *VM
	timeout time.Duration
	logger  *log.Logger
}

// StrategyOption configures a Strategy.
type StrategyOption func(*Strategy)

// WithCallTimeout overrides DefaultCallTimeout.
func WithCallTimeout(d time.Duration) StrategyOption {
	return func(s *Strategy) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) StrategyOption {
	return func(s *Strategy) { s.logger = l }
}

// NewStrategy compiles source and checks that it defines choose().
func NewStrategy(source string, opts ...StrategyOption) (*Strategy, error) {
	s := &Strategy{
		vm:      NewVM(),
		timeout: DefaultCallTimeout,
		logger:  log.New(os.Stdout, "[SCRIPT] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.vm.Execute(source); err != nil {
		return nil, err
	}
	if !s.vm.HasFunc("choose") {
		return nil, fmt.Errorf("choose() function is not defined")
	}
	return s, nil
}

// LoadStrategy reads a script from path.
func LoadStrategy(path string, opts ...StrategyOption) (*Strategy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return NewStrategy(string(src), opts...)
}

// Choose implements othello.Strategy.
func (s *Strategy) Choose(b othello.Board, side othello.Cell, moves []othello.Point) (othello.Point, error) {
	if len(moves) == 0 {
		return othello.Point{}, othello.ErrIllegalMove
	}

	out, err := s.vm.Call("choose", s.timeout, movesArg(b, side, moves), boardArg(b), side.String())
	if err != nil {
		s.logger.Printf("choose_failed side=%s err=%v", side, err)
		return othello.Point{}, err
	}

	p, err := pointFrom(out, moves)
	if err != nil {
		s.logger.Printf("choose_invalid side=%s result=%v", side, out)
		return othello.Point{}, err
	}
	return p, nil
}

// Logs returns the messages the script wrote with log or console.log.
func (s *Strategy) Logs() []LogEntry {
	return s.vm.GetLogs()
}

func movesArg(b othello.Board, side othello.Cell, moves []othello.Point) []any {
	out := make([]any, len(moves))
	for i, p := range moves {
		out[i] = map[string]any{
			"col":    p.Col,
			"row":    p.Row,
			"flips":  len(b.Flips(p, side)),
			"weight": othello.SquareWeight(p),
		}
	}
	return out
}

func boardArg(b othello.Board) []any {
	rows := make([]any, othello.Size)
	for r := 0; r < othello.Size; r++ {
		row := make([]any, othello.Size)
		for c := 0; c < othello.Size; c++ {
			row[c] = b[r][c].String()
		}
		rows[r] = row
	}
	return rows
}

func pointFrom(v any, moves []othello.Point) (othello.Point, error) {
	switch x := v.(type) {
	case int64:
		return indexed(x, moves)
	case float64:
		if x != math.Trunc(x) {
			return othello.Point{}, fmt.Errorf("%w: %v", ErrBadChoice, x)
		}
		return indexed(int64(x), moves)
	case map[string]any:
		col, okc := intField(x["col"])
		row, okr := intField(x["row"])
		if !okc || !okr {
			return othello.Point{}, fmt.Errorf("%w: %v", ErrBadChoice, x)
		}
		p := othello.Point{Col: col, Row: row}
		for _, m := range moves {
			if m == p {
				return p, nil
			}
		}
		return othello.Point{}, fmt.Errorf("%w: %v not offered", ErrBadChoice, p)
	default:
		return othello.Point{}, fmt.Errorf("%w: %v", ErrBadChoice, v)
	}
}

func indexed(i int64, moves []othello.Point) (othello.Point, error) {
	if i < 0 || i >= int64(len(moves)) {
		return othello.Point{}, fmt.Errorf("%w: index %d of %d", ErrBadChoice, i, len(moves))
	}
	return moves[i], nil
}

func intField(v any) (int, bool) {
	switch x := v.(type) {
	case int64:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	}
	return 0, false
}

// injectBoardHelpers exposes read-only helpers scripts commonly need.
func injectBoardHelpers(rt *goja.Runtime) {
	rt.Set("BOARD_SIZE", othello.Size)
	rt.Set("weight", func(col, row int) int {
		return othello.SquareWeight(othello.Point{Col: col, Row: row})
	})
}

// Factory loads the script at path once and returns a constructor giving
// each caller its own runtime, since a goja runtime serves one goroutine.
func Factory(path string, opts ...StrategyOption) (func() othello.Strategy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if _, err := NewStrategy(string(src), opts...); err != nil {
		return nil, err
	}
	return func() othello.Strategy {
		s, err := NewStrategy(string(src), opts...)
		if err != nil {
			return othello.Greedy{}
		}
		return s
	}, nil
}
