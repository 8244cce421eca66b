package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// TicTacToeGame is local two-player noughts and crosses played over any
// number of rounds. The session score is the better player's win count × 10.
type TicTacToeGame struct{}

// Spec returns metadata about TicTacToe.
func (g *TicTacToeGame) Spec() GameSpec {
	return GameSpec{
		ID:          "tictactoe",
		Name:        "Tic-Tac-Toe",
		Kind:        KindTurn,
		Description: "Three in a row wins the round; play as many rounds as you like.",
	}
}

// New starts the first round with X to move.
func (g *TicTacToeGame) New(_ *engine.Stream) Session {
	return &TicTacToeSession{turn: "X", wins: map[string]int{"X": 0, "O": 0}}
}

var tttLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToeSession holds the current round and the running tally.
type TicTacToeSession struct {
	board  [9]string
	turn   string
	winner string // "X", "O", "draw" or empty while the round is open
	line   []int
	wins   map[string]int
	rounds int
}

// Apply handles "place" (index 0-8, row-major) and "restart".
func (s *TicTacToeSession) Apply(a Action) error {
	switch a.Type {
	case "place":
		return s.place(a)
	case "restart":
		s.board = [9]string{}
		s.turn = "X"
		s.winner = ""
		s.line = nil
		return nil
	default:
		return fmt.Errorf("%w: tictactoe %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *TicTacToeSession) place(a Action) error {
	idx := a.Index
	if idx < 0 || idx >= len(s.board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidAction, idx)
	}
	if s.winner != "" {
		return fmt.Errorf("%w: round over", ErrFinished)
	}
	if s.board[idx] != "" {
		return fmt.Errorf("%w: cell %d occupied", ErrInvalidAction, idx)
	}

	s.board[idx] = s.turn
	if line := s.winningLine(); line != nil {
		s.winner, s.line = s.turn, line
		s.wins[s.turn]++
		s.rounds++
		return nil
	}
	if s.full() {
		s.winner = "draw"
		s.rounds++
		return nil
	}
	if s.turn == "X" {
		s.turn = "O"
	} else {
		s.turn = "X"
	}
	return nil
}

func (s *TicTacToeSession) winningLine() []int {
	for _, l := range tttLines {
		a := s.board[l[0]]
		if a != "" && a == s.board[l[1]] && a == s.board[l[2]] {
			return []int{l[0], l[1], l[2]}
		}
	}
	return nil
}

func (s *TicTacToeSession) full() bool {
	for _, c := range s.board {
		if c == "" {
			return false
		}
	}
	return true
}

// TicTacToeView is the render view.
type TicTacToeView struct {
	Board  [9]string      `json:"board"`
	Turn   string         `json:"turn"`
	Winner string         `json:"winner,omitempty"`
	Line   []int          `json:"line,omitempty"`
	Wins   map[string]int `json:"wins"`
	Rounds int            `json:"rounds"`
}

// Snapshot implements Session.
func (s *TicTacToeSession) Snapshot() any {
	wins := map[string]int{"X": s.wins["X"], "O": s.wins["O"]}
	return TicTacToeView{
		Board:  s.board,
		Turn:   s.turn,
		Winner: s.winner,
		Line:   s.line,
		Wins:   wins,
		Rounds: s.rounds,
	}
}

// Finished reports whether the current round is decided.
func (s *TicTacToeSession) Finished() bool {
	return s.winner != ""
}

// Score implements Session.
func (s *TicTacToeSession) Score() int {
	return max(s.wins["X"], s.wins["O"]) * 10
}
