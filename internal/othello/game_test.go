package othello

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewGameStartsWithDark(t *testing.T) {
	g := NewGame()

	if g.State() != DarkToMove {
		t.Errorf("Expected dark_to_move, got %s", g.State())
	}
	if g.Turn() != Dark {
		t.Errorf("Expected dark turn, got %v", g.Turn())
	}
	if len(g.LegalMoves()) != 4 {
		t.Errorf("Expected 4 opening moves, got %d", len(g.LegalMoves()))
	}
}

func TestPlayAlternatesSides(t *testing.T) {
	g := NewGame()

	mv, err := g.Play(Point{Col: 2, Row: 3})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if mv.Side != Dark || len(mv.Flipped) != 1 {
		t.Errorf("Unexpected move record: %+v", mv)
	}
	if g.State() != LightToMove {
		t.Errorf("Expected light_to_move, got %s", g.State())
	}

	dark, light := g.Counts()
	if dark != 4 || light != 1 {
		t.Errorf("Expected 4 dark / 1 light, got %d / %d", dark, light)
	}
}

func TestIllegalPlayIsNoOp(t *testing.T) {
	g := NewGame()
	before := g.Snapshot()

	for _, p := range []Point{{Col: 3, Row: 3}, {Col: 0, Row: 0}, {Col: 9, Row: 9}} {
		if _, err := g.Play(p); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Play(%v): expected ErrIllegalMove, got %v", p, err)
		}
	}

	after := g.Snapshot()
	if after.Board != before.Board || after.Turn != before.Turn {
		t.Error("Illegal play changed the game")
	}
	if len(g.History()) != 0 {
		t.Errorf("Expected empty history, got %d moves", len(g.History()))
	}
}

func TestForcedPassDoesNotEndGame(t *testing.T) {
	b := mustBoard(t,
		"OX......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)

	ended := 0
	g := NewGame(WithPosition(b, Dark), WithGameEnd(func(Result) { ended++ }))

	if g.Over() {
		t.Fatal("Game ended although light can move")
	}
	if g.State() != LightToMove {
		t.Errorf("Expected light_to_move after dark pass, got %s", g.State())
	}
	passes := g.Passes()
	if len(passes) != 1 || passes[0].Side != Dark {
		t.Errorf("Expected a single dark pass, got %+v", passes)
	}
	if g.Board() != b {
		t.Error("Pass mutated the board")
	}
	if ended != 0 {
		t.Errorf("Game end fired %d times before the end", ended)
	}
}

func TestTwoConsecutivePassesEndGame(t *testing.T) {
	b := mustBoard(t,
		"OX......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)

	var results []Result
	g := NewGame(WithPosition(b, Dark), WithGameEnd(func(r Result) { results = append(results, r) }))

	if _, err := g.Play(Point{Col: 2, Row: 0}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if !g.Over() || g.State() != GameOver {
		t.Fatalf("Expected game over, got %s", g.State())
	}
	if len(results) != 1 {
		t.Fatalf("Expected game end exactly once, got %d", len(results))
	}

	res := results[0]
	if res.Winner != Light || res.Light != 3 || res.Dark != 0 || res.Score != 3 {
		t.Errorf("Unexpected result: %+v", res)
	}

	if _, err := g.Play(Point{Col: 5, Row: 5}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver after the end, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Game end fired again: %d", len(results))
	}
	if g.Turn() != Empty || g.LegalMoves() != nil {
		t.Error("Finished game still reports a side to move")
	}
}

func TestBlockedPositionEndsImmediately(t *testing.T) {
	b := mustBoard(t,
		"X.......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)

	calls := 0
	g := NewGame(WithPosition(b, Dark), WithGameEnd(func(Result) { calls++ }))

	if !g.Over() {
		t.Fatal("Expected game over when neither side can move")
	}
	if calls != 1 {
		t.Errorf("Expected one game end, got %d", calls)
	}
	if len(g.Passes()) != 2 {
		t.Errorf("Expected two passes, got %d", len(g.Passes()))
	}
	res, over := g.Result()
	if !over || res.Winner != Dark || res.Score != 1 {
		t.Errorf("Unexpected result: %+v", res)
	}
}

func TestFullBoard(t *testing.T) {
	tests := []struct {
		name   string
		rows   []string
		winner Cell
		score  int
	}{
		{
			name: "dark majority",
			rows: []string{
				"XXXXXXXX", "XXXXXXXX", "XXXXXXXX", "XXXXXXXX",
				"XXXXXXXX", "OOOOOOOO", "OOOOOOOO", "OOOOOOOO",
			},
			winner: Dark,
			score:  40,
		},
		{
			name: "light majority",
			rows: []string{
				"OOOOOOOO", "OOOOOOOO", "OOOOOOOO", "OOOOOOOO",
				"OOOOOOOO", "OOOOOOOO", "XXXXXXXX", "XXXXXXXX",
			},
			winner: Light,
			score:  48,
		},
		{
			name: "draw",
			rows: []string{
				"XOXOXOXO", "OXOXOXOX", "XOXOXOXO", "OXOXOXOX",
				"XOXOXOXO", "OXOXOXOX", "XOXOXOXO", "OXOXOXOX",
			},
			winner: Empty,
			score:  32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.rows...)
			g := NewGame(WithPosition(b, Dark))

			if g.State() != GameOver {
				t.Fatalf("Expected game over on a full board, got %s", g.State())
			}
			res, _ := g.Result()
			if res.Winner != tt.winner {
				t.Errorf("Expected winner %v, got %v", tt.winner, res.Winner)
			}
			if res.Score != tt.score {
				t.Errorf("Expected score %d, got %d", tt.score, res.Score)
			}
			if res.Draw() != (tt.winner == Empty) {
				t.Errorf("Draw() = %v for winner %v", res.Draw(), tt.winner)
			}
			if len(g.Passes()) != 0 {
				t.Errorf("Full board should not record passes, got %v", g.Passes())
			}
		})
	}
}

func TestRandomPlayoutsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for game := 0; game < 50; game++ {
		ends := 0
		g := NewGame(WithGameEnd(func(Result) { ends++ }))

		for !g.Over() {
			moves := g.LegalMoves()
			if len(moves) == 0 {
				t.Fatalf("game %d: side %v to move without legal moves", game, g.Turn())
			}

			board := g.Board()
			again := board.LegalMoves(g.Turn())
			if len(again) != len(moves) {
				t.Fatalf("game %d: legal moves not a pure function of the board", game)
			}

			for _, p := range moves {
				if len(board.Flips(p, g.Turn())) == 0 {
					t.Fatalf("game %d: legal move %v flips nothing", game, p)
				}
			}

			before := board.Stones()
			if _, err := g.Play(moves[rng.Intn(len(moves))]); err != nil {
				t.Fatalf("game %d: Play failed: %v", game, err)
			}

			after := g.Board()
			if after.Stones() != before+1 {
				t.Fatalf("game %d: stones went from %d to %d", game, before, after.Stones())
			}
			dark, light, empty := after.Counts()
			if dark+light+empty != Size*Size {
				t.Fatalf("game %d: counts do not sum to 64", game)
			}
		}

		if ends != 1 {
			t.Errorf("game %d: expected one game end, got %d", game, ends)
		}
		res, _ := g.Result()
		dark, light := g.Counts()
		if res.Dark != dark || res.Light != light {
			t.Errorf("game %d: result %+v does not match counts %d/%d", game, res, dark, light)
		}
	}
}

func TestRestart(t *testing.T) {
	calls := 0
	g := NewGame(WithGameEnd(func(Result) { calls++ }))
	if _, err := g.Play(Point{Col: 2, Row: 3}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	g.Restart()

	if g.Board() != NewBoard() || g.State() != DarkToMove {
		t.Error("Restart did not reset the position")
	}
	if len(g.History()) != 0 {
		t.Error("Restart kept the move history")
	}
	if calls != 0 {
		t.Errorf("Restart fired game end %d times", calls)
	}
}

func TestSnapshot(t *testing.T) {
	g := NewGame()
	s := g.Snapshot()

	if s.Dark != 2 || s.Light != 2 {
		t.Errorf("Expected 2/2 counts, got %d/%d", s.Dark, s.Light)
	}
	if len(s.Legal) != 4 {
		t.Errorf("Expected 4 highlighted moves, got %d", len(s.Legal))
	}
	if s.Result != nil {
		t.Error("Running game should not carry a result")
	}
}
