package games

import (
	"errors"
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
	"github.com/asobiba/minigames/internal/othello"
)

// OthelloGame is two-player Othello on one board. The "ai" action lets the
// session's strategy move for whichever side is to move.
type OthelloGame struct{}

// Spec returns metadata about Othello.
func (g *OthelloGame) Spec() GameSpec {
	return GameSpec{
		ID:          "othello",
		Name:        "Othello",
		Kind:        KindTurn,
		Description: "Flip runs of opposing stones; the side with more stones wins.",
	}
}

// New starts a game at the opening position.
func (g *OthelloGame) New(_ *engine.Stream) Session {
	s := &OthelloSession{strategy: othello.Greedy{}}
	s.game = othello.NewGame(othello.WithGameEnd(s.ended))
	return s
}

// OthelloSession adapts othello.Game to Session.
type OthelloSession struct {
	game     *othello.Game
	strategy othello.Strategy
	last     *othello.Move
	onEnd    func(othello.Result)
	onOver   func(score int)
}

// SetStrategy replaces the strategy used by the "ai" action. nil restores Greedy.
func (s *OthelloSession) SetStrategy(st othello.Strategy) {
	if st == nil {
		st = othello.Greedy{}
	}
	s.strategy = st
}

// OnGameEnd registers fn to run once each time a game on this session ends.
func (s *OthelloSession) OnGameEnd(fn func(othello.Result)) {
	s.onEnd = fn
}

// OnGameOver implements Ender. fn receives the final score.
func (s *OthelloSession) OnGameOver(fn func(score int)) {
	s.onOver = fn
}

func (s *OthelloSession) ended(r othello.Result) {
	if s.onEnd != nil {
		s.onEnd(r)
	}
	if s.onOver != nil {
		s.onOver(r.Score)
	}
}

// Game exposes the underlying controller for shells that drive it directly.
func (s *OthelloSession) Game() *othello.Game {
	return s.game
}

// Apply handles "place", "ai" and "restart".
func (s *OthelloSession) Apply(a Action) error {
	var (
		mv  othello.Move
		err error
	)
	switch a.Type {
	case "place":
		mv, err = s.game.Play(othello.Point{Col: a.Column, Row: a.Row})
	case "ai":
		mv, err = s.game.PlayStrategy(s.strategy)
	case "restart":
		s.game.Restart()
		s.last = nil
		return nil
	default:
		return fmt.Errorf("%w: othello %q", ErrUnsupportedAction, a.Type)
	}
	if err != nil {
		if errors.Is(err, othello.ErrGameOver) {
			return fmt.Errorf("%w: %v", ErrFinished, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	s.last = &mv
	return nil
}

// OthelloView is the Othello render view.
type OthelloView struct {
	othello.Snapshot
	LastMove *othello.Move `json:"last_move,omitempty"`
}

// Snapshot implements Session.
func (s *OthelloSession) Snapshot() any {
	return OthelloView{Snapshot: s.game.Snapshot(), LastMove: s.last}
}

// Finished implements Session.
func (s *OthelloSession) Finished() bool {
	return s.game.Over()
}

// Score is the final score once the game is over and 0 before that.
func (s *OthelloSession) Score() int {
	res, over := s.game.Result()
	if !over {
		return 0
	}
	return res.Score
}
