package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// JankenGame is five rounds of rock-paper-scissors against the computer.
type JankenGame struct{}

const (
	jankenRounds   = 5
	jankenWinScore = 10
)

var jankenHands = []string{"rock", "paper", "scissors"}

// jankenBeats maps a hand to the hand it defeats.
var jankenBeats = map[string]string{
	"rock":     "scissors",
	"scissors": "paper",
	"paper":    "rock",
}

// Spec returns metadata about Janken.
func (g *JankenGame) Spec() GameSpec {
	return GameSpec{
		ID:          "janken",
		Name:        "Janken",
		Kind:        KindTurn,
		Description: "Rock, paper, scissors: five throws, 10 points per win.",
	}
}

// New starts at round zero.
func (g *JankenGame) New(rng *engine.Stream) Session {
	return &JankenSession{rng: rng}
}

// JankenRound is one throw.
type JankenRound struct {
	Player   string `json:"player"`
	Computer string `json:"computer"`
	Result   string `json:"result"` // win, lose or draw
}

// JankenSession tracks the throws so far.
type JankenSession struct {
	rng    *engine.Stream
	rounds []JankenRound
	score  int
}

// Apply handles "throw" (choice rock/paper/scissors) and "restart".
func (s *JankenSession) Apply(a Action) error {
	switch a.Type {
	case "throw":
		if len(s.rounds) >= jankenRounds {
			return fmt.Errorf("%w: all %d rounds played", ErrFinished, jankenRounds)
		}
		if _, ok := jankenBeats[a.Choice]; !ok {
			return fmt.Errorf("%w: hand %q", ErrInvalidAction, a.Choice)
		}
		computer := jankenHands[s.rng.Intn(len(jankenHands))]
		r := JankenRound{Player: a.Choice, Computer: computer, Result: jankenJudge(a.Choice, computer)}
		if r.Result == "win" {
			s.score += jankenWinScore
		}
		s.rounds = append(s.rounds, r)
		return nil
	case "restart":
		s.rounds = nil
		s.score = 0
		return nil
	default:
		return fmt.Errorf("%w: janken %q", ErrUnsupportedAction, a.Type)
	}
}

func jankenJudge(player, computer string) string {
	switch {
	case player == computer:
		return "draw"
	case jankenBeats[player] == computer:
		return "win"
	default:
		return "lose"
	}
}

// JankenView is the render view.
type JankenView struct {
	Rounds    []JankenRound `json:"rounds"`
	Remaining int           `json:"remaining"`
	Score     int           `json:"score"`
}

// Snapshot implements Session.
func (s *JankenSession) Snapshot() any {
	rounds := make([]JankenRound, len(s.rounds))
	copy(rounds, s.rounds)
	return JankenView{Rounds: rounds, Remaining: jankenRounds - len(s.rounds), Score: s.score}
}

// Finished implements Session.
func (s *JankenSession) Finished() bool {
	return len(s.rounds) >= jankenRounds
}

// Score implements Session.
func (s *JankenSession) Score() int {
	return s.score
}
