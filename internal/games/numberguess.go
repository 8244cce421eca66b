package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// NumberGuessGame hides a number in 1..100 and answers higher or lower.
type NumberGuessGame struct{}

const (
	guessMin     = 1
	guessMax     = 100
	guessPenalty = 5
)

// Spec returns metadata about NumberGuess.
func (g *NumberGuessGame) Spec() GameSpec {
	return GameSpec{
		ID:          "numberguess",
		Name:        "Number Guess",
		Kind:        KindTurn,
		Description: "Find the number between 1 and 100; fewer tries score more.",
	}
}

// New draws the answer from rng.
func (g *NumberGuessGame) New(rng *engine.Stream) Session {
	s := &NumberGuessSession{rng: rng}
	s.reset()
	return s
}

// NumberGuessSession is one hidden number.
type NumberGuessSession struct {
	rng     *engine.Stream
	answer  int
	tries   int
	hint    string
	guesses []int
	solved  bool
	score   int
}

func (s *NumberGuessSession) reset() {
	s.answer = guessMin + s.rng.Intn(guessMax-guessMin+1)
	s.tries = 0
	s.hint = ""
	s.guesses = nil
	s.solved = false
	s.score = 0
}

// Apply handles "guess" (number) and "restart". Out-of-range guesses are
// rejected without using up a try.
func (s *NumberGuessSession) Apply(a Action) error {
	switch a.Type {
	case "guess":
		if s.solved {
			return fmt.Errorf("%w: already solved", ErrFinished)
		}
		if a.Number < guessMin || a.Number > guessMax {
			return fmt.Errorf("%w: %d not in %d..%d", ErrInvalidAction, a.Number, guessMin, guessMax)
		}
		s.guesses = append(s.guesses, a.Number)
		switch {
		case a.Number == s.answer:
			s.hint = "correct"
			s.solved = true
			s.score = max(0, 100-s.tries*guessPenalty)
		case a.Number < s.answer:
			s.hint = "higher"
		default:
			s.hint = "lower"
		}
		s.tries++
		return nil
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: numberguess %q", ErrUnsupportedAction, a.Type)
	}
}

// NumberGuessView is the render view. The answer is shown only once solved.
type NumberGuessView struct {
	Tries   int    `json:"tries"`
	Hint    string `json:"hint,omitempty"`
	Guesses []int  `json:"guesses"`
	Answer  int    `json:"answer,omitempty"`
}

// Snapshot implements Session.
func (s *NumberGuessSession) Snapshot() any {
	v := NumberGuessView{Tries: s.tries, Hint: s.hint, Guesses: append([]int(nil), s.guesses...)}
	if s.solved {
		v.Answer = s.answer
	}
	return v
}

// Finished implements Session.
func (s *NumberGuessSession) Finished() bool {
	return s.solved
}

// Score is 100 less 5 per earlier wrong try, floored at 0; 0 until solved.
func (s *NumberGuessSession) Score() int {
	return s.score
}
