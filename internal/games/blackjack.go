package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// BlackjackGame is one hand against a dealer who draws to 17.
type BlackjackGame struct{}

const (
	blackjackDealerStand = 17
	blackjackWinScore    = 10
	blackjackReshuffleAt = 15
)

// Spec returns metadata about Blackjack.
func (g *BlackjackGame) Spec() GameSpec {
	return GameSpec{
		ID:          "blackjack",
		Name:        "Blackjack",
		Kind:        KindTurn,
		Description: "Get closer to 21 than the dealer without going over.",
	}
}

// New shuffles a deck from rng and deals the first hand.
func (g *BlackjackGame) New(rng *engine.Stream) Session {
	s := &BlackjackSession{rng: rng}
	s.deal(shuffledDeck(rng))
	return s
}

// Blackjack outcomes.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomePush = "push"
)

// BlackjackSession is the hand in play.
type BlackjackSession struct {
	rng     *engine.Stream
	deck    []Card
	player  []Card
	dealer  []Card
	stood   bool
	outcome string
}

// deal resets the hands from deck in the order player, dealer, player, dealer.
func (s *BlackjackSession) deal(deck []Card) {
	s.deck = deck
	c := [4]Card{s.draw(), s.draw(), s.draw(), s.draw()}
	s.player = []Card{c[0], c[2]}
	s.dealer = []Card{c[1], c[3]}
	s.stood = false
	s.outcome = ""
}

// draw takes the top card, opening a fresh deck if the shoe ran dry.
func (s *BlackjackSession) draw() Card {
	if len(s.deck) == 0 {
		s.deck = newDeck()
		if s.rng != nil {
			s.deck = shuffledDeck(s.rng)
		}
	}
	c := s.deck[0]
	s.deck = s.deck[1:]
	return c
}

// Apply handles "hit", "stand" and "deal".
func (s *BlackjackSession) Apply(a Action) error {
	switch a.Type {
	case "hit":
		if s.outcome != "" {
			return fmt.Errorf("%w: hand over", ErrFinished)
		}
		s.player = append(s.player, s.draw())
		if blackjackHandValue(s.player) > 21 {
			s.settle()
		}
		return nil
	case "stand":
		if s.outcome != "" {
			return fmt.Errorf("%w: hand over", ErrFinished)
		}
		s.stood = true
		for blackjackHandValue(s.dealer) < blackjackDealerStand {
			s.dealer = append(s.dealer, s.draw())
		}
		s.settle()
		return nil
	case "deal":
		deck := s.deck
		if len(deck) < blackjackReshuffleAt && s.rng != nil {
			deck = shuffledDeck(s.rng)
		}
		s.deal(deck)
		return nil
	default:
		return fmt.Errorf("%w: blackjack %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *BlackjackSession) settle() {
	p, d := blackjackHandValue(s.player), blackjackHandValue(s.dealer)
	switch {
	case p > 21:
		s.outcome = OutcomeLose
	case d > 21 || p > d:
		s.outcome = OutcomeWin
	case d > p:
		s.outcome = OutcomeLose
	default:
		s.outcome = OutcomePush
	}
}

// BlackjackView is the render view. The dealer's hole card stays hidden
// until the hand is settled.
type BlackjackView struct {
	Player      []string `json:"player"`
	Dealer      []string `json:"dealer"`
	PlayerValue int      `json:"player_value"`
	DealerValue int      `json:"dealer_value,omitempty"`
	Stood       bool     `json:"stood"`
	Outcome     string   `json:"outcome,omitempty"`
	DeckLeft    int      `json:"deck_left"`
}

// Snapshot implements Session.
func (s *BlackjackSession) Snapshot() any {
	v := BlackjackView{
		Player:      cardStrings(s.player),
		Dealer:      cardStrings(s.dealer),
		PlayerValue: blackjackHandValue(s.player),
		Stood:       s.stood,
		Outcome:     s.outcome,
		DeckLeft:    len(s.deck),
	}
	if s.outcome != "" {
		v.DealerValue = blackjackHandValue(s.dealer)
	} else {
		v.Dealer[0] = "?"
	}
	return v
}

func cardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// Finished implements Session.
func (s *BlackjackSession) Finished() bool {
	return s.outcome != ""
}

// Score is 10 for a won hand, otherwise 0.
func (s *BlackjackSession) Score() int {
	if s.outcome == OutcomeWin {
		return blackjackWinScore
	}
	return 0
}
