package games

import "github.com/asobiba/minigames/internal/engine"

// Card is a playing card.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// String returns the card as rank then suit, e.g. "10♥" or "A♠".
func (c Card) String() string {
	return c.Rank + c.Suit
}

var cardSuits = []string{"♠", "♥", "♦", "♣"}

var cardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// newDeck returns the 52 cards suit by suit.
func newDeck() []Card {
	deck := make([]Card, 0, len(cardSuits)*len(cardRanks))
	for _, suit := range cardSuits {
		for _, rank := range cardRanks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// shuffledDeck returns a full deck in stream order.
func shuffledDeck(rng *engine.Stream) []Card {
	deck := newDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// blackjackCardValue returns the blackjack point value of a rank.
// 2-10: face value, J/Q/K: 10, A: 11 (soft)
func blackjackCardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return int(rank[0] - '0')
	default:
		return 0
	}
}

// blackjackHandValue is the best total, counting aces as 1 while over 21.
func blackjackHandValue(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		total += blackjackCardValue(c.Rank)
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}
