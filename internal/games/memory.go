package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// MemoryGame is concentration with 8 pairs.
type MemoryGame struct{}

var memoryFaces = []string{"dog", "cat", "mouse", "hamster", "rabbit", "fox", "bear", "panda"}

const memoryMovePenalty = 2

// Spec returns metadata about Memory.
func (g *MemoryGame) Spec() GameSpec {
	return GameSpec{
		ID:          "memory",
		Name:        "Memory",
		Kind:        KindTurn,
		Description: "Turn over two cards at a time and match all eight pairs.",
	}
}

// New lays out the 16 cards in stream order.
func (g *MemoryGame) New(rng *engine.Stream) Session {
	s := &MemorySession{rng: rng}
	s.deal()
	return s
}

// MemoryCard is one card on the table.
type MemoryCard struct {
	Face    string `json:"face,omitempty"`
	Up      bool   `json:"up"`
	Matched bool   `json:"matched"`
}

// MemorySession is the table.
type MemorySession struct {
	rng     *engine.Stream
	faces   []string
	matched []bool
	flipped []int // face-up unmatched cards, at most 2
	moves   int
	pairs   int
}

func (s *MemorySession) deal() {
	s.faces = make([]string, 0, 2*len(memoryFaces))
	s.faces = append(s.faces, memoryFaces...)
	s.faces = append(s.faces, memoryFaces...)
	s.rng.Shuffle(len(s.faces), func(i, j int) { s.faces[i], s.faces[j] = s.faces[j], s.faces[i] })
	s.matched = make([]bool, len(s.faces))
	s.flipped = nil
	s.moves = 0
	s.pairs = 0
}

// Apply handles "flip" (index), "hide" and "restart". A mismatched pair
// stays up until "hide" or the next flip turns it back over.
func (s *MemorySession) Apply(a Action) error {
	switch a.Type {
	case "flip":
		return s.flip(a.Index)
	case "hide":
		if len(s.flipped) == 2 {
			s.flipped = nil
		}
		return nil
	case "restart":
		s.deal()
		return nil
	default:
		return fmt.Errorf("%w: memory %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *MemorySession) flip(i int) error {
	if s.Finished() {
		return fmt.Errorf("%w: all pairs found", ErrFinished)
	}
	if i < 0 || i >= len(s.faces) {
		return fmt.Errorf("%w: card %d", ErrInvalidAction, i)
	}
	if len(s.flipped) == 2 {
		s.flipped = nil
	}
	if s.matched[i] || (len(s.flipped) == 1 && s.flipped[0] == i) {
		return fmt.Errorf("%w: card %d already up", ErrInvalidAction, i)
	}

	s.flipped = append(s.flipped, i)
	if len(s.flipped) < 2 {
		return nil
	}

	s.moves++
	first, second := s.flipped[0], s.flipped[1]
	if s.faces[first] == s.faces[second] {
		s.matched[first], s.matched[second] = true, true
		s.pairs++
		s.flipped = nil
	}
	return nil
}

// MemoryView is the render view. Face-down cards have no face.
type MemoryView struct {
	Cards []MemoryCard `json:"cards"`
	Moves int          `json:"moves"`
	Pairs int          `json:"pairs"`
}

// Snapshot implements Session.
func (s *MemorySession) Snapshot() any {
	up := make(map[int]bool, len(s.flipped))
	for _, i := range s.flipped {
		up[i] = true
	}
	cards := make([]MemoryCard, len(s.faces))
	for i, f := range s.faces {
		c := MemoryCard{Up: up[i] || s.matched[i], Matched: s.matched[i]}
		if c.Up {
			c.Face = f
		}
		cards[i] = c
	}
	return MemoryView{Cards: cards, Moves: s.moves, Pairs: s.pairs}
}

// Finished implements Session.
func (s *MemorySession) Finished() bool {
	return s.pairs == len(memoryFaces)
}

// Score is max(0, 100 - 2 × moves) once every pair is found, otherwise 0.
func (s *MemorySession) Score() int {
	if !s.Finished() {
		return 0
	}
	return max(0, 100-s.moves*memoryMovePenalty)
}
