package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// OmikujiGame draws a single fortune slip.
type OmikujiGame struct{}

// Fortunes from best to worst.
var Fortunes = []string{"daikichi", "chukichi", "shokichi", "suekichi", "kyo", "daikyo"}

// Spec returns metadata about Omikuji.
func (g *OmikujiGame) Spec() GameSpec {
	return GameSpec{
		ID:          "omikuji",
		Name:        "Omikuji",
		Kind:        KindInstant,
		Description: "Draw a fortune slip. Any fortune is worth a point.",
	}
}

// New returns an undrawn session.
func (g *OmikujiGame) New(rng *engine.Stream) Session {
	return &OmikujiSession{rng: rng}
}

// OmikujiSession holds at most one draw.
type OmikujiSession struct {
	rng     *engine.Stream
	fortune string
}

// Apply handles "draw".
func (s *OmikujiSession) Apply(a Action) error {
	if a.Type != "draw" {
		return fmt.Errorf("%w: omikuji %q", ErrUnsupportedAction, a.Type)
	}
	if s.fortune != "" {
		return fmt.Errorf("%w: fortune already drawn", ErrFinished)
	}
	s.fortune = Fortunes[s.rng.Intn(len(Fortunes))]
	return nil
}

// Snapshot implements Session.
func (s *OmikujiSession) Snapshot() any {
	return map[string]string{"fortune": s.fortune}
}

// Finished implements Session.
func (s *OmikujiSession) Finished() bool {
	return s.fortune != ""
}

// Score is 1 once a fortune is drawn.
func (s *OmikujiSession) Score() int {
	if s.fortune == "" {
		return 0
	}
	return 1
}
