package games

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/asobiba/minigames/internal/engine"
)

// RouletteGame spins an 8-segment wheel three times; the last spin's value
// is the score.
type RouletteGame struct{}

const (
	rouletteSegments = 8
	rouletteSpins    = 3
	rouletteMinTurns = 5
	rouletteMaxExtra = 5
)

var (
	fullTurn       = decimal.NewFromInt(360)
	segmentDegrees = fullTurn.Div(decimal.NewFromInt(rouletteSegments))
)

// Spec returns metadata about Roulette.
func (g *RouletteGame) Spec() GameSpec {
	return GameSpec{
		ID:          "roulette",
		Name:        "Roulette",
		Kind:        KindTurn,
		Description: "Spin the 1-8 wheel three times and keep the final number.",
	}
}

// New starts with the wheel at rest at 0 degrees.
func (g *RouletteGame) New(rng *engine.Stream) Session {
	return &RouletteSession{rng: rng, rotation: decimal.Zero}
}

// RouletteSpin records one spin.
type RouletteSpin struct {
	Degrees decimal.Decimal `json:"degrees"`
	Segment int             `json:"segment"`
	Value   int             `json:"value"`
}

// RouletteSession accumulates rotation across spins.
type RouletteSession struct {
	rng      *engine.Stream
	rotation decimal.Decimal
	spins    []RouletteSpin
}

// rouletteLanding returns the segment index for an accumulated rotation.
func rouletteLanding(rotation decimal.Decimal) int {
	angle := rotation.Mod(fullTurn)
	return int(angle.Div(segmentDegrees).Floor().IntPart()) % rouletteSegments
}

// spinDegrees turns two stream floats into a rotation of 5-10 full turns
// plus a partial turn.
func spinDegrees(turns, extra float64) decimal.Decimal {
	t := decimal.NewFromInt(rouletteMinTurns).Add(decimal.NewFromFloat(turns).Mul(decimal.NewFromInt(rouletteMaxExtra)))
	return t.Mul(fullTurn).Add(decimal.NewFromFloat(extra).Mul(fullTurn))
}

// Apply handles "spin".
func (s *RouletteSession) Apply(a Action) error {
	if a.Type != "spin" {
		return fmt.Errorf("%w: roulette %q", ErrUnsupportedAction, a.Type)
	}
	if s.Finished() {
		return fmt.Errorf("%w: all %d spins used", ErrFinished, rouletteSpins)
	}
	deg := spinDegrees(s.rng.Float(), s.rng.Float())
	s.rotation = s.rotation.Add(deg)
	seg := rouletteLanding(s.rotation)
	s.spins = append(s.spins, RouletteSpin{Degrees: deg, Segment: seg, Value: seg + 1})
	return nil
}

// RouletteView is the render view.
type RouletteView struct {
	Rotation  string         `json:"rotation"`
	Spins     []RouletteSpin `json:"spins"`
	Remaining int            `json:"remaining"`
}

// Snapshot implements Session.
func (s *RouletteSession) Snapshot() any {
	return RouletteView{
		Rotation:  s.rotation.StringFixed(2),
		Spins:     append([]RouletteSpin(nil), s.spins...),
		Remaining: rouletteSpins - len(s.spins),
	}
}

// Finished implements Session.
func (s *RouletteSession) Finished() bool {
	return len(s.spins) >= rouletteSpins
}

// Score is the value of the final spin, 0 until all spins are used.
func (s *RouletteSession) Score() int {
	if !s.Finished() {
		return 0
	}
	return s.spins[len(s.spins)-1].Value
}
