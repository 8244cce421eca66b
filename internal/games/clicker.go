package games

import (
	"fmt"

	"github.com/asobiba/minigames/internal/engine"
)

// ClickerGame is a 30 second clicking race with two upgrades. The clock
// runs on one Tick per second.
type ClickerGame struct{}

const (
	clickerSeconds      = 30
	clickerPowerCost    = 10 // × current click power
	clickerAutoBaseCost = 50 // × (auto clickers owned + 1)
)

// Spec returns metadata about Clicker.
func (g *ClickerGame) Spec() GameSpec {
	return GameSpec{
		ID:          "clicker",
		Name:        "Clicker",
		Kind:        KindTimer,
		Description: "Click as much as you can in 30 seconds; spend clicks on upgrades.",
		TickMS:      1000,
	}
}

// New starts the clock at 30 seconds with a click power of 1.
func (g *ClickerGame) New(_ *engine.Stream) Session {
	s := &ClickerSession{}
	s.reset()
	return s
}

// ClickerSession is one clicking race.
type ClickerSession struct {
	clicks   int
	power    int
	auto     int
	timeLeft int
}

func (s *ClickerSession) reset() {
	s.clicks = 0
	s.power = 1
	s.auto = 0
	s.timeLeft = clickerSeconds
}

func (s *ClickerSession) powerCost() int { return s.power * clickerPowerCost }
func (s *ClickerSession) autoCost() int  { return (s.auto + 1) * clickerAutoBaseCost }

// Apply handles "click", "upgrade" (choice power or auto) and "restart".
func (s *ClickerSession) Apply(a Action) error {
	switch a.Type {
	case "click":
		if s.Finished() {
			return fmt.Errorf("%w: time is up", ErrFinished)
		}
		s.clicks += s.power
		return nil
	case "upgrade":
		if s.Finished() {
			return fmt.Errorf("%w: time is up", ErrFinished)
		}
		return s.upgrade(a.Choice)
	case "restart":
		s.reset()
		return nil
	default:
		return fmt.Errorf("%w: clicker %q", ErrUnsupportedAction, a.Type)
	}
}

func (s *ClickerSession) upgrade(kind string) error {
	var cost int
	switch kind {
	case "power":
		cost = s.powerCost()
	case "auto":
		cost = s.autoCost()
	default:
		return fmt.Errorf("%w: upgrade %q", ErrInvalidAction, kind)
	}
	if s.clicks < cost {
		return fmt.Errorf("%w: %s costs %d, have %d", ErrInvalidAction, kind, cost, s.clicks)
	}
	s.clicks -= cost
	if kind == "power" {
		s.power++
	} else {
		s.auto++
	}
	return nil
}

// Tick is one second: auto clickers fire and the clock runs down.
func (s *ClickerSession) Tick() {
	if s.Finished() {
		return
	}
	s.clicks += s.auto
	s.timeLeft--
}

// ClickerView is the render view.
type ClickerView struct {
	Clicks       int `json:"clicks"`
	Power        int `json:"power"`
	AutoClickers int `json:"auto_clickers"`
	PowerCost    int `json:"power_cost"`
	AutoCost     int `json:"auto_cost"`
	TimeLeft     int `json:"time_left"`
}

// Snapshot implements Session.
func (s *ClickerSession) Snapshot() any {
	return ClickerView{
		Clicks:       s.clicks,
		Power:        s.power,
		AutoClickers: s.auto,
		PowerCost:    s.powerCost(),
		AutoCost:     s.autoCost(),
		TimeLeft:     s.timeLeft,
	}
}

// Finished reports whether the clock ran out.
func (s *ClickerSession) Finished() bool {
	return s.timeLeft <= 0
}

// Score is the clicks in hand.
func (s *ClickerSession) Score() int {
	return s.clicks
}
